package odm

import "strings"

var uncountables = map[string]struct{}{
	"advice": {}, "data": {}, "equipment": {}, "information": {}, "media": {},
	"metadata": {}, "money": {}, "news": {}, "rice": {}, "series": {},
	"sheep": {}, "software": {}, "species": {},
}

var irregulars = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
	"goose":  "geese",
	"tooth":  "teeth",
	"foot":   "feet",
}

// CollectionName derives the default collection name of a model: the
// lower-cased model name in plural form.
func CollectionName(model string) string {
	name := strings.ToLower(model)
	if _, ok := uncountables[name]; ok {
		return name
	}
	if plural, ok := irregulars[name]; ok {
		return plural
	}

	switch {
	case name == "":
		return name
	case strings.HasSuffix(name, "s"):
		return name
	case strings.HasSuffix(name, "x"), strings.HasSuffix(name, "z"),
		strings.HasSuffix(name, "ch"), strings.HasSuffix(name, "sh"):
		return name + "es"
	case strings.HasSuffix(name, "y") && len(name) > 1 && !strings.ContainsRune("aeiou", rune(name[len(name)-2])):
		return name[:len(name)-1] + "ies"
	default:
		return name + "s"
	}
}
