package odm

import (
	"cmp"
	"fmt"
	"strings"
)

// SortField orders documents by one path.
type SortField struct {
	Path       string
	Descending bool
}

// ParseSort parses a space separated sort specification such as
// "-_id" or "name -age". A leading "-" sorts descending, an optional
// leading "+" ascending.
func ParseSort(spec string) ([]SortField, error) {
	var fields []SortField
	for _, token := range strings.Fields(spec) {
		f := SortField{Path: token}
		switch token[0] {
		case '-':
			f.Path, f.Descending = token[1:], true
		case '+':
			f.Path = token[1:]
		}
		if f.Path == "" || strings.HasPrefix(f.Path, ".") || strings.HasSuffix(f.Path, ".") || strings.Contains(f.Path, "..") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSort, token)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (s SortField) String() string {
	if s.Descending {
		return "-" + s.Path
	}
	return s.Path
}

func compareDocuments(a, b Document, fields []SortField) int {
	for _, f := range fields {
		av, _ := a.Get(f.Path)
		bv, _ := b.Get(f.Path)
		c := compareValues(av, bv)
		if f.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// typeRank orders values of different kinds: missing and null first, then
// numbers, strings, objects, arrays and booleans.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64, int, int64:
		return 1
	case string:
		return 2
	case map[string]any, Document:
		return 3
	case []any:
		return 4
	case bool:
		return 5
	default:
		return 6
	}
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case []any:
		bv := b.([]any)
		for i := 0; i < len(av) && i < len(bv); i++ {
			if c := compareValues(av[i], bv[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(av), len(bv))
	}
	if ra == 1 {
		return cmp.Compare(toFloat(a), toFloat(b))
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
