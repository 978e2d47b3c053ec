package odm

import (
	"fmt"
	"slices"
)

// Instance is the kind tag of a schema path, e.g. String or ObjectId.
type Instance string

const (
	String     Instance = "String"
	Number     Instance = "Number"
	Date       Instance = "Date"
	Boolean    Instance = "Boolean"
	ObjectID   Instance = "ObjectId"
	Buffer     Instance = "Buffer"
	Decimal128 Instance = "Decimal128"
	Map        Instance = "Map"
	UUID       Instance = "UUID"
	BigInt     Instance = "BigInt"
	Array      Instance = "Array"
	Mixed      Instance = "Mixed"
)

var instances = []Instance{
	String, Number, Date, Boolean, ObjectID, Buffer,
	Decimal128, Map, UUID, BigInt, Array, Mixed,
}

// Instances returns all known instance tags.
func Instances() []Instance {
	return slices.Clone(instances)
}

// ParseInstance parses a kind tag. The empty string is accepted and stays
// empty, meaning the path did not declare a type.
func ParseInstance(s string) (Instance, error) {
	if s == "" {
		return "", nil
	}
	if i := Instance(s); slices.Contains(instances, i) {
		return i, nil
	}
	return "", fmt.Errorf("unknown schema type %q", s)
}

func (i Instance) String() string {
	return string(i)
}

// OrMixed returns the instance, or Mixed if no type was declared.
func (i Instance) OrMixed() Instance {
	if i == "" {
		return Mixed
	}
	return i
}
