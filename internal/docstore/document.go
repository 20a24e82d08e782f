package docstore

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// The accessors below decode one attribute at a time so that a single
// malformed attribute never spoils the rest of the document. Missing or
// undecodable attributes yield the zero value and ok=false.

// String returns a string attribute.
func (d Document) String(name string) (string, bool) {
	av, ok := d[name]
	if !ok {
		return "", false
	}
	var s string
	if err := attributevalue.Unmarshal(av, &s); err != nil {
		return "", false
	}
	return s, true
}

// Number returns a numeric attribute.
func (d Document) Number(name string) (float64, bool) {
	av, ok := d[name]
	if !ok {
		return 0, false
	}
	var f float64
	if err := attributevalue.Unmarshal(av, &f); err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns a boolean attribute.
func (d Document) Bool(name string) (bool, bool) {
	av, ok := d[name]
	if !ok {
		return false, false
	}
	var b bool
	if err := attributevalue.Unmarshal(av, &b); err != nil {
		return false, false
	}
	return b, true
}

// Time returns an RFC3339 string attribute parsed as a time.
func (d Document) Time(name string) (time.Time, bool) {
	s, ok := d.String(name)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}


// Decode unmarshals the whole document into out.
func (d Document) Decode(out interface{}) error {
	return attributevalue.UnmarshalMap(d, out)
}
