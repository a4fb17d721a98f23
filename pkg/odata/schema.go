// Package odata implements a constrained subset of the OData v4 system query
// options ($filter, $orderby, $skip, $top, $select, $count) over a fixed field
// whitelist and renders them as parameterised PostgreSQL fragments.
package odata

import (
	"fmt"
	"strings"
	"time"
)

type Kind int

const (
	KindInt Kind = iota
	KindString
	KindDateTime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Edm.Int64"
	case KindString:
		return "Edm.String"
	case KindDateTime:
		return "Edm.DateTimeOffset"
	case KindBool:
		return "Edm.Boolean"
	default:
		return "unknown"
	}
}

// Field describes a queryable property and the column that backs it.
type Field struct {
	Name     string
	Column   string
	Kind     Kind
	Nullable bool
}

type Schema struct {
	fields []Field
	byName map[string]Field
}

func NewSchema(fields ...Field) *Schema {
	s := &Schema{
		fields: fields,
		byName: make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		s.byName[strings.ToLower(f.Name)] = f
	}
	return s
}

// Lookup matches property names case-insensitively.
func (s *Schema) Lookup(name string) (Field, bool) {
	f, ok := s.byName[strings.ToLower(name)]
	return f, ok
}

func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime accepts RFC3339 values and naive ISO-8601 values. Naive values
// are taken as UTC; the result is always in UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}
