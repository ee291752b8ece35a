// Package record holds the shapes mapping code exchanges with templates: the
// checked Entry handed to templates and the Record produced from them.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUndefinedField is returned when code reads a field an Entry never declared.
var ErrUndefinedField = errors.New("undefined field")

// reservedFields are read by evaluators while sequencing or awaiting values
// and must never fail.
var reservedFields = map[string]struct{}{
	"sequence": {},
	"then":     {},
}

// Entry is a fixed set of named fields. Declared fields always read, even
// when they hold nil; reading any other field fails loudly instead of
// yielding a silent zero value.
type Entry struct {
	fields map[string]any
}

// NewEntry declares exactly the keys of fields. The map is copied.
func NewEntry(fields map[string]any) Entry {
	if fields == nil {
		return Entry{fields: map[string]any{}}
	}
	return Entry{fields: maps.Clone(fields)}
}

// Get returns the value of a declared field.
func (e Entry) Get(name string) (any, error) {
	if v, ok := e.fields[name]; ok {
		return v, nil
	}
	if _, ok := reservedFields[name]; ok {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q (declared: %s)", ErrUndefinedField, name, strings.Join(e.Fields(), ", "))
}

// Has reports whether name was declared.
func (e Entry) Has(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// Fields returns the declared field names, sorted.
func (e Entry) Fields() []string {
	return slices.Sorted(maps.Keys(e.fields))
}

// Len returns the number of declared fields.
func (e Entry) Len() int {
	return len(e.fields)
}

// MarshalJSON encodes every declared field; nil values become null.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.fields)
}
