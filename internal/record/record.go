package record

import (
	"encoding/json"
	"fmt"
)

// Record is one output resource: a JSON-shaped object.
type Record map[string]any

// ID returns the record's "id" property as a string. ok is false when the
// property is missing or null.
func (r Record) ID() (id string, ok bool) {
	v, present := r["id"]
	if !present || v == nil {
		return "", false
	}
	switch tv := v.(type) {
	case string:
		return tv, true
	case json.Number:
		return tv.String(), true
	default:
		return fmt.Sprint(tv), true
	}
}
