// Package ctyconv moves values between Go and cty, the value system templates
// are evaluated in.
//
// Go values cross into cty through their JSON encoding, so any type with a
// sensible JSON form (structs with json tags, record.Entry, maps, slices)
// can be returned from a module callable. Values come back out as plain
// JSON-shaped Go data: nil, bool, string, json.Number, []any and
// map[string]any.
package ctyconv
