package ctyconv

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ErrUnknownValue is returned when a value is not yet known and therefore has
// no Go form.
var ErrUnknownValue = errors.New("value is unknown")

// FromValue converts a cty.Value into JSON-shaped Go data. Nulls become nil,
// numbers json.Number, sequences []any and objects or maps map[string]any.
func FromValue(v cty.Value) (any, error) {
	v, _ = v.Unmark()
	if !v.IsKnown() {
		return nil, ErrUnknownValue
	}
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		return json.Number(v.AsBigFloat().Text('f', -1)), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := FromValue(ev)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", len(out), err)
			}
			out = append(out, e)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			k := kv.AsString()
			e, err := FromValue(ev)
			if err != nil {
				return nil, fmt.Errorf(".%s: %w", k, err)
			}
			out[k] = e
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot convert value of type %s", ty.FriendlyName())
	}
}

// Prune removes nil object attributes and nil sequence elements from
// JSON-shaped data, recursively.
func Prune(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			if e == nil {
				continue
			}
			out[k] = Prune(e)
		}
		return out
	case []any:
		out := make([]any, 0, len(tv))
		for _, e := range tv {
			if e == nil {
				continue
			}
			out = append(out, Prune(e))
		}
		return out
	default:
		return v
	}
}
