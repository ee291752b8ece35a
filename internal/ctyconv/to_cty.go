package ctyconv

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ToValue converts a Go value into a cty.Value. A cty.Value is returned as is;
// nil and nil pointers become a dynamically typed null.
func ToValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("encoding %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return cty.NilVal, fmt.Errorf("decoding %T: %w", v, err)
	}
	return FromJSON(generic)
}

// FromJSON converts JSON-shaped Go data (as produced by encoding/json with
// UseNumber) into a cty.Value. Arrays become tuples and objects become
// objects, so heterogeneous elements keep their own types.
func FromJSON(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(tv), nil
	case string:
		return cty.StringVal(tv), nil
	case json.Number:
		n, err := cty.ParseNumberVal(tv.String())
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid number %q: %w", tv, err)
		}
		return n, nil
	case float64:
		return cty.NumberFloatVal(tv), nil
	case []any:
		if len(tv) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(tv))
		for i, e := range tv {
			ev, err := FromJSON(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(tv) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(tv))
		for k, e := range tv {
			ev, err := FromJSON(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf(".%s: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported JSON value of type %T", v)
	}
}
