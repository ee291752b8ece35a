package ctyconv

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	ctyValueType = reflect.TypeOf(cty.Value{})
	stringPtr    = reflect.TypeOf((*string)(nil))
)

// ParamType maps the Go type of a callable parameter to the cty type it
// accepts. allowNull is true for parameters that can represent null.
func ParamType(t reflect.Type) (ty cty.Type, allowNull bool, err error) {
	switch {
	case t == ctyValueType:
		return cty.DynamicPseudoType, true, nil
	case t == stringPtr:
		return cty.String, true, nil
	}
	switch t.Kind() {
	case reflect.String:
		return cty.String, false, nil
	case reflect.Bool:
		return cty.Bool, false, nil
	case reflect.Int, reflect.Int64, reflect.Float64:
		return cty.Number, false, nil
	default:
		return cty.NilType, false, fmt.Errorf("unsupported parameter type %s", t)
	}
}

// Decode converts val into a reflect.Value of type target. target must be a
// type accepted by ParamType.
func Decode(val cty.Value, target reflect.Type) (reflect.Value, error) {
	if target == ctyValueType {
		return reflect.ValueOf(val), nil
	}
	if target == stringPtr {
		if val.IsNull() {
			return reflect.Zero(target), nil
		}
		s, err := decodeInto[string](val)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&s), nil
	}
	if val.IsNull() {
		return reflect.Value{}, fmt.Errorf("null value cannot be decoded into %s", target)
	}

	ptr := reflect.New(target)
	impliedType, err := gocty.ImpliedType(ptr.Elem().Interface())
	if err != nil {
		return reflect.Value{}, err
	}
	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if err := gocty.FromCtyValue(converted, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func decodeInto[T any](val cty.Value) (T, error) {
	var out T
	v, err := Decode(val, reflect.TypeOf(out))
	if err != nil {
		return out, err
	}
	return v.Interface().(T), nil
}
