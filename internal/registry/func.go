package registry

import (
	"fmt"
	"reflect"

	"github.com/vk/cdf2fhir/internal/ctyconv"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

var (
	readerType = reflect.TypeOf((*store.Reader)(nil)).Elem()
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Func is a Callable whose Go signature has been checked.
type Func struct {
	name        string
	fn          reflect.Value
	wantsReader bool
	argTypes    []reflect.Type
	params      []function.Parameter
	returnsErr  bool
}

// Compile checks the Go signature of c. The accepted form is an optional
// leading store.Reader, then parameters of type string, *string, bool, int,
// int64, float64 or cty.Value, returning T or (T, error).
func Compile(c Callable) (*Func, error) {
	v := reflect.ValueOf(c.Fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %q is not a function", ErrInvalidCallable, c.Name)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: %q is variadic", ErrInvalidCallable, c.Name)
	}

	f := &Func{name: c.Name, fn: v}
	first := 0
	if t.NumIn() > 0 && t.In(0) == readerType {
		f.wantsReader = true
		first = 1
	}
	for i := first; i < t.NumIn(); i++ {
		in := t.In(i)
		ty, allowNull, err := ctyconv.ParamType(in)
		if err != nil {
			return nil, fmt.Errorf("%w: %q parameter %d: %v", ErrInvalidCallable, c.Name, i, err)
		}
		f.argTypes = append(f.argTypes, in)
		f.params = append(f.params, function.Parameter{
			Name:             fmt.Sprintf("arg%d", i-first),
			Type:             ty,
			AllowNull:        allowNull,
			AllowDynamicType: ty == cty.DynamicPseudoType,
		})
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("%w: %q second result must be error, got %s", ErrInvalidCallable, c.Name, t.Out(1))
		}
		f.returnsErr = true
	default:
		return nil, fmt.Errorf("%w: %q must return a value or (value, error)", ErrInvalidCallable, c.Name)
	}
	return f, nil
}

func (f *Func) Name() string {
	return f.name
}

// Bind returns a cty function that calls f with r injected as its reader.
// Errors returned by the Go function come back unchanged from the cty call.
func (f *Func) Bind(r store.Reader) function.Function {
	return function.New(&function.Spec{
		Description: fmt.Sprintf("module callable %s", f.name),
		Params:      f.params,
		Type:        function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			in := make([]reflect.Value, 0, len(args)+1)
			if f.wantsReader {
				in = append(in, reflect.ValueOf(&r).Elem())
			}
			for i, arg := range args {
				v, err := ctyconv.Decode(arg, f.argTypes[i])
				if err != nil {
					return cty.NilVal, function.NewArgError(i, err)
				}
				in = append(in, v)
			}

			out := f.fn.Call(in)
			if f.returnsErr && !out[1].IsNil() {
				return cty.NilVal, out[1].Interface().(error)
			}
			res, err := ctyconv.ToValue(out[0].Interface())
			if err != nil {
				return cty.NilVal, fmt.Errorf("converting result of %s: %w", f.name, err)
			}
			return res, nil
		},
	})
}
