// Package library provides the general-purpose functions and variables bound
// into every template, next to the callables of the template's own module.
package library

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/vk/cdf2fhir/internal/bundle"
	"github.com/vk/cdf2fhir/internal/codes"
	"github.com/vk/cdf2fhir/internal/ctyconv"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// stdlibFunctions are the go-cty collection and string functions templates
// may use, plus try and can for guarding reads of null values.
var stdlibFunctions = map[string]function.Function{
	"can":        tryfunc.CanFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"concat":     stdlib.ConcatFunc,
	"contains":   stdlib.ContainsFunc,
	"flatten":    stdlib.FlattenFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"keys":       stdlib.KeysFunc,
	"length":     stdlib.LengthFunc,
	"lower":      stdlib.LowerFunc,
	"merge":      stdlib.MergeFunc,
	"split":      stdlib.SplitFunc,
	"tonumber":   stdlib.MakeToFunc(cty.Number),
	"tostring":   stdlib.MakeToFunc(cty.String),
	"trimspace":  stdlib.TrimSpaceFunc,
	"try":        tryfunc.TryFunc,
	"upper":      stdlib.UpperFunc,
}

var names = func() []string {
	all := slices.Collect(maps.Keys(stdlibFunctions))
	all = append(all,
		"participant_id", "resource_id", "wave_resource_id", "id_to_uuid",
		"is_defined", "input_value", "input_values", "echo", "code",
	)
	slices.Sort(all)
	return all
}()

// Names returns the names of every library function, sorted. A module
// callable may not reuse one of them.
func Names() []string {
	return slices.Clone(names)
}

// Functions returns the library functions reading participant data from r.
// echo writes to logger.
func Functions(r store.Reader, logger *slog.Logger) map[string]function.Function {
	fns := map[string]function.Function{
		"participant_id":   participantID(r),
		"resource_id":      resourceID(r),
		"wave_resource_id": waveResourceID(r),
		"id_to_uuid":       idToUUID,
		"is_defined":       isDefined,
		"input_value":      inputValue(r),
		"input_values":     inputValues(r),
		"echo":             echo(logger),
		"code":             code,
	}
	maps.Copy(fns, stdlibFunctions)
	return fns
}

// Input returns the variable table of r as the value of the "input"
// variable: an object of variables, each an object of waves.
func Input(r store.Reader) (cty.Value, error) {
	vars := r.Variables()
	attrs := make(map[string]cty.Value, len(vars))
	for _, v := range vars {
		a, err := r.Assessments(v)
		if err != nil {
			return cty.NilVal, err
		}
		attrs[v] = assessmentsValue(a)
	}
	return cty.ObjectVal(attrs), nil
}

func assessmentsValue(a store.Assessments) cty.Value {
	waves := make(map[string]cty.Value, len(a))
	for wave, v := range a {
		waves[wave] = stringValue(v)
	}
	return cty.ObjectVal(waves)
}

func stringValue(v *string) cty.Value {
	if v == nil {
		return cty.NullVal(cty.String)
	}
	return cty.StringVal(*v)
}

func participantID(r store.Reader) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the participant's unique id.",
		Type:        function.StaticReturnType(cty.String),
		Impl: func([]cty.Value, cty.Type) (cty.Value, error) {
			id, err := r.IdentifierValue()
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(id), nil
		},
	})
}

func resourceID(r store.Reader) function.Function {
	return function.New(&function.Spec{
		Description: "Returns <kind>-<participant id>.",
		Params:      []function.Parameter{{Name: "kind", Type: cty.String}},
		Type:        function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			id, err := r.IdentifierValue()
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(args[0].AsString() + "-" + id), nil
		},
	})
}

func waveResourceID(r store.Reader) function.Function {
	return function.New(&function.Spec{
		Description: "Returns <kind>-<wave>-<participant id>.",
		Params: []function.Parameter{
			{Name: "kind", Type: cty.String},
			{Name: "wave", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			id, err := r.IdentifierValue()
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(args[0].AsString() + "-" + args[1].AsString() + "-" + id), nil
		},
	})
}

var idToUUID = function.New(&function.Spec{
	Description: "Returns the urn:uuid reference of a resource id.",
	Params:      []function.Parameter{{Name: "id", Type: cty.String}},
	Type:        function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(bundle.URN(args[0].AsString())), nil
	},
})

var isDefined = function.New(&function.Spec{
	Description: "Reports whether a value is not null.",
	Params: []function.Parameter{{
		Name:             "value",
		Type:             cty.DynamicPseudoType,
		AllowNull:        true,
		AllowDynamicType: true,
	}},
	Type: function.StaticReturnType(cty.Bool),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.BoolVal(!args[0].IsNull()), nil
	},
})

func inputValue(r store.Reader) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the value of a variable at a wave; fails if either key does not exist.",
		Params: []function.Parameter{
			{Name: "variable", Type: cty.String},
			{Name: "wave", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			v, err := r.Value(args[0].AsString(), args[1].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return stringValue(v), nil
		},
	})
}

func inputValues(r store.Reader) function.Function {
	return function.New(&function.Spec{
		Description: "Returns every assessment of a variable; fails if the variable does not exist.",
		Params:      []function.Parameter{{Name: "variable", Type: cty.String}},
		Type:        function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			a, err := r.Assessments(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return assessmentsValue(a), nil
		},
	})
}

func echo(logger *slog.Logger) function.Function {
	return function.New(&function.Spec{
		Description: "Logs a value and returns it unchanged.",
		Params: []function.Parameter{{
			Name:             "value",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		}},
		Type: func(args []cty.Value) (cty.Type, error) {
			return args[0].Type(), nil
		},
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			v, err := ctyconv.FromValue(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			logger.Info("Template echo.", "value", v)
			return args[0], nil
		},
	})
}

var code = function.New(&function.Spec{
	Description: "Returns the {system, code, display} coding of a catalogued concept.",
	Params: []function.Parameter{
		{Name: "system", Type: cty.String},
		{Name: "code", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		p, err := codes.Lookup(args[0].AsString(), args[1].AsString())
		if err != nil {
			return cty.NilVal, err
		}
		return ctyconv.ToValue(p)
	},
})
