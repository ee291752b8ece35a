package registry

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Module is the interface every resource mapping module implements.
type Module interface {
	Name() string
	Exports() Exports
}

// Kind tells how a module's exports are shaped.
type Kind uint8

const (
	// KindFuncs is a flat set of named functions.
	KindFuncs Kind = iota + 1
	// KindContract is an object whose exported methods are the callables.
	KindContract
)

func (k Kind) String() string {
	switch k {
	case KindFuncs:
		return "funcs"
	case KindContract:
		return "contract"
	default:
		return "unknown"
	}
}

var (
	ErrNameCollision   = errors.New("callable name collision")
	ErrInvalidExports  = errors.New("invalid module exports")
	ErrInvalidCallable = errors.New("invalid callable")
)

// Exports is what a module makes available to templates.
type Exports struct {
	kind     Kind
	funcs    map[string]any
	contract any
}

// Funcs declares a flat set of callables keyed by their template name.
func Funcs(fns map[string]any) Exports {
	return Exports{kind: KindFuncs, funcs: maps.Clone(fns)}
}

// Contract declares an object whose exported methods become callables named
// in snake_case: Results becomes results, BirthDate becomes birth_date.
func Contract(obj any) Exports {
	return Exports{kind: KindContract, contract: obj}
}

func (e Exports) Kind() Kind {
	return e.kind
}

// Callable is one named Go function a template may call.
type Callable struct {
	Name string
	Fn   any
}

// Callables flattens exports into a list sorted by name.
func Callables(e Exports) ([]Callable, error) {
	switch e.kind {
	case KindFuncs:
		out := make([]Callable, 0, len(e.funcs))
		for _, name := range slices.Sorted(maps.Keys(e.funcs)) {
			fn := e.funcs[name]
			if !hclsyntax.ValidIdentifier(name) {
				return nil, fmt.Errorf("%w: %q is not a valid function name", ErrInvalidExports, name)
			}
			if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
				return nil, fmt.Errorf("%w: %q is %T, not a function", ErrInvalidExports, name, fn)
			}
			out = append(out, Callable{Name: name, Fn: fn})
		}
		return out, nil

	case KindContract:
		if e.contract == nil {
			return nil, fmt.Errorf("%w: contract object is nil", ErrInvalidExports)
		}
		v := reflect.ValueOf(e.contract)
		t := v.Type()
		seen := make(map[string]string, t.NumMethod())
		out := make([]Callable, 0, t.NumMethod())
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			if !m.IsExported() {
				continue
			}
			name := SnakeCase(m.Name)
			if prev, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: methods %s and %s of %s both map to %q", ErrNameCollision, prev, m.Name, t, name)
			}
			seen[name] = m.Name
			out = append(out, Callable{Name: name, Fn: v.Method(i).Interface()})
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: %s has no exported methods", ErrInvalidExports, t)
		}
		slices.SortFunc(out, func(a, b Callable) int { return strings.Compare(a.Name, b.Name) })
		return out, nil

	default:
		return nil, fmt.Errorf("%w: exports were not declared with Funcs or Contract", ErrInvalidExports)
	}
}

// SnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: HDLValue becomes hdl_value.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// named is a Module assembled from a name and its exports.
type named struct {
	name    string
	exports Exports
}

func (m named) Name() string     { return m.name }
func (m named) Exports() Exports { return m.exports }

// NewModule returns a Module with the given name and exports.
func NewModule(name string, exports Exports) Module {
	return named{name: name, exports: exports}
}
