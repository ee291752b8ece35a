package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/zclconf/go-cty/cty"
)

type weightContract struct{ unit string }

func (w *weightContract) Results(r store.Reader) ([]record.Entry, error) {
	v, err := r.Value("weight", "1a")
	if err != nil {
		return nil, err
	}
	return []record.Entry{record.NewEntry(map[string]any{"value": v, "unit": w.unit})}, nil
}

func (w *weightContract) HDLValue() string { return "hdl" }

func TestCallables_Contract(t *testing.T) {
	t.Parallel()

	callables, err := Callables(Contract(&weightContract{unit: "kg"}))

	require.NoError(t, err)
	names := make([]string, 0, len(callables))
	for _, c := range callables {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"hdl_value", "results"}, names, "exported methods should be registered in snake_case, sorted")
}

func TestCallables_Funcs(t *testing.T) {
	t.Parallel()

	callables, err := Callables(Funcs(map[string]any{
		"b_func": func() string { return "b" },
		"a_func": func() string { return "a" },
	}))

	require.NoError(t, err)
	require.Len(t, callables, 2)
	require.Equal(t, "a_func", callables[0].Name)
	require.Equal(t, "b_func", callables[1].Name)
}

func TestCallables_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		exports Exports
		wantErr error
	}{
		{name: "undeclared", exports: Exports{}, wantErr: ErrInvalidExports},
		{name: "non function", exports: Funcs(map[string]any{"x": 42}), wantErr: ErrInvalidExports},
		{name: "bad name", exports: Funcs(map[string]any{"not-valid!": func() int { return 1 }}), wantErr: ErrInvalidExports},
		{name: "nil contract", exports: Contract(nil), wantErr: ErrInvalidExports},
		{name: "no methods", exports: Contract(struct{}{}), wantErr: ErrInvalidExports},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Callables(tc.exports)

			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Results":                  "results",
		"BirthDate":                "birth_date",
		"HDLValue":                 "hdl_value",
		"ReferenceRangeLowerLimit": "reference_range_lower_limit",
		"Wave1aDate":               "wave1a_date",
		"ID":                       "id",
	}
	for in, want := range cases {
		require.Equal(t, want, SnakeCase(in), "SnakeCase(%q)", in)
	}
}

func TestCompile_And_Bind(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f, err := Compile(Callable{Name: "results", Fn: (&weightContract{unit: "kg"}).Results})
	require.NoError(t, err)
	snap := store.NewSnapshot(nil, store.Table{"weight": {"1a": store.Val("70")}})

	// --- Act ---
	got, err := f.Bind(snap).Call(nil)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, got.Type().IsTupleType())
	require.Equal(t, 1, got.LengthInt())
	entry := got.Index(cty.NumberIntVal(0))
	require.Equal(t, "70", entry.GetAttr("value").AsString())
	require.Equal(t, "kg", entry.GetAttr("unit").AsString())
}

func TestBind_PropagatesGoError(t *testing.T) {
	t.Parallel()

	f, err := Compile(Callable{Name: "results", Fn: (&weightContract{}).Results})
	require.NoError(t, err)

	_, err = f.Bind(store.NewSnapshot(nil, store.Table{})).Call(nil)

	require.ErrorIs(t, err, store.ErrUndefinedVariable)
}

func TestBind_Arguments(t *testing.T) {
	t.Parallel()

	f, err := Compile(Callable{Name: "describe", Fn: func(name string, wave *string, n int, flag bool, raw cty.Value) string {
		w := "none"
		if wave != nil {
			w = *wave
		}
		return name + "/" + w + "/" + raw.Type().FriendlyName()
	}})
	require.NoError(t, err)

	got, err := f.Bind(nil).Call([]cty.Value{
		cty.StringVal("bp"), cty.NullVal(cty.String), cty.NumberIntVal(2), cty.True, cty.NumberIntVal(1),
	})

	require.NoError(t, err)
	require.Equal(t, "bp/none/number", got.AsString())
}

func TestCompile_InvalidSignatures(t *testing.T) {
	t.Parallel()

	testCases := map[string]any{
		"no results":      func() {},
		"three results":   func() (int, int, error) { return 0, 0, nil },
		"second not err":  func() (int, int) { return 0, 0 },
		"variadic":        func(xs ...string) string { return "" },
		"unsupported arg": func(m map[string]string) string { return "" },
		"not a func":      "nope",
	}
	for name, fn := range testCases {
		_, err := Compile(Callable{Name: "f", Fn: fn})
		require.ErrorIs(t, err, ErrInvalidCallable, name)
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := New(NewModule("weight", Contract(&weightContract{})))

	m, ok := r.Lookup("weight")
	require.True(t, ok)
	require.Equal(t, KindContract, m.Exports().Kind())

	_, ok = r.Lookup("height")
	require.False(t, ok)
	require.Equal(t, []string{"weight"}, r.Names())

	require.Panics(t, func() { r.Register(NewModule("weight", Funcs(nil))) }, "duplicate registration must panic")
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	r := New(
		NewModule("good", Contract(&weightContract{})),
		NewModule("bad", Funcs(map[string]any{"f": func(ch chan int) int { return 0 }})),
	)

	err := r.Validate(context.Background())

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidCallable))
	require.Contains(t, err.Error(), `module "bad"`)
	require.NotContains(t, err.Error(), `module "good"`)
}
