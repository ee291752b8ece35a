package hdlcholesterol

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cdf2fhir/internal/codes"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/store"
)

func TestResults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	r := store.NewSnapshot(nil, store.Table{
		"hdlchol_result_all_m_1": {"1a": store.Val("0.8"), "2a": store.Val("1.4")},
		"date":                   {"1a": store.Val("1992-5"), "2a": store.Val("2001-5")},
	})

	// --- Act ---
	entries, err := Mapping{}.Results(r)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, entries, 2)

	flags, err := entries[0].Get("resultFlags")
	require.NoError(t, err)
	require.Equal(t, "281300000", flags.(*codes.Properties).Code, "0.8 mmol/L is below the reference range")

	flags, err = entries[1].Get("resultFlags")
	require.NoError(t, err)
	require.Nil(t, flags)

	_, err = entries[1].Get("referenceRange")
	require.Error(t, err, "entries only declare their own fields")
}

func TestResults_MissedAndEmpty(t *testing.T) {
	t.Parallel()

	r := store.NewSnapshot(nil, store.Table{
		"hdlchol_result_all_m_1": {"1a": store.Val(""), "2a": store.Val("1.4")},
		"date":                   {"1a": store.Val("1992-5"), "2a": nil},
	})

	entries, err := Mapping{}.Results(r)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	result, err := entries[0].Get("testResult")
	require.NoError(t, err)
	require.Nil(t, result)
	flags, err := entries[0].Get("resultFlags")
	require.NoError(t, err)
	require.Nil(t, flags)
}

func TestStaticProperties(t *testing.T) {
	t.Parallel()

	m := Mapping{}

	require.InDelta(t, 1.0, *m.ReferenceRangeLowerLimit(), 1e-9)
	require.Nil(t, m.ReferenceRangeUpperLimit())
	require.Len(t, m.DiagnosticCategoryCoding(), 2)
	require.Equal(t, "14646-4", m.DiagnosticCodeCoding()[0].Code)
	require.Equal(t, "mmol/L", m.ResultUnit().Code)
	require.Equal(t, "hdl-chol", m.LabTestName())
}

func TestModule_ExportsFuncs(t *testing.T) {
	t.Parallel()

	exports := Module{}.Exports()
	require.Equal(t, registry.KindFuncs, exports.Kind())

	callables, err := registry.Callables(exports)
	require.NoError(t, err)
	require.Len(t, callables, 10)
	for _, c := range callables {
		_, err := registry.Compile(c)
		require.NoError(t, err, c.Name)
	}
}
