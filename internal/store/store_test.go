package store

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStore_GetAssessments(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := New()
	s.SetTable(Table{
		"weight": {"1a": Val("70"), "2a": Val("  "), "3a": nil},
	})

	// --- Act ---
	got, err := s.GetAssessments("weight")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "70", *got["1a"])
	require.Contains(t, got, "2a", "blank values keep their key")
	require.Nil(t, got["2a"], "blank values should be normalized to nil")
	require.Nil(t, got["3a"])
}

func TestStore_GetAssessments_UndefinedVariable(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetTable(Table{"weight": {"1a": Val("70")}})

	_, err := s.GetAssessments("height")

	require.ErrorIs(t, err, ErrUndefinedVariable)
	require.ErrorIs(t, err, ErrStructuralAbsence)
	require.Contains(t, err.Error(), `"height"`)
}

func TestStore_SetTable_Supersedes(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetTable(Table{"weight": {"1a": Val("70")}})
	s.SetTable(Table{"height": {"1a": Val("180")}})

	_, err := s.GetAssessments("weight")
	require.ErrorIs(t, err, ErrUndefinedVariable, "a new table must replace, not merge with, the previous one")

	got, err := s.GetAssessments("height")
	require.NoError(t, err)
	require.Equal(t, "180", *got["1a"])
}

func TestStore_SetTable_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	input := Table{"weight": {"1a": Val("70")}}
	s := New()
	s.SetTable(input)

	*input["weight"]["1a"] = "99"
	input["weight"]["2a"] = Val("80")

	got, err := s.GetAssessments("weight")
	require.NoError(t, err)
	require.Equal(t, "70", *got["1a"])
	require.NotContains(t, got, "2a")
}

func TestStore_GetIdentifierValue(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		id      *Identifier
		table   Table
		want    string
		wantErr error
	}{
		{
			name:  "configured and present",
			id:    &Identifier{VariableName: "project_pseudo_id", AssessmentName: "1a"},
			table: Table{"project_pseudo_id": {"1a": Val("520681571")}},
			want:  "520681571",
		},
		{
			name:    "not configured",
			table:   Table{"project_pseudo_id": {"1a": Val("520681571")}},
			wantErr: ErrMissingIdentifierConfiguration,
		},
		{
			name:    "variable missing",
			id:      &Identifier{VariableName: "project_pseudo_id", AssessmentName: "1a"},
			table:   Table{},
			wantErr: ErrUndefinedVariable,
		},
		{
			name:    "wave missing",
			id:      &Identifier{VariableName: "project_pseudo_id", AssessmentName: "1a"},
			table:   Table{"project_pseudo_id": {"2a": Val("1")}},
			wantErr: ErrUndefinedAssessment,
		},
		{
			name:    "value blank",
			id:      &Identifier{VariableName: "project_pseudo_id", AssessmentName: "1a"},
			table:   Table{"project_pseudo_id": {"1a": Val(" ")}},
			wantErr: ErrMissingIdentifierValue,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := New()
			if tc.id != nil {
				s.SetUniqueIdentifier(*tc.id)
			}
			s.SetTable(tc.table)

			got, err := s.GetIdentifierValue()

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestSnapshot_IsolatedFromLaterInstalls(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetUniqueIdentifier(Identifier{VariableName: "id", AssessmentName: "1a"})
	s.SetTable(Table{"id": {"1a": Val("A")}})
	snap := s.Snapshot()

	s.SetTable(Table{"id": {"1a": Val("B")}})

	got, err := snap.IdentifierValue()
	require.NoError(t, err)
	require.Equal(t, "A", got)

	got, err = s.GetIdentifierValue()
	require.NoError(t, err)
	require.Equal(t, "B", got)
}

func TestSnapshot_Value(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot(nil, Table{"date": {"1a": Val("1992-5"), "2a": nil}})

	v, err := snap.Value("date", "1a")
	require.NoError(t, err)
	require.Equal(t, "1992-5", *v)

	v, err = snap.Value("date", "2a")
	require.NoError(t, err, "value absence is not an error")
	require.Nil(t, v)

	_, err = snap.Value("date", "3a")
	require.ErrorIs(t, err, ErrUndefinedAssessment)

	_, err = snap.Value("age", "1a")
	require.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestSnapshot_AssessmentsDoNotAliasValues(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	snap := NewSnapshot(nil, Table{"date": {"1a": Val("1992-5"), "2a": nil}})

	// --- Act ---
	a, err := snap.Assessments("date")
	require.NoError(t, err)
	*a["1a"] = "2000-1"
	a["2a"] = Val("2001-1")

	// --- Assert ---
	v, err := snap.Value("date", "1a")
	require.NoError(t, err)
	require.Equal(t, "1992-5", *v)
	v, err = snap.Value("date", "2a")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestStore_ConcurrentReadsDuringInstall(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetTable(Table{"v": {"1a": Val("x")}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := s.GetAssessments("v")
				assert.NoError(t, err)
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.SetTable(Table{"v": {"1a": Val("y")}})
	}
	wg.Wait()
}

func TestNormalize_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		table := rapid.MapOf(
			rapid.StringMatching(`[a-z_]{1,8}`),
			rapid.MapOf(
				rapid.SampledFrom([]string{"1a", "1b", "2a", "3a", "global"}),
				rapid.Ptr(rapid.OneOf(
					rapid.SampledFrom([]string{"", " ", "\t", "\n  "}),
					rapid.String(),
				), true),
			),
		).Draw(t, "table")

		input := make(Table, len(table))
		for k, v := range table {
			input[k] = Assessments(v)
		}

		out := Normalize(input)

		if len(out) != len(input) {
			t.Fatalf("variable count changed: %d != %d", len(out), len(input))
		}
		for variable, assessments := range input {
			for wave, v := range assessments {
				got, ok := out[variable][wave]
				if !ok {
					t.Fatalf("wave %q of %q disappeared", wave, variable)
				}
				blank := v == nil || strings.TrimSpace(*v) == ""
				if blank && got != nil {
					t.Fatalf("blank value %q of %s[%s] survived", *v, variable, wave)
				}
				if !blank && (got == nil || *got != *v) {
					t.Fatalf("value of %s[%s] changed", variable, wave)
				}
			}
		}
	})
}

func TestErrors_Kinds(t *testing.T) {
	t.Parallel()

	require.True(t, errors.Is(ErrUndefinedVariable, ErrStructuralAbsence))
	require.True(t, errors.Is(ErrUndefinedAssessment, ErrStructuralAbsence))
	require.False(t, errors.Is(ErrMissingIdentifierValue, ErrStructuralAbsence))
}
