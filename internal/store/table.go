package store

import (
	"maps"
	"slices"
	"strings"
)

// Assessments maps a wave label to its value. A nil value means the wave was
// recorded but holds nothing.
type Assessments map[string]*string

// Waves returns the wave labels in sorted order.
func (a Assessments) Waves() []string {
	return slices.Sorted(maps.Keys(a))
}

// Table maps variable names to their assessments.
type Table map[string]Assessments

// Variables returns the variable names in sorted order.
func (t Table) Variables() []string {
	return slices.Sorted(maps.Keys(t))
}

// Identifier names the variable and wave that hold a participant's unique id.
type Identifier struct {
	VariableName   string `json:"variableName" yaml:"variableName" mapstructure:"variableName"`
	AssessmentName string `json:"assessmentName" yaml:"assessmentName" mapstructure:"assessmentName"`
}

// Val returns a pointer to s. It keeps table literals short.
func Val(s string) *string {
	return &s
}

// Normalize returns a deep copy of t in which every value that is empty after
// trimming whitespace is replaced by nil. The input is not modified.
func Normalize(t Table) Table {
	out := make(Table, len(t))
	for variable, assessments := range t {
		normalized := make(Assessments, len(assessments))
		for wave, v := range assessments {
			normalized[wave] = normalizeValue(v)
		}
		out[variable] = normalized
	}
	return out
}

func normalizeValue(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	s := *v
	return &s
}
