package store

import "fmt"

// Reader is the read-only view of participant data handed to every template
// function and module callable.
type Reader interface {
	// Variables returns the names of all variables in sorted order.
	Variables() []string
	// Assessments returns a copy of the assessments recorded for variable.
	Assessments(variable string) (Assessments, error)
	// Value returns the value recorded for variable at wave. A nil result
	// with a nil error means the wave exists but holds no value.
	Value(variable, wave string) (*string, error)
	// IdentifierValue returns the participant's unique id.
	IdentifierValue() (string, error)
}

// Snapshot is an immutable (identifier, table) pair captured for one cycle.
type Snapshot struct {
	id    *Identifier
	table Table
}

var _ Reader = (*Snapshot)(nil)

// NewSnapshot normalizes table and captures it together with id. A nil id
// leaves the identifier unconfigured.
func NewSnapshot(id *Identifier, table Table) *Snapshot {
	var idCopy *Identifier
	if id != nil {
		c := *id
		idCopy = &c
	}
	return &Snapshot{id: idCopy, table: Normalize(table)}
}

func (s *Snapshot) Variables() []string {
	return s.table.Variables()
}

func (s *Snapshot) Assessments(variable string) (Assessments, error) {
	a, ok := s.table[variable]
	if !ok {
		return nil, fmt.Errorf("%w: %q was not provided in the input", ErrUndefinedVariable, variable)
	}
	out := make(Assessments, len(a))
	for wave, v := range a {
		if v != nil {
			c := *v
			v = &c
		}
		out[wave] = v
	}
	return out, nil
}

func (s *Snapshot) Value(variable, wave string) (*string, error) {
	a, ok := s.table[variable]
	if !ok {
		return nil, fmt.Errorf("%w: %q was not provided in the input", ErrUndefinedVariable, variable)
	}
	v, ok := a[wave]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no assessment %q", ErrUndefinedAssessment, variable, wave)
	}
	if v == nil {
		return nil, nil
	}
	out := *v
	return &out, nil
}

func (s *Snapshot) IdentifierValue() (string, error) {
	if s.id == nil {
		return "", ErrMissingIdentifierConfiguration
	}
	v, err := s.Value(s.id.VariableName, s.id.AssessmentName)
	if err != nil {
		return "", fmt.Errorf("resolving participant identifier: %w", err)
	}
	if v == nil {
		return "", fmt.Errorf("%w: %s[%s]", ErrMissingIdentifierValue, s.id.VariableName, s.id.AssessmentName)
	}
	return *v, nil
}
