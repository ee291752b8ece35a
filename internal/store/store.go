package store

import "sync"

// Store is the process-wide holder of the participant currently being
// transformed. Installs replace the table wholesale; they never merge.
//
// Store methods are safe for concurrent use, but a whole install-then-evaluate
// cycle must be serialized by the caller (see package guard).
type Store struct {
	mu       sync.RWMutex
	id       *Identifier
	snapshot *Snapshot
}

// New returns an empty Store with no identifier and an empty table.
func New() *Store {
	return &Store{snapshot: &Snapshot{table: Table{}}}
}

// SetUniqueIdentifier records which variable and wave hold the participant id.
// The descriptor is not validated until it is read.
func (s *Store) SetUniqueIdentifier(id Identifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = &id
	s.snapshot = &Snapshot{id: s.id, table: s.snapshot.table}
}

// UniqueIdentifier returns the configured descriptor, if any.
func (s *Store) UniqueIdentifier() (Identifier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.id == nil {
		return Identifier{}, false
	}
	return *s.id, true
}

// SetTable normalizes t and installs it as the current table.
func (s *Store) SetTable(t Table) {
	normalized := Normalize(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &Snapshot{id: s.id, table: normalized}
}

// Snapshot returns the current identifier and table as an immutable Reader.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// GetAssessments returns the assessments of variable in the current table.
func (s *Store) GetAssessments(variable string) (Assessments, error) {
	return s.Snapshot().Assessments(variable)
}

// GetIdentifierValue returns the participant id from the current table.
func (s *Store) GetIdentifierValue() (string, error) {
	return s.Snapshot().IdentifierValue()
}
