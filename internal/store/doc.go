/*
Package store holds the participant data a transformation cycle reads.

A Store carries two things: the configured participant identifier descriptor
and the current variable table. A table maps variable names to their
assessments, and an assessment map maps wave labels to an optional string
value. Blank values are normalized to absent (nil) once, when a table is
installed, so readers never see whitespace-only strings.

Two kinds of missing data are kept apart:

  - structural absence: the variable or the wave key does not exist at all.
    This is always an error (ErrStructuralAbsence and its wrappers).
  - value absence: the key exists but holds no value. This is a nil *string
    and is a normal, expected condition.

Mapping code never touches the mutable Store. Each cycle takes a Snapshot,
which implements Reader and is safe for concurrent use.
*/
package store
