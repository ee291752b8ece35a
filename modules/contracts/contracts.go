// Package contracts declares the method sets resource modules implement for
// each kind of FHIR resource. Templates call the methods in snake_case.
package contracts

import (
	"github.com/vk/cdf2fhir/internal/codes"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/store"
)

// BloodPressure yields one reading per assessment the participant attended.
// Entries declare assessment, cuffType, measuringLocation,
// systolicBloodPressure, diastolicBloodPressure, arterialBloodPressure and
// collectedDateTime.
type BloodPressure interface {
	Results(r store.Reader) ([]record.Entry, error)
}

// Patient yields the demographics of a participant. Each method returns nil
// when the data needed is missing.
type Patient interface {
	BirthDate(r store.Reader) (*string, error)
	DeceasedDateTime(r store.Reader) (*string, error)
	Gender(r store.Reader) (*codes.Properties, error)
}

// LaboratoryTestResult describes one laboratory test and its results.
type LaboratoryTestResult interface {
	Results(r store.Reader) ([]record.Entry, error)
	ReferenceRangeLowerLimit() *float64
	ReferenceRangeUpperLimit() *float64
	DiagnosticCategoryCoding() []codes.Properties
	DiagnosticCodeCoding() []codes.Properties
	DiagnosticCodeText() string
	ObservationCategoryCoding() []codes.Properties
	ObservationCodeCoding() []codes.Properties
	ResultUnit() codes.Properties
	LabTestName() string
}
