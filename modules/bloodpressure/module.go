// Package bloodpressure maps the Lifelines blood pressure variables to
// blood pressure readings.
package bloodpressure

import (
	"github.com/vk/cdf2fhir/internal/codes"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/vk/cdf2fhir/modules/contracts"
	"github.com/vk/cdf2fhir/modules/lifelines"
)

// Waves are the assessments in which blood pressure was measured.
var Waves = []string{"1a", "2a"}

const (
	cuffVariable      = "bp_bandsize_all_m_1"
	armVariable       = "bp_arm_all_m_1"
	systolicVariable  = "bpavg_systolic_all_m_1"
	diastolicVariable = "bpavg_diastolic_all_m_1"
	arterialVariable  = "bpavg_arterial_all_m_1"
)

var cuffCodes = map[string]string{
	"1": "S",
	"2": "STD",
	"3": "L",
	"4": "KIND",
	"5": "XL",
}

var armCodes = map[string]string{
	"1": "368208006",
	"2": "368209003",
}

// Module implements the registry.Module interface for this package.
type Module struct{}

func (Module) Name() string {
	return "bloodpressure"
}

func (Module) Exports() registry.Exports {
	return registry.Contract(Mapping{})
}

// Mapping is the contracts.BloodPressure implementation for Lifelines.
type Mapping struct{}

var _ contracts.BloodPressure = Mapping{}

// Results returns one reading for each of Waves the participant attended.
func (Mapping) Results(r store.Reader) ([]record.Entry, error) {
	entries := make([]record.Entry, 0, len(Waves))
	for _, wave := range Waves {
		missed, err := lifelines.AssessmentMissed(r, wave)
		if err != nil {
			return nil, err
		}
		if missed {
			continue
		}
		e, err := reading(r, wave)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func reading(r store.Reader, wave string) (record.Entry, error) {
	cuff, err := CuffType(r, wave)
	if err != nil {
		return record.Entry{}, err
	}
	systolic, err := lifelines.Number(r, systolicVariable, wave)
	if err != nil {
		return record.Entry{}, err
	}
	diastolic, err := lifelines.Number(r, diastolicVariable, wave)
	if err != nil {
		return record.Entry{}, err
	}
	arterial, err := lifelines.Number(r, arterialVariable, wave)
	if err != nil {
		return record.Entry{}, err
	}
	collected, err := lifelines.CollectedDateTime(r, "bloodpressure", wave)
	if err != nil {
		return record.Entry{}, err
	}

	// The arm was only recorded in 3a, so no location is mapped for Waves.
	return record.NewEntry(map[string]any{
		"assessment":             wave,
		"cuffType":               cuff,
		"measuringLocation":      nil,
		"systolicBloodPressure":  systolic,
		"diastolicBloodPressure": diastolic,
		"arterialBloodPressure":  arterial,
		"collectedDateTime":      collected,
	}), nil
}

// CuffType returns the cuff used in wave, or nil when none was recorded or
// the recorded value has no code.
func CuffType(r store.Reader, wave string) (*codes.Properties, error) {
	return lookup(r, cuffVariable, wave, codes.CuffType, cuffCodes)
}

// MeasuringLocation returns the arm measured in wave, or nil.
func MeasuringLocation(r store.Reader, wave string) (*codes.Properties, error) {
	return lookup(r, armVariable, wave, codes.SNOMED, armCodes)
}

func lookup(r store.Reader, variable, wave, system string, mapping map[string]string) (*codes.Properties, error) {
	v, err := r.Value(variable, wave)
	if err != nil || v == nil {
		return nil, err
	}
	code, ok := mapping[*v]
	if !ok {
		return nil, nil
	}
	p := codes.MustLookup(system, code)
	return &p, nil
}
