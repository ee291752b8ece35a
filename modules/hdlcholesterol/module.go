// Package hdlcholesterol maps the Lifelines HDL cholesterol results to a
// laboratory test result. Its callables are exported as plain functions.
package hdlcholesterol

import (
	"github.com/vk/cdf2fhir/internal/codes"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/vk/cdf2fhir/modules/contracts"
	"github.com/vk/cdf2fhir/modules/lifelines"
)

const resultVariable = "hdlchol_result_all_m_1"

// Waves are the assessments in which HDL cholesterol was measured.
var Waves = []string{"1a", "2a"}

// lowerLimit is in mmol/L. HDL cholesterol has no upper limit.
const lowerLimit = 1.0

// Module implements the registry.Module interface for this package.
type Module struct{}

func (Module) Name() string {
	return "hdlcholesterol"
}

func (Module) Exports() registry.Exports {
	var m contracts.LaboratoryTestResult = Mapping{}
	return registry.Funcs(map[string]any{
		"results":                     m.Results,
		"reference_range_lower_limit": m.ReferenceRangeLowerLimit,
		"reference_range_upper_limit": m.ReferenceRangeUpperLimit,
		"diagnostic_category_coding":  m.DiagnosticCategoryCoding,
		"diagnostic_code_coding":      m.DiagnosticCodeCoding,
		"diagnostic_code_text":        m.DiagnosticCodeText,
		"observation_category_coding": m.ObservationCategoryCoding,
		"observation_code_coding":     m.ObservationCodeCoding,
		"result_unit":                 m.ResultUnit,
		"lab_test_name":               m.LabTestName,
	})
}

// Mapping is the contracts.LaboratoryTestResult implementation for HDL
// cholesterol.
type Mapping struct{}

var _ contracts.LaboratoryTestResult = Mapping{}

// Results returns one result for each of Waves the participant attended.
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

		result, err := lifelines.Number(r, resultVariable, wave)
		if err != nil {
			return nil, err
		}
		collected, err := lifelines.CollectedDateTime(r, "hdlcholesterol", wave)
		if err != nil {
			return nil, err
		}
		entries = append(entries, record.NewEntry(map[string]any{
			"assessment":        wave,
			"resultFlags":       resultFlags(result),
			"testResult":        result,
			"collectedDateTime": collected,
		}))
	}
	return entries, nil
}

func resultFlags(result *float64) *codes.Properties {
	if result == nil || *result >= lowerLimit {
		return nil
	}
	p := codes.MustLookup(codes.SNOMED, "281300000")
	return &p
}

func (Mapping) ReferenceRangeLowerLimit() *float64 {
	v := lowerLimit
	return &v
}

func (Mapping) ReferenceRangeUpperLimit() *float64 {
	return nil
}

func (Mapping) DiagnosticCategoryCoding() []codes.Properties {
	return []codes.Properties{
		codes.MustLookup(codes.SNOMED, "4241000179101"),
		codes.MustLookup(codes.SNOMED, "19851009"),
	}
}

func (Mapping) DiagnosticCodeCoding() []codes.Properties {
	return []codes.Properties{codes.MustLookup(codes.LOINC, "14646-4")}
}

func (Mapping) DiagnosticCodeText() string {
	return "Cholesterol in HDL [Moles/Vol]"
}

func (Mapping) ObservationCategoryCoding() []codes.Properties {
	return []codes.Properties{
		codes.MustLookup(codes.SNOMED, "49581000146104"),
		codes.MustLookup(codes.SNOMED, "275711006"),
	}
}

func (Mapping) ObservationCodeCoding() []codes.Properties {
	return []codes.Properties{codes.MustLookup(codes.LOINC, "14646-4")}
}

func (Mapping) ResultUnit() codes.Properties {
	return codes.MustLookup(codes.UCUM, "mmol/L")
}

func (Mapping) LabTestName() string {
	return "hdl-chol"
}
