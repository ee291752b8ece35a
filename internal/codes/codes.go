// Package codes is a small catalog of the coded concepts sample mappings use.
package codes

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Properties is one coded concept as it appears in a FHIR coding.
type Properties struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

const (
	SNOMED   = "snomed"
	LOINC    = "loinc"
	UCUM     = "ucum"
	Gender   = "gender"
	CuffType = "cuff"
)

var ErrUnknownCode = errors.New("unknown code")

var systemURLs = map[string]string{
	SNOMED:   "http://snomed.info/sct",
	LOINC:    "http://loinc.org",
	UCUM:     "http://unitsofmeasure.org",
	Gender:   "http://hl7.org/fhir/v3/AdministrativeGender",
	CuffType: "urn:cdf2fhir:cuff-type",
}

var catalog = map[string]map[string]string{
	SNOMED: {
		"4241000179101":  "Laboratory report",
		"19851009":       "Microbiology procedure",
		"275711006":      "Serum chemistry test",
		"49581000146104": "Laboratory test finding",
		"281300000":      "Below reference range",
		"281302008":      "Above reference range",
		"368208006":      "Left upper arm structure",
		"368209003":      "Right upper arm structure",
	},
	LOINC: {
		"85354-9": "Blood pressure panel with all children optional",
		"8480-6":  "Systolic blood pressure",
		"8462-4":  "Diastolic blood pressure",
		"8478-0":  "Mean blood pressure",
		"14646-4": "Cholesterol in HDL [Moles/volume] in Serum or Plasma",
	},
	UCUM: {
		"mm[Hg]": "millimeter of mercury",
		"mmol/L": "millimole per liter",
	},
	Gender: {
		"M":  "Male",
		"F":  "Female",
		"UN": "Undifferentiated",
	},
	CuffType: {
		"S":    "Small adult cuff",
		"STD":  "Standard adult cuff",
		"L":    "Large adult cuff",
		"KIND": "Pediatric cuff",
		"XL":   "Thigh cuff",
	},
}

// Lookup returns the concept code identifies in system. system is one of the
// short names declared in this package.
func Lookup(system, code string) (Properties, error) {
	codes, ok := catalog[system]
	if !ok {
		return Properties{}, fmt.Errorf("%w: unknown code system %q (known: %v)", ErrUnknownCode, system, Systems())
	}
	display, ok := codes[code]
	if !ok {
		return Properties{}, fmt.Errorf("%w: %q is not in code system %q", ErrUnknownCode, code, system)
	}
	return Properties{System: systemURLs[system], Code: code, Display: display}, nil
}

// MustLookup is Lookup for codes known at compile time. It panics on a miss.
func MustLookup(system, code string) Properties {
	p, err := Lookup(system, code)
	if err != nil {
		panic(err)
	}
	return p
}

// Systems returns the short names of the known code systems, sorted.
func Systems() []string {
	return slices.Sorted(maps.Keys(catalog))
}
