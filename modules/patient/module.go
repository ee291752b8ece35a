// Package patient maps Lifelines demographics to a patient resource.
package patient

import (
	"strconv"
	"strings"

	"github.com/vk/cdf2fhir/internal/codes"
	"github.com/vk/cdf2fhir/internal/precondition"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/vk/cdf2fhir/modules/contracts"
	"github.com/vk/cdf2fhir/modules/lifelines"
)

const baseline = "1a"

// Module implements the registry.Module interface for this package.
type Module struct{}

func (Module) Name() string {
	return "patient"
}

func (Module) Exports() registry.Exports {
	return registry.Contract(Mapping{})
}

// Mapping is the contracts.Patient implementation for Lifelines.
type Mapping struct{}

var _ contracts.Patient = Mapping{}

// BirthDate approximates the birth year from the baseline assessment date
// and the age reported in it.
func (Mapping) BirthDate(r store.Reader) (*string, error) {
	date, err := r.Value(lifelines.DateVariable, baseline)
	if err != nil || date == nil {
		return nil, err
	}
	age, err := r.Value("age", baseline)
	if err != nil || age == nil {
		return nil, err
	}

	year, err := strconv.Atoi(strings.SplitN(*date, "-", 2)[0])
	if err != nil {
		return nil, precondition.Fail("malformed assessment date %q", *date)
	}
	years, err := strconv.Atoi(*age)
	if err != nil {
		return nil, precondition.Fail("reported age is not a number: %q", *age)
	}
	birth := strconv.Itoa(year - years)
	return &birth, nil
}

func (Mapping) DeceasedDateTime(r store.Reader) (*string, error) {
	dod, err := r.Value("date_of_death", "global")
	if err != nil || dod == nil {
		return nil, err
	}
	iso, err := lifelines.DateToISO(*dod)
	if err != nil {
		return nil, err
	}
	return &iso, nil
}

func (Mapping) Gender(r store.Reader) (*codes.Properties, error) {
	g, err := r.Value("gender", baseline)
	if err != nil || g == nil {
		return nil, err
	}
	var code string
	switch *g {
	case "MALE":
		code = "M"
	case "FEMALE":
		code = "F"
	default:
		return nil, nil
	}
	p := codes.MustLookup(codes.Gender, code)
	return &p, nil
}
