// Package lifelines holds the helpers sample mappings share for reading
// Lifelines cohort data: wave dates, missed assessments and numeric values.
package lifelines

import (
	"errors"
	"strconv"
	"time"

	"github.com/vk/cdf2fhir/internal/precondition"
	"github.com/vk/cdf2fhir/internal/store"
)

// DateVariable records the date each assessment took place.
const DateVariable = "date"

// DateToISO turns a Lifelines year-month date such as "1992-5" into the
// ISO 8601 form "1992-05".
func DateToISO(date string) (string, error) {
	t, err := time.Parse("2006-1", date)
	if err != nil {
		return "", precondition.Fail("malformed Lifelines date %q", date)
	}
	return t.Format("2006-01"), nil
}

// AssessmentMissed reports whether the participant skipped wave, which is
// the case when no date was recorded for it.
func AssessmentMissed(r store.Reader, wave string) (bool, error) {
	v, err := r.Value(DateVariable, wave)
	if errors.Is(err, store.ErrUndefinedAssessment) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// CollectedDateTime returns the ISO date of wave. A missing date is a
// precondition violation; resource label names the mapping that needs it.
func CollectedDateTime(r store.Reader, resource, wave string) (string, error) {
	v, err := r.Value(DateVariable, wave)
	if err != nil {
		return "", err
	}
	date, err := precondition.Require(v, "%s: missing date in assessment %s", resource, wave)
	if err != nil {
		return "", err
	}
	return DateToISO(date)
}

// Number reads variable at wave as a number. It returns nil when no value
// was recorded.
func Number(r store.Reader, variable, wave string) (*float64, error) {
	v, err := r.Value(variable, wave)
	if err != nil || v == nil {
		return nil, err
	}
	n, err := strconv.ParseFloat(*v, 64)
	if err != nil {
		return nil, precondition.Fail("%s in assessment %s is not a number: %q", variable, wave, *v)
	}
	return &n, nil
}
