package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"github.com/vk/cdf2fhir/internal/engine"
	"github.com/vk/cdf2fhir/internal/store"
)

var ErrInvalidMapping = errors.New("invalid mapping configuration")

// Mapping is a complete transformation configuration.
type Mapping struct {
	ParticipantUniqueIdentifier store.Identifier `mapstructure:"participantUniqueIdentifier"`
	Mappings                    []engine.Target  `mapstructure:"mappings"`
}

// Load reads and validates the mapping configuration at path.
func Load(path string) (*Mapping, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading mapping configuration %s: %w", path, err)
	}

	var m Mapping
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("decoding mapping configuration %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Validate reports every missing field at once.
func (m *Mapping) Validate() error {
	var errs []error
	if m.ParticipantUniqueIdentifier.VariableName == "" {
		errs = append(errs, errors.New("participantUniqueIdentifier.variableName is required"))
	}
	if m.ParticipantUniqueIdentifier.AssessmentName == "" {
		errs = append(errs, errors.New("participantUniqueIdentifier.assessmentName is required"))
	}
	if len(m.Mappings) == 0 {
		errs = append(errs, errors.New("at least one mapping is required"))
	}
	for i, t := range m.Mappings {
		if t.Template == "" {
			errs = append(errs, fmt.Errorf("mappings[%d].template is required", i))
		}
		if t.Module == "" {
			errs = append(errs, fmt.Errorf("mappings[%d].module is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMapping, errors.Join(errs...))
	}
	return nil
}
