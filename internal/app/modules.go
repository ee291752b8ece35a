package app

import (
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/modules/bloodpressure"
	"github.com/vk/cdf2fhir/modules/hdlcholesterol"
	"github.com/vk/cdf2fhir/modules/patient"
)

// coreModules is the definitive list of all resource modules that are
// compiled into the cdf2fhir binary.
var coreModules = []registry.Module{
	bloodpressure.Module{},
	hdlcholesterol.Module{},
	patient.Module{},
}
