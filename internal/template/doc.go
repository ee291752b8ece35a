/*
Package template loads the declarative documents that describe how one kind of
clinical resource is built from cohort data.

A template is an HCL file:

	description = "Blood pressure, one observation per assessment"

	locals {
	  readings = results()
	}

	resource = [for r in local.readings : {
	  resourceType = "Observation"
	  id           = wave_resource_id("bloodpressure", r.assessment)
	}]

The resource attribute is required and evaluates to one record, a list of
records or null. Locals are evaluated in dependency order and are visible as
local.<name>. The participant's variable table is visible as
input.<variable>["<wave>"]. No other root variables exist.

Function calls are collected at parse time so a template that calls a function
nothing provides is rejected before any participant is processed.
*/
package template
