// Package config loads the mapping configuration: which variable identifies a
// participant and which (template, module) targets make up a transformation.
//
// Files are read with viper, so YAML, JSON and TOML all work; the format is
// chosen by file extension.
package config
