package app

import (
	"errors"
	"fmt"
	"os"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath  string // mapping config, YAML or JSON
	InputPath   string // participant file or folder of participant files
	OutputDir   string // empty writes a single bundle to the output writer
	PackageRoot string // what [PACKAGE] expands to in template references
	ErrorLogDir string
	RequestURL  string

	LogFormat   string
	LogLevel    string
	MetricsFile string
	Trace       bool
	TraceFile   string
	Workers     int

	inputIsDir bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}

	info, err := os.Stat(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config file %s is a directory", cfg.ConfigPath)
	}

	info, err = os.Stat(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("input path: %w", err)
	}
	cfg.inputIsDir = info.IsDir()
	if cfg.inputIsDir && cfg.OutputDir == "" {
		return nil, errors.New("an output folder is required when the input is a folder")
	}

	if cfg.OutputDir != "" {
		info, err := os.Stat(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("output folder: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("output folder %s is not a directory", cfg.OutputDir)
		}
	}

	if cfg.LogLevel != "" && !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be one of %v", cfg.LogLevel, logLevels)
	}
	if cfg.LogFormat != "" && !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, logFormats)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}

	return &cfg, nil
}

// InputIsDir reports whether InputPath is a folder of participant files.
func (c *Config) InputIsDir() bool {
	return c.inputIsDir
}
