package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/cdf2fhir/internal/app"
)

// Version is reported by --version. It is overridden at link time.
var Version = "dev"

const examples = `  Process all files in a folder (output folder required):
    cdf2fhir mapping.yaml participants/ -o bundles/
  Process a single file and write to an output folder:
    cdf2fhir mapping.yaml participant.json -o bundles/
  Process a single file and print the bundle to stdout:
    cdf2fhir mapping.yaml participant.json`

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(msg string) *ExitError {
	return &ExitError{Code: 2, Message: msg + "\n\nExpected usage examples:\n" + examples}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		cfg app.Config
		ran bool
	)
	cmd := &cobra.Command{
		Use:   "cdf2fhir <config_file> <input_path>",
		Short: "Transform cohort data files into FHIR transaction bundles",
		Long: `cdf2fhir reads participant variable tables, evaluates the mapping templates
named in the config file against each participant and writes one FHIR
transaction bundle per participant.`,
		Example:       examples,
		Version:       Version,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg.ConfigPath = args[0]
			cfg.InputPath = args[1]
			ran = true
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	flags := cmd.Flags()
	flags.StringVarP(&cfg.OutputDir, "output", "o", "", "Output folder. If not given, the bundle goes to stdout.")
	flags.StringVar(&cfg.PackageRoot, "package-root", "", "Folder that [PACKAGE] in template references points to. Defaults to the executable's folder.")
	flags.StringVar(&cfg.ErrorLogDir, "error-log-dir", "", "Folder for the logs of skipped participants. Defaults to the system temp folder.")
	flags.StringVar(&cfg.RequestURL, "request-url", "", "URL carried by every bundle entry request.")
	flags.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when the run ends.")
	flags.BoolVar(&cfg.Trace, "trace", false, "Export OpenTelemetry spans to stderr.")
	flags.StringVar(&cfg.TraceFile, "trace-file", "", "Export OpenTelemetry spans to this file instead of stderr. Implies --trace.")
	flags.IntVar(&cfg.Workers, "workers", 0, "Maximum number of templates evaluated at once. 0 means no limit.")

	if len(args) == 0 {
		slog.Debug("No arguments provided, printing usage and exiting.")
		if err := cmd.Help(); err != nil {
			return nil, false, &ExitError{Code: 1, Message: err.Error()}
		}
		return nil, true, nil
	}

	if err := cmd.Execute(); err != nil {
		return nil, false, usageError(err.Error())
	}
	if !ran {
		// --help or --version was printed.
		return nil, true, nil
	}
	slog.Debug("Arguments parsed successfully.")

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if cfg.TraceFile != "" {
		cfg.Trace = true
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
