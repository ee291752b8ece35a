package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/cdf2fhir/internal/batch"
	"github.com/vk/cdf2fhir/internal/bundle"
	"github.com/vk/cdf2fhir/internal/config"
	"github.com/vk/cdf2fhir/internal/ctxlog"
	"github.com/vk/cdf2fhir/internal/engine"
	"github.com/vk/cdf2fhir/internal/metrics"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/template"
	"github.com/vk/cdf2fhir/internal/tracing"
	"github.com/vk/cdf2fhir/internal/transform"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW        io.Writer
	logger      *slog.Logger
	config      *Config
	mapping     *config.Mapping
	registry    *registry.Registry
	transformer *transform.Transformer
	runner      *batch.Runner
	metrics     *metrics.Metrics
	tracing     *tracing.Provider

	report *batch.Report
}

// NewApp builds a ready to run App. Bundles written to the output writer go
// to outW; logs and stdout traces go to logW. modules defaults to the
// modules compiled into the binary.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	mapping, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Mapping configuration loaded.", "path", cfg.ConfigPath, "targets", len(mapping.Mappings))

	resolver, err := template.NewResolver(cfg.PackageRoot)
	if err != nil {
		return nil, err
	}
	logger.Debug("Template package root resolved.", "root", resolver.Root())

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	if err := reg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid module registry: %w", err)
	}
	logger.Debug("Registry validation passed.", "modules", reg.Names())

	traceCfg := tracing.Config{Enabled: cfg.Trace, Exporter: "stdout", Writer: logW}
	if cfg.TraceFile != "" {
		traceCfg.Exporter = "file"
		traceCfg.FilePath = cfg.TraceFile
	}
	tp, err := tracing.NewProvider(traceCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	m := metrics.New()
	eng := engine.New(template.NewLoader(resolver), reg,
		engine.WithTracer(tp.Tracer()),
		engine.WithWorkers(cfg.Workers),
	)
	var assemblerOpts []bundle.Option
	if cfg.RequestURL != "" {
		assemblerOpts = append(assemblerOpts, bundle.WithRequestURL(cfg.RequestURL))
	}
	t := transform.New(eng,
		transform.WithAssembler(bundle.NewAssembler(assemblerOpts...)),
		transform.WithMetrics(m),
		transform.WithTracer(tp.Tracer()),
	)

	return &App{
		outW:        outW,
		logger:      logger,
		config:      cfg,
		mapping:     mapping,
		registry:    reg,
		transformer: t,
		runner:      batch.New(t, batch.WithErrorLogDir(cfg.ErrorLogDir)),
		metrics:     m,
		tracing:     tp,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Report returns the outcome of the last folder run, or nil.
func (a *App) Report() *batch.Report {
	return a.report
}
