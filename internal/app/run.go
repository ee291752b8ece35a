package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/cdf2fhir/internal/ctxlog"
)

// Run transforms the configured input: a folder into an output folder, a
// file into an output folder, or a file onto the output writer.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer func() {
		err = errors.Join(err, a.shutdown(ctx))
	}()

	if err := a.transformer.Prepare(ctx, a.mapping); err != nil {
		return fmt.Errorf("failed to prepare mappings: %w", err)
	}

	cfg := a.config
	switch {
	case cfg.InputIsDir():
		a.logger.Info("Transforming folder.", "input", cfg.InputPath, "output", cfg.OutputDir)
		report, err := a.runner.RunFolder(ctx, cfg.InputPath, cfg.OutputDir)
		a.report = report
		if err != nil {
			return err
		}
		if len(report.Skipped) > 0 {
			a.logger.Warn("Some participants were skipped.",
				"processed", len(report.Processed),
				"skipped", len(report.Skipped),
				"error_log", report.ErrorLog,
				"failed_files_log", report.FailedFilesLog,
			)
		}

	case cfg.OutputDir != "":
		if _, err := a.runner.RunToFolder(ctx, cfg.InputPath, cfg.OutputDir); err != nil {
			return err
		}

	default:
		if err := a.runner.RunToWriter(ctx, cfg.InputPath, a.outW); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) shutdown(ctx context.Context) error {
	var errs []error
	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.config.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		} else {
			a.logger.Debug("Metrics written.", "path", a.config.MetricsFile)
		}
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down tracing: %w", err))
	}
	return errors.Join(errs...)
}
