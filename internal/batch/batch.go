// Package batch feeds participant input files through a transformer and
// writes the resulting bundles, one output file per input file.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/cdf2fhir/internal/bundle"
	"github.com/vk/cdf2fhir/internal/ctxlog"
	"github.com/vk/cdf2fhir/internal/fsutil"
	"github.com/vk/cdf2fhir/internal/precondition"
	"github.com/vk/cdf2fhir/internal/store"
)

const (
	inputExtension = ".json"
	outputSuffix   = "-fhir"
)

// Processor turns one participant's table into a bundle.
type Processor interface {
	Bundle(ctx context.Context, table store.Table) (*bundle.Bundle, error)
}

// Report summarizes a folder run.
type Report struct {
	// Processed lists the input files that produced an output file.
	Processed []string
	// Skipped lists the input files whose participant violated a
	// precondition.
	Skipped []string
	// ErrorLog and FailedFilesLog are the paths of the files written when
	// participants were skipped. They are empty otherwise.
	ErrorLog       string
	FailedFilesLog string
}

// Runner drives a Processor over input files.
type Runner struct {
	processor   Processor
	errorLogDir string
	now         func() time.Time
}

type Option func(*Runner)

// WithErrorLogDir sets where skip logs are written. Defaults to os.TempDir().
func WithErrorLogDir(dir string) Option {
	return func(r *Runner) {
		if dir != "" {
			r.errorLogDir = dir
		}
	}
}

// WithClock replaces time.Now when naming skip logs.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func New(p Processor, opts ...Option) *Runner {
	r := &Runner{
		processor:   p,
		errorLogDir: os.TempDir(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadTable decodes a participant input file:
// {"<variable>": {"<wave>": "<value>" | null}}.
func ReadTable(path string) (store.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table store.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decoding input file %s: %w", path, err)
	}
	if table == nil {
		return nil, fmt.Errorf("decoding input file %s: expected an object of variables", path)
	}
	return table, nil
}

func (r *Runner) bundle(ctx context.Context, inputFile string) (*bundle.Bundle, error) {
	table, err := ReadTable(inputFile)
	if err != nil {
		return nil, err
	}
	return r.processor.Bundle(ctx, table)
}

// RunToWriter transforms inputFile and writes the bundle to w.
func (r *Runner) RunToWriter(ctx context.Context, inputFile string, w io.Writer) error {
	b, err := r.bundle(ctx, inputFile)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(b)
}

// OutputPath returns the file inputFile is written to inside outDir:
// participant.json becomes participant-fhir.json.
func OutputPath(inputFile, outDir string) string {
	name := filepath.Base(inputFile)
	ext := filepath.Ext(name)
	return filepath.Join(outDir, strings.TrimSuffix(name, ext)+outputSuffix+ext)
}

// RunToFolder transforms inputFile into a file inside outDir and returns
// its path.
func (r *Runner) RunToFolder(ctx context.Context, inputFile, outDir string) (string, error) {
	b, err := r.bundle(ctx, inputFile)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encoding bundle of %s: %w", inputFile, err)
	}
	out := OutputPath(inputFile, outDir)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Info("Participant transformed.", "input", inputFile, "output", out)
	return out, nil
}

// RunFolder transforms every input file directly inside inDir. A participant
// that violates a precondition is skipped and reported; any other failure
// stops the run.
func (r *Runner) RunFolder(ctx context.Context, inDir, outDir string) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := fsutil.ListFilesByExtension(inDir, inputExtension)
	if err != nil {
		return nil, fmt.Errorf("listing input folder: %w", err)
	}

	report := &Report{}
	var causes []string
	for _, file := range files {
		logger.Info("Processing input file.", "file", file)
		_, err := r.RunToFolder(ctx, file, outDir)
		switch {
		case err == nil:
			report.Processed = append(report.Processed, file)
		case errors.Is(err, precondition.ErrViolation):
			msg := fmt.Sprintf("Skipping %s due to a variable that wasn't expected to be undefined: %v", file, err)
			logger.Warn("Participant skipped.", "file", file, "error", err)
			causes = append(causes, msg)
			report.Skipped = append(report.Skipped, file)
		default:
			return report, fmt.Errorf("aborting transformation due to an error while processing %s: %w", file, err)
		}
	}

	if len(report.Skipped) == 0 {
		logger.Info("Finished with no errors.", "processed", len(report.Processed))
		return report, nil
	}
	r.writeSkipLogs(ctx, report, causes)
	return report, nil
}

// writeSkipLogs never fails the run; a log that cannot be written is
// reported and left out of the report.
func (r *Runner) writeSkipLogs(ctx context.Context, report *Report, causes []string) {
	logger := ctxlog.FromContext(ctx)
	stamp := Timestamp(r.now())

	errorLog := filepath.Join(r.errorLogDir, "errors_"+stamp+".txt")
	if err := os.WriteFile(errorLog, []byte(strings.Join(causes, "\n")), 0o644); err != nil {
		logger.Error("Unable to save error file.", "path", errorLog, "error", err)
	} else {
		report.ErrorLog = errorLog
		logger.Info("Details of files with errors were written.", "path", errorLog)
	}

	failedLog := filepath.Join(r.errorLogDir, "failed_files_"+stamp+".txt")
	if err := os.WriteFile(failedLog, []byte(strings.Join(report.Skipped, "\n")), 0o644); err != nil {
		logger.Error("Unable to save error file.", "path", failedLog, "error", err)
	} else {
		report.FailedFilesLog = failedLog
		logger.Info("The list of files with inconsistencies was written.", "path", failedLog)
	}
}

// Timestamp renders t in UTC as 2006_01_02_15_04_05_000Z, safe for file
// names on every platform.
func Timestamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s_%03dZ", t.Format("2006_01_02_15_04_05"), t.Nanosecond()/int(time.Millisecond))
}
