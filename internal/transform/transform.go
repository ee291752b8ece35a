// Package transform runs guarded transformation cycles: install one
// participant's table, evaluate every prepared target against it and
// optionally wrap the records into a bundle.
package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vk/cdf2fhir/internal/bundle"
	"github.com/vk/cdf2fhir/internal/config"
	"github.com/vk/cdf2fhir/internal/ctxlog"
	"github.com/vk/cdf2fhir/internal/engine"
	"github.com/vk/cdf2fhir/internal/guard"
	"github.com/vk/cdf2fhir/internal/metrics"
	"github.com/vk/cdf2fhir/internal/precondition"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var ErrNotPrepared = errors.New("transformer has not been prepared")

// Transformer owns one Store and the Guard that protects it.
type Transformer struct {
	engine    *engine.Engine
	store     *store.Store
	guard     *guard.Guard
	assembler *bundle.Assembler
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	mu    sync.RWMutex
	bound []*engine.BoundExpression
}

type Option func(*Transformer)

func WithAssembler(a *bundle.Assembler) Option {
	return func(t *Transformer) { t.assembler = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transformer) { t.metrics = m }
}

func WithTracer(tr trace.Tracer) Option {
	return func(t *Transformer) { t.tracer = tr }
}

func New(e *engine.Engine, opts ...Option) *Transformer {
	t := &Transformer{
		engine:    e,
		store:     store.New(),
		guard:     guard.New(),
		assembler: bundle.NewAssembler(),
		tracer:    noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Prepare records the participant identifier of cfg and binds its targets.
// It may be called again to switch configurations.
func (t *Transformer) Prepare(ctx context.Context, cfg *config.Mapping) error {
	bound, err := t.engine.Prepare(ctx, cfg.Mappings)
	if err != nil {
		return err
	}
	err = t.guard.Do(ctx, func(context.Context) error {
		t.store.SetUniqueIdentifier(cfg.ParticipantUniqueIdentifier)
		return nil
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.bound = bound
	t.mu.Unlock()
	t.metrics.SetPreparedTargets(len(bound))
	ctxlog.FromContext(ctx).Info("Transformer prepared.", "targets", len(bound))
	return nil
}

// Records runs one guarded cycle and returns its records.
func (t *Transformer) Records(ctx context.Context, table store.Table) ([]record.Record, error) {
	t.mu.RLock()
	bound := t.bound
	t.mu.RUnlock()
	if bound == nil {
		return nil, ErrNotPrepared
	}

	ctx, span := t.tracer.Start(ctx, "transform.cycle", trace.WithAttributes(attribute.Int("targets", len(bound))))
	defer span.End()

	start := time.Now()
	var records []record.Record
	err := t.guard.Do(ctx, func(ctx context.Context) error {
		var err error
		records, err = t.engine.Transform(ctx, t.store, table, bound)
		return err
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		t.metrics.ObserveCycle(metrics.OutcomeOK, len(records), elapsed)
		span.SetAttributes(attribute.Int("records", len(records)))
		return records, nil
	case errors.Is(err, precondition.ErrViolation):
		t.metrics.ObserveCycle(metrics.OutcomePrecondition, 0, elapsed)
	default:
		t.metrics.ObserveCycle(metrics.OutcomeError, 0, elapsed)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// Bundle runs one guarded cycle and wraps its records into a transaction
// bundle.
func (t *Transformer) Bundle(ctx context.Context, table store.Table) (*bundle.Bundle, error) {
	records, err := t.Records(ctx, table)
	if err != nil {
		return nil, err
	}
	b, err := t.assembler.Assemble(records)
	if err != nil {
		return nil, fmt.Errorf("assembling bundle: %w", err)
	}
	return b, nil
}
