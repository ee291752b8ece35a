package engine

import (
	"context"
	"fmt"

	"github.com/vk/cdf2fhir/internal/ctxlog"
	"github.com/vk/cdf2fhir/internal/library"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/template"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Target pairs a template reference with the name of the module whose
// callables the template uses.
type Target struct {
	Template string `json:"template" yaml:"template" mapstructure:"template"`
	Module   string `json:"module" yaml:"module" mapstructure:"module"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s <- %s", t.Template, t.Module)
}

// Engine prepares and evaluates templates.
type Engine struct {
	loader  *template.Loader
	modules *registry.Registry
	tracer  trace.Tracer
	workers int
}

type Option func(*Engine)

// WithTracer records a span per evaluated target.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithWorkers caps how many targets are evaluated at once. Zero or less
// means no cap.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func New(loader *template.Loader, modules *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		loader:  loader,
		modules: modules,
		tracer:  noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prepare binds every target. It fails on the first target that cannot be
// bound.
func (e *Engine) Prepare(ctx context.Context, targets []Target) ([]*BoundExpression, error) {
	logger := ctxlog.FromContext(ctx)
	bound := make([]*BoundExpression, 0, len(targets))
	for _, t := range targets {
		b, err := e.bind(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("preparing %s: %w", t, err)
		}
		bound = append(bound, b)
	}
	logger.Debug("Targets prepared.", "count", len(bound))
	return bound, nil
}

func (e *Engine) bind(ctx context.Context, t Target) (*BoundExpression, error) {
	tmpl, err := e.loader.Load(ctx, t.Template)
	if err != nil {
		return nil, err
	}

	mod, ok := e.modules.Lookup(t.Module)
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownModule, t.Module, e.modules.Names())
	}
	funcs, err := registry.Resolve(mod)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string)
	for _, name := range library.Names() {
		owners[name] = "the library"
	}
	for _, f := range funcs {
		if prev, dup := owners[f.Name()]; dup {
			return nil, fmt.Errorf("%w: %q is provided by %s and by module %q", registry.ErrNameCollision, f.Name(), prev, mod.Name())
		}
		owners[f.Name()] = fmt.Sprintf("module %q", mod.Name())
	}
	for _, name := range tmpl.Called {
		if _, ok := owners[name]; !ok {
			return nil, fmt.Errorf("%w: %s calls %q", ErrUnknownFunction, tmpl.Path, name)
		}
	}

	return &BoundExpression{
		target:   t,
		template: tmpl,
		funcs:    funcs,
		tracer:   e.tracer,
	}, nil
}
