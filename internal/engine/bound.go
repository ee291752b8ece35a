package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/cdf2fhir/internal/ctxlog"
	"github.com/vk/cdf2fhir/internal/ctyconv"
	"github.com/vk/cdf2fhir/internal/library"
	"github.com/vk/cdf2fhir/internal/precondition"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/registry"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/vk/cdf2fhir/internal/template"
	"github.com/zclconf/go-cty/cty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Record is one output resource.
type Record = record.Record

// BoundExpression is a template bound to its module's callables. It holds no
// participant data and may be evaluated concurrently.
type BoundExpression struct {
	target   Target
	template *template.Template
	funcs    []*registry.Func
	tracer   trace.Tracer
}

func (b *BoundExpression) Target() Target {
	return b.target
}

// Evaluate evaluates the template against r and normalizes the result.
func (b *BoundExpression) Evaluate(ctx context.Context, r store.Reader) ([]Record, error) {
	input, err := library.Input(r)
	if err != nil {
		return nil, &EvaluationError{Target: b.target, Err: err}
	}
	return b.evaluate(ctx, r, input)
}

func (b *BoundExpression) evaluate(ctx context.Context, r store.Reader, input cty.Value) ([]Record, error) {
	ctx, span := b.tracer.Start(ctx, "engine.evaluate", trace.WithAttributes(
		attribute.String("template", b.target.Template),
		attribute.String("module", b.target.Module),
	))
	defer span.End()
	_, logger := ctxlog.With(ctx, "template", b.target.Template, "module", b.target.Module)

	records, err := b.run(r, input, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug("Evaluation failed.", "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	logger.Debug("Evaluation finished.", "records", len(records))
	return records, nil
}

func (b *BoundExpression) run(r store.Reader, input cty.Value, logger *slog.Logger) ([]Record, error) {
	functions := library.Functions(r, logger)
	for _, f := range b.funcs {
		functions[f.Name()] = f.Bind(r)
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"input": input},
		Functions: functions,
	}

	val, diags := b.template.Evaluate(evalCtx)
	if diags.HasErrors() {
		err := diagnosticsError(diags, r)
		if errors.Is(err, precondition.ErrViolation) {
			return nil, err
		}
		return nil, &EvaluationError{Target: b.target, Err: err}
	}

	records, err := normalize(val)
	if err != nil {
		return nil, &EvaluationError{Target: b.target, Err: err}
	}
	return records, nil
}

// normalize turns a template result into records. Null attributes are
// removed first, so an object holding only nulls counts as empty.
func normalize(val cty.Value) ([]Record, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("%w: value is unknown", ErrUnexpectedResult)
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []Record
		i := 0
		for it := val.ElementIterator(); it.Next(); i++ {
			_, el := it.Element()
			rec, err := toRecord(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if rec != nil {
				out = append(out, rec)
			}
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		rec, err := toRecord(val)
		if err != nil || rec == nil {
			return nil, err
		}
		return []Record{rec}, nil
	default:
		return nil, fmt.Errorf("%w: got %s, want an object, a list of objects or null", ErrUnexpectedResult, ty.FriendlyName())
	}
}

// toRecord converts one object. It returns nil for null and empty objects.
func toRecord(val cty.Value) (Record, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("%w: value is unknown", ErrUnexpectedResult)
	}
	if val.IsNull() {
		return nil, nil
	}
	if ty := val.Type(); !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("%w: got %s, want an object", ErrUnexpectedResult, ty.FriendlyName())
	}
	v, err := ctyconv.FromValue(val)
	if err != nil {
		return nil, err
	}
	obj := ctyconv.Prune(v).(map[string]any)
	if len(obj) == 0 {
		return nil, nil
	}
	return Record(obj), nil
}
