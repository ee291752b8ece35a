package engine

import (
	"context"

	"github.com/vk/cdf2fhir/internal/ctxlog"
	"github.com/vk/cdf2fhir/internal/library"
	"github.com/vk/cdf2fhir/internal/store"
	"golang.org/x/sync/errgroup"
)

// EvaluateAll evaluates every BoundExpression against r concurrently and
// returns their records flattened in target order. The first failure cancels
// evaluations that have not started yet and is returned.
func (e *Engine) EvaluateAll(ctx context.Context, r store.Reader, bound []*BoundExpression) ([]Record, error) {
	logger := ctxlog.FromContext(ctx)
	input, err := library.Input(r)
	if err != nil {
		return nil, err
	}

	results := make([][]Record, len(bound))
	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i, b := range bound {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := b.evaluate(gctx, r, input)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Record
	for _, records := range results {
		out = append(out, records...)
	}
	logger.Debug("All targets evaluated.", "targets", len(bound), "records", len(out))
	return out, nil
}

// Transform installs table into s and evaluates every BoundExpression against
// the installed data. Callers that share s between goroutines must hold the
// guard for the whole call.
func (e *Engine) Transform(ctx context.Context, s *store.Store, table store.Table, bound []*BoundExpression) ([]Record, error) {
	s.SetTable(table)
	return e.EvaluateAll(ctx, s.Snapshot(), bound)
}
