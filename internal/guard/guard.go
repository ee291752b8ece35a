// Package guard serializes transformation cycles over the shared store.
//
// A cycle installs a participant's table and then evaluates every template
// against it. Two overlapping cycles would read each other's participant, so
// each cycle holds the guard from install until its last evaluation settles.
package guard

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Guard is a mutual-exclusion lock whose acquisition can be abandoned through
// a context. The zero value is not usable; call New.
type Guard struct {
	sem *semaphore.Weighted
}

func New() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the guard is held or ctx is done. The returned release
// function is idempotent.
func (g *Guard) Acquire(ctx context.Context) (release func(), err error) {
	// semaphore.Acquire may succeed on a done context when the guard is free.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { g.sem.Release(1) }) }, nil
}

// Do runs fn while holding the guard. The guard is released on every exit
// path, including a panic in fn.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	release, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}
