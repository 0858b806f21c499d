package pkgroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 10

// ErrPanicked is joined into Wait's result for every task that panicked.
var ErrPanicked = errors.New("pkgroutine: task panicked")

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// It collects errors returned by tasks and can be waited on using Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error
	wg   sync.WaitGroup
	sema chan struct{}
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f, blocking while the manager is at its concurrency limit.
// Tasks scheduled after ctx is done are skipped and report ctx.Err().
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	select {
	case g.sema <- struct{}{}:
	case <-ctx.Done():
		slog.WarnContext(ctx, "goroutine canceled before start", "because", ctx.Err())
		g.collect(ctx.Err())
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", string(debug.Stack()))
				g.collect(fmt.Errorf("%w: %v", ErrPanicked, rvr))
			}
		}()

		if err := f(ctx); err != nil {
			g.collect(err)
		}
	}()
}

// Wait blocks until all scheduled goroutines finish and returns any collected errors.
func (g *Manager) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) collect(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Map runs f over items with at most workers goroutines and returns the
// results in input order. A failed or panicking item leaves the zero value in
// its slot; the joined errors are returned alongside the results.
func Map[T, R any](ctx context.Context, workers int, items []T, f func(ctx context.Context, i int, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	mgr := NewManager(workers)

	for i, item := range items {
		mgr.Go(ctx, func(ctx context.Context) error {
			res, err := f(ctx, i, item)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}

	return out, mgr.Wait()
}
