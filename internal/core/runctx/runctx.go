// Package runctx manages the shared resources a role needs for the duration
// of one run: sessions, connections, template engines. Resources are
// acquired in order on entry and released in reverse order on every exit
// path, so a run can never leak a handle.
package runctx

import (
	"context"
	"fmt"
	"log/slog"
)

// Resource is one acquirable handle managed by a run context.
type Resource interface {
	// Name identifies the resource in logs.
	Name() string

	// Acquire makes the resource usable. It is called at most once per run.
	Acquire(ctx context.Context) error

	// Release frees the resource. It is called exactly once for every
	// successful Acquire, in reverse acquisition order.
	Release() error
}

// Funcs adapts a pair of closures into a Resource.
type Funcs struct {
	ResourceName string
	AcquireFunc  func(ctx context.Context) error
	ReleaseFunc  func() error
}

func (f Funcs) Name() string { return f.ResourceName }

func (f Funcs) Acquire(ctx context.Context) error {
	if f.AcquireFunc == nil {
		return nil
	}
	return f.AcquireFunc(ctx)
}

func (f Funcs) Release() error {
	if f.ReleaseFunc == nil {
		return nil
	}
	return f.ReleaseFunc()
}

// RunContext holds the resources of one role run.
type RunContext struct {
	resources []Resource
	acquired  []Resource
}

// New creates a run context over the given resources. Order matters:
// resources are acquired front to back and released back to front.
func New(resources ...Resource) *RunContext {
	return &RunContext{resources: resources}
}

// Acquire acquires all resources in order. If any acquisition fails, the
// resources acquired so far are released before the error propagates, so a
// failed Acquire leaves nothing held.
func (rc *RunContext) Acquire(ctx context.Context) error {
	for _, r := range rc.resources {
		if err := r.Acquire(ctx); err != nil {
			rc.release(err)
			return fmt.Errorf("failed to acquire %s: %w", r.Name(), err)
		}
		rc.acquired = append(rc.acquired, r)
	}
	return nil
}

// Release releases all acquired resources in reverse order. When runErr is
// non-nil it is the error surfaced to the caller: release failures are
// logged but never mask it. Without a prior error, the first release
// failure is returned.
func (rc *RunContext) Release(runErr error) error {
	return rc.release(runErr)
}

func (rc *RunContext) release(runErr error) error {
	var firstErr error
	for i := len(rc.acquired) - 1; i >= 0; i-- {
		r := rc.acquired[i]
		if err := r.Release(); err != nil {
			if runErr != nil || firstErr != nil {
				slog.Error("failed to release resource", "resource", r.Name(), "error", err)
			} else {
				firstErr = fmt.Errorf("failed to release %s: %w", r.Name(), err)
			}
		}
	}
	rc.acquired = nil
	return firstErr
}

// Run acquires the context, invokes fn, and releases on every exit path.
// The error surfaced is fn's error when present, otherwise the first
// release failure.
func (rc *RunContext) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := rc.Acquire(ctx); err != nil {
		return err
	}

	runErr := fn(ctx)
	if relErr := rc.Release(runErr); runErr == nil {
		return relErr
	}
	return runErr
}
