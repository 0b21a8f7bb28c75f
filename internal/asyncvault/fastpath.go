package asyncvault

import (
	"context"

	"github.com/cryptovaultfs/cryptovaultfs/internal/lockmgr"
)

// runRead implements the read fast path: attempt a
// non-blocking acquire of dirID's read lock. If granted, run fn inline
// while still holding it, so the caller pays no dispatch overhead. If the
// lock is contended, release nothing (there is nothing to release) and
// fall through to a goroutine-dispatched call that respects ctx
// cancellation, recording the resource class that was contended for the
// lock-contention metrics.
func runRead[T any](ctx context.Context, v *Vault, locks *lockmgr.Manager, dirID, resource string, fn func() (T, error)) (T, error) {
	var zero T

	if release := locks.TryDirReadLock(dirID); release != nil {
		defer release()
		v.metrics.fastPathHits.WithLabelValues(resource).Inc()
		return fn()
	}
	v.metrics.fastPathMisses.WithLabelValues(resource).Inc()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		val, err := fn()
		done <- result{val, err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}

// runDispatched runs fn on its own goroutine and returns its result unless
// ctx is cancelled first, for write operations that have no fast path
// (every write takes the directory write lock, which a non-blocking
// reader-side check cannot usefully probe).
func runDispatched[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		val, err := fn()
		done <- result{val, err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}
