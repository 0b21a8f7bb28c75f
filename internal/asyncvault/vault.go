// Package asyncvault is the cooperative-scheduler counterpart to
// internal/vaultops: every exported method takes a context.Context and can
// be cancelled at any of its suspension points (lock acquisition,
// directory read, file read/write). Go has no tokio::fs equivalent, so
// "suspension point" here means "point where the goroutine blocks and
// ctx.Done() is also selected on" rather than a literal yield — each
// blocking step runs on its own goroutine while the caller selects on
// ctx.Done(), so cancellation of the parent context unblocks the caller
// even though the underlying OS call keeps running to completion in that
// goroutine.
//
// golang.org/x/sync/errgroup runs Lookup's three finds concurrently.
package asyncvault

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

// Vault wraps a *vaultops.Vault with the async frontend's read-fast-path
// and lock-contention metrics. Bounding CPU-bound filename/target crypto
// concurrency during a listing is vaultops.ListAll's job (it fans out
// per-entry with its own cap), since that work happens inside the single
// dispatched call this layer hands off.
type Vault struct {
	sync    *vaultops.Vault
	metrics *lockMetrics
}

// New wraps an already-open sync Vault. reg may be nil to skip metrics
// registration (e.g. in tests).
func New(sync *vaultops.Vault, reg prometheus.Registerer) *Vault {
	return &Vault{
		sync:    sync,
		metrics: newLockMetrics(reg),
	}
}

// Sync exposes the underlying synchronous vault, for callers (tests, the
// unlocked-reader handle variant) that need direct access.
func (v *Vault) Sync() *vaultops.Vault { return v.sync }
