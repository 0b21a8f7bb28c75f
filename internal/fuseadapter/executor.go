package fuseadapter

import (
	"context"
	"sync"
	"time"

	"github.com/cryptovaultfs/cryptovaultfs/common"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// SaturationPolicy selects what happens when the executor's work queue is
// full. A tagged-variant enum (switch over an int), matching the rest of
// this codebase's preference for dynamic dispatch over cipher combo/
// saturation behavior rather than an interface per policy.
type SaturationPolicy int

const (
	// Reject fails the submission immediately with KindExecutor.
	Reject SaturationPolicy = iota
	// Block waits for queue space, applying backpressure to the kernel
	// callback thread that submitted the work.
	Block
	// SpillToCaller runs the task synchronously on the submitting
	// goroutine instead of queueing it.
	SpillToCaller
)

type job struct {
	run  func()
	done chan struct{}
}

// Executor is a bounded worker pool: N long-lived goroutines drain a
// FIFO work queue (common.Queue) fed by enqueue.
//
// Metadata operations submit through Submit, which honors ctx's deadline
// and returns ETIMEDOUT-shaped errors on expiry, so a slow backing store
// can never wedge the kernel callback thread. Data operations that must
// never time out (writing a dirty buffer back on flush/fsync/release) call RunDirect, which
// bypasses the queue and timeout entirely.
type Executor struct {
	mu       sync.Mutex
	queue    common.Queue[*job]
	capacity int
	policy   SaturationPolicy
	notify   chan struct{}
	opCounts map[string]uint64

	workersDone sync.WaitGroup
	quit        chan struct{}
}

// NewExecutor starts workers goroutines draining a queue bounded at
// capacity pending jobs, applying policy when the queue is full.
func NewExecutor(workers, capacity int, policy SaturationPolicy) *Executor {
	e := &Executor{
		queue:    common.NewLinkedListQueue[*job](),
		capacity: capacity,
		policy:   policy,
		notify:   make(chan struct{}, capacity+workers),
		opCounts: make(map[string]uint64),
		quit:     make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		e.workersDone.Add(1)
		go e.worker()
	}
	return e
}

// OpCounts returns how many times each FUSE operation (named by the
// common.Op* constants) has been submitted through this executor, for
// diagnostics.
func (e *Executor) OpCounts() map[string]uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]uint64, len(e.opCounts))
	for k, v := range e.opCounts {
		out[k] = v
	}
	return out
}

func (e *Executor) worker() {
	defer e.workersDone.Done()
	for {
		select {
		case <-e.quit:
			return
		case <-e.notify:
			for {
				e.mu.Lock()
				if e.queue.IsEmpty() {
					e.mu.Unlock()
					break
				}
				j := e.queue.Pop()
				e.mu.Unlock()
				j.run()
				close(j.done)
			}
		}
	}
}

// Shutdown stops all worker goroutines. Pending jobs are abandoned; callers
// blocked in Submit will observe ctx cancellation or timeout instead of a
// result.
func (e *Executor) Shutdown() {
	close(e.quit)
	e.workersDone.Wait()
}

func (e *Executor) enqueue(ctx context.Context, j *job) error {
	for {
		e.mu.Lock()
		if e.queue.Len() < e.capacity {
			e.queue.Push(j)
			e.mu.Unlock()
			select {
			case e.notify <- struct{}{}:
			default:
			}
			return nil
		}
		e.mu.Unlock()

		switch e.policy {
		case Reject:
			return vaulterrors.New(vaulterrors.KindExecutor, "", "")
		case SpillToCaller:
			j.run()
			close(j.done)
			return nil
		default: // Block
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond):
				// brief backoff, then retry the capacity check
			}
		}
	}
}

// Submit runs fn on the worker pool and blocks until it completes, ctx is
// done, or the per-operation deadline on ctx expires — whichever comes
// first. fn's return value is delivered via the returned error only when
// fn itself returns non-nil; a ctx-driven timeout returns ctx.Err(). op
// names the FUSE operation (a common.Op* constant) for OpCounts.
func Submit[T any](ctx context.Context, e *Executor, op string, fn func() (T, error)) (T, error) {
	e.mu.Lock()
	e.opCounts[op]++
	e.mu.Unlock()

	var (
		result T
		fnErr  error
	)
	j := &job{
		run:  func() { result, fnErr = fn() },
		done: make(chan struct{}),
	}
	if err := e.enqueue(ctx, j); err != nil {
		var zero T
		return zero, err
	}

	select {
	case <-j.done:
		return result, fnErr
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// RunDirect executes fn on the calling goroutine, bypassing the queue and
// any timeout, for writing a dirty buffer back: a slow backing store should block
// rather than risk losing a write the kernel believes already succeeded.
// op names the FUSE operation (a common.Op* constant) for e.OpCounts.
func RunDirect[T any](e *Executor, op string, fn func() (T, error)) (T, error) {
	e.mu.Lock()
	e.opCounts[op]++
	e.mu.Unlock()
	return fn()
}
