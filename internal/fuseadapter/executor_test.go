package fuseadapter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptovaultfs/cryptovaultfs/common"
)

func TestSubmit_RunsAndReturnsResult(t *testing.T) {
	e := NewExecutor(2, 4, Block)
	defer e.Shutdown()

	result, err := Submit(context.Background(), e, common.OpGetInodeAttributes, func() (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, uint64(1), e.OpCounts()[common.OpGetInodeAttributes])
}

func TestSubmit_PropagatesError(t *testing.T) {
	e := NewExecutor(1, 4, Block)
	defer e.Shutdown()

	wantErr := errors.New("boom")
	_, err := Submit(context.Background(), e, common.OpLookUpInode, func() (int, error) {
		return 0, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
}

func TestSubmit_RejectPolicyFailsWhenQueueFull(t *testing.T) {
	e := NewExecutor(1, 1, Reject)
	defer e.Shutdown()

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = Submit(context.Background(), e, common.OpReadFile, func() (struct{}, error) {
			close(started)
			<-block
			return struct{}{}, nil
		})
	}()
	<-started

	// Fill the one queue slot.
	go func() {
		_, _ = Submit(context.Background(), e, common.OpReadFile, func() (struct{}, error) {
			<-block
			return struct{}{}, nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	_, err := Submit(context.Background(), e, common.OpReadFile, func() (struct{}, error) {
		return struct{}{}, nil
	})
	assert.Error(t, err)
	close(block)
}

func TestSubmit_SpillToCallerRunsInline(t *testing.T) {
	e := NewExecutor(1, 0, SpillToCaller)
	defer e.Shutdown()

	result, err := Submit(context.Background(), e, common.OpWriteFile, func() (int, error) {
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, result)
}

func TestSubmit_ContextCancelReturnsContextError(t *testing.T) {
	e := NewExecutor(1, 1, Block)
	defer e.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = Submit(context.Background(), e, common.OpReadFile, func() (struct{}, error) {
			close(started)
			<-block
			return struct{}{}, nil
		})
	}()
	<-started
	defer close(block)

	_, err := Submit(ctx, e, common.OpReadFile, func() (int, error) {
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDirect_BypassesQueueAndTracksOp(t *testing.T) {
	e := NewExecutor(0, 0, Block)
	defer e.Shutdown()

	var ran atomic.Bool
	result, err := RunDirect(e, common.OpFlushFile, func() (int, error) {
		ran.Store(true)
		return 9, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 9, result)
	assert.True(t, ran.Load())
	assert.Equal(t, uint64(1), e.OpCounts()[common.OpFlushFile])
}

func TestExecutor_OpCountsAccumulatesAcrossOps(t *testing.T) {
	e := NewExecutor(2, 4, Block)
	defer e.Shutdown()

	for i := 0; i < 3; i++ {
		_, _ = Submit(context.Background(), e, common.OpLookUpInode, func() (struct{}, error) {
			return struct{}{}, nil
		})
	}
	_, _ = Submit(context.Background(), e, common.OpReadDir, func() (struct{}, error) {
		return struct{}{}, nil
	})

	counts := e.OpCounts()
	assert.Equal(t, uint64(3), counts[common.OpLookUpInode])
	assert.Equal(t, uint64(1), counts[common.OpReadDir])
}
