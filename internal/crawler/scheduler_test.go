package crawler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	block chan struct{}
	err   error
}

func (r *countingRunner) Run(ctx context.Context, opts RunOptions) (RunStats, error) {
	r.calls.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
		}
	}
	return RunStats{Inserted: 1}, r.err
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, RunOptions{}, time.Hour, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	s := NewScheduler(runner, RunOptions{}, time.Hour, nil)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	s.runOnce(context.Background())
	assert.Equal(t, int32(1), runner.calls.Load())

	close(runner.block)
	s.Stop()

	s.runOnce(context.Background())
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestScheduler_RunErrorIsLogged(t *testing.T) {
	runner := &countingRunner{err: errors.New("boom")}
	s := NewScheduler(runner, RunOptions{}, time.Hour, nil)

	s.runOnce(context.Background())
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_InvalidInterval(t *testing.T) {
	s := NewScheduler(&countingRunner{}, RunOptions{}, 0, nil)
	assert.Error(t, s.Start(context.Background()))
}
