package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) SweepExpired(ctx context.Context) int {
	s.calls.Add(1)
	return 0
}

func TestScheduler_RunsImmediatelyAndPeriodically(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, 10*time.Millisecond, zap.NewNop())

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_StopHaltsSweeps(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, 5*time.Millisecond, zap.NewNop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 1
	}, time.Second, time.Millisecond)

	s.Stop()
	after := sweeper.calls.Load()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, sweeper.calls.Load())

	// повторный Stop безопасен
	s.Stop()
}

func TestScheduler_ContextCancelStopsTask(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep task did not stop after context cancel")
	}

	s.Stop()
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, 0, zap.NewNop())
	assert.Equal(t, DefaultSweepInterval, s.interval)
}
