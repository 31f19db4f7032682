package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mallhub/internal/shared/logger"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) Execute(context.Context) (int, error) {
	j.calls.Add(1)
	return 1, j.err
}

func TestIntentExpiryScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	job := &countingJob{}
	s := NewIntentExpiryScheduler(job, 10*time.Millisecond, logger.NewNopLogger())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return job.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()

	after := job.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, job.calls.Load(), "no batches after Stop")
}

func TestIntentExpiryScheduler_KeepsRunningAfterErrors(t *testing.T) {
	job := &countingJob{err: errors.New("db down")}
	s := NewIntentExpiryScheduler(job, 10*time.Millisecond, logger.NewNopLogger())

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestIntentExpiryScheduler_StopsOnContextCancel(t *testing.T) {
	job := &countingJob{}
	s := NewIntentExpiryScheduler(job, time.Hour, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	assert.Eventually(t, func() bool { return job.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}

func TestNewIntentExpiryScheduler_DefaultInterval(t *testing.T) {
	s := NewIntentExpiryScheduler(&countingJob{}, 0, logger.NewNopLogger())
	assert.Equal(t, DefaultExpiryInterval, s.interval)
}
