package scheduler

import (
	"context"
	"sync"
	"time"

	"mallhub/internal/shared/logger"
)

const DefaultExpiryInterval = time.Minute

// BatchJob processes one batch per call and reports how many items it
// touched.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// IntentExpiryScheduler periodically cancels checkout intents whose buyer
// never acted before the TTL ran out.
type IntentExpiryScheduler struct {
	job      BatchJob
	logger   logger.Interface
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

func NewIntentExpiryScheduler(job BatchJob, interval time.Duration, logger logger.Interface) *IntentExpiryScheduler {
	if interval <= 0 {
		interval = DefaultExpiryInterval
	}
	return &IntentExpiryScheduler{
		job:      job,
		logger:   logger,
		stopChan: make(chan struct{}),
		interval: interval,
	}
}

// Start runs the loop in the background until Stop or ctx cancellation.
func (s *IntentExpiryScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting intent expiry scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop is safe to call more than once and waits for the running batch.
func (s *IntentExpiryScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping intent expiry scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("intent expiry scheduler stopped")
	})
}

func (s *IntentExpiryScheduler) run(ctx context.Context) {
	// Clear anything that expired while the process was down.
	s.process(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.process(ctx)
		}
	}
}

func (s *IntentExpiryScheduler) process(ctx context.Context) {
	startTime := time.Now()

	count, err := s.job.Execute(ctx)
	if err != nil {
		s.logger.Errorw("failed to expire payment intents",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}
	if count > 0 {
		s.logger.Infow("expired payment intents",
			"count", count,
			"duration", time.Since(startTime),
		)
	}
}
