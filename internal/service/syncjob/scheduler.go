package syncjob

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the Job on a fixed interval. A tick that arrives while a
// run is still in progress is skipped.
type Scheduler struct {
	job       *Job
	interval  time.Duration
	onStartup bool
	logger    *zap.Logger
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	running   atomic.Bool
	wg        sync.WaitGroup
}

func NewScheduler(job *Job, interval time.Duration, onStartup bool, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		job:       job,
		interval:  interval,
		onStartup: onStartup,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Sync scheduler disabled")
		if s.onStartup {
			s.trigger(ctx)
		}
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.interval),
		zap.Bool("on_startup", s.onStartup))

	if s.onStartup {
		s.trigger(ctx)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ticker.C:
				s.trigger(ctx)
			case <-s.stopCh:
				s.logger.Info("Sync scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Sync scheduler context cancelled")
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) trigger(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous sync still running, skipping tick")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.job.Run(ctx)
	}()
}
