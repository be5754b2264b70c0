package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Revaluer is anything that can recompute appreciation-adjusted prices and
// estimates across all active sessions. Adjusted prices depend on the
// current date, so they drift overnight and need a daily refresh.
type Revaluer interface {
	RecomputeAll()
}

type Scheduler struct {
	revaluer Revaluer
	logger   *logrus.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	jobMutex sync.Mutex
}

func NewScheduler(revaluer Revaluer, logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		revaluer: revaluer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the midnight revaluation loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("Revaluation scheduler started")
}

// Stop cancels the loop and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("Revaluation scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			if now.Hour() == 0 && now.Minute() == 0 {
				s.runRevaluation()
			}
		}
	}
}

func (s *Scheduler) runRevaluation() {
	// Skip if a previous run is somehow still going
	if !s.jobMutex.TryLock() {
		s.logger.Warn("Previous revaluation still running, skipping")
		return
	}
	defer s.jobMutex.Unlock()

	start := time.Now()
	s.logger.Info("Starting nightly revaluation")
	s.revaluer.RecomputeAll()
	s.logger.WithField("duration", time.Since(start).String()).Info("Nightly revaluation complete")
}
