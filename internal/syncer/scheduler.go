package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the fixed delay between sync cycles.
const DefaultInterval = time.Hour

// Scheduler drives the Syncer on a fixed interval: one cycle fires
// immediately, then one per interval. Cycles run sequentially inside
// Run's goroutine, so two cycles can never overlap.
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler constructs a Scheduler; interval defaults to one hour.
func NewScheduler(syncer *Syncer, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{syncer: syncer, interval: interval, logger: logger}
}

// Run blocks until ctx finishes, executing one cycle immediately and
// another per tick. A failed cycle is logged; the ticker keeps going.
func (s *Scheduler) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.syncer.RunCycle(ctx); err != nil {
		s.logger.Error("scheduled sync cycle failed", zap.Error(err))
	}
}
