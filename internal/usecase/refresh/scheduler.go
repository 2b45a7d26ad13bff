package refresh

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/domain"
)

// Scheduler drives periodic projection rebuilds: single writer, no
// overlapping cycles, each cycle bounded by its own timeout. Failed cycles
// log and leave the previous snapshot serving queries.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	timeout  time.Duration
	jitter   time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler. jitter delays the first run by a random
// amount up to its value so restarted replicas do not stampede the source store.
func NewScheduler(svc *Service, interval, timeout, jitter time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		svc:      svc,
		interval: interval,
		timeout:  timeout,
		jitter:   jitter,
		logger:   logger,
	}
}

// Run refreshes once at startup, then on every interval tick until ctx is
// cancelled. Cycles run strictly sequentially: a tick that fires while a
// cycle is still in flight waits for the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	if s.jitter > 0 {
		delay := time.Duration(rand.Int63n(int64(s.jitter)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if _, err := s.svc.Refresh(runCtx); err != nil {
		if errors.Is(err, domain.ErrRefreshInProgress) {
			// A force refresh is running; this tick is redundant.
			return
		}
		s.logger.Error("refresh cycle failed, keeping previous snapshot", zap.Error(err))
	}
}
