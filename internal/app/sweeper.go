package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/platform/correlation"
)

const defaultSweepInterval = time.Minute

// Sweeper periodically removes expired sessions from stores that do not expire them natively.
type Sweeper struct {
	store    domain.SessionSweeper
	clock    clockwork.Clock
	interval time.Duration
}

func NewSweeper(store domain.SessionSweeper, clock clockwork.Clock, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{store: store, clock: clock, interval: interval}
}

// Run sweeps on every tick. It blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Session sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx := correlation.WithID(ctx, correlation.NewID())

	removed, err := s.store.Sweep(sweepCtx)
	if err != nil {
		slog.WarnContext(sweepCtx, "Sweeper: sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.InfoContext(sweepCtx, "Sweeper: removed expired sessions", "count", removed)
	}
}
