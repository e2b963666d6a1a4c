package core

// scheduler.go runs background maintenance for invitations.
//
// The sweeper marks pending invitations whose expiry has passed as
// expired. It runs once on start and then every interval until ctx is
// cancelled. A failed sweep is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when StartInvitationSweeper gets a
// non-positive interval.
const DefaultSweepInterval = time.Hour

// StartInvitationSweeper blocks, expiring overdue invitations periodically.
// It returns nil when ctx is cancelled.
func (s *Service) StartInvitationSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("invitation sweeper started", "interval", interval.String())

	s.runInvitationSweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("invitation sweeper stopped")
			return nil
		case <-ticker.C:
			s.runInvitationSweep(ctx)
		}
	}
}

// runInvitationSweep performs one expiry pass.
func (s *Service) runInvitationSweep(ctx context.Context) {
	start := time.Now()

	expired, err := s.ExpireInvitations(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("invitation sweep failed", "error", err)
		}
		return
	}

	if expired > 0 {
		slog.Info("expired invitations",
			"count", expired,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
