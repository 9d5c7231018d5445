package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
)

// Sweeper is implemented by denylists that need explicit pruning.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// HousekeepingService periodically deletes expired reset links,
// verification codes and in-memory denylist entries.
type HousekeepingService struct {
	Store    store.Store
	Denylist Sweeper // optional
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(st store.Store, deny Sweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Denylist: deny,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure is logged and
// the next step still runs.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now()

	if n, err := s.Store.PasswordResets().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired password resets", "error", err)
	} else {
		s.Logger.Debug("deleted expired password resets", "count", n)
	}

	if n, err := s.Store.Verifications().DeleteExpired(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired verification codes", "error", err)
	} else {
		s.Logger.Debug("deleted expired verification codes", "count", n)
	}

	if s.Denylist != nil {
		if n, err := s.Denylist.Sweep(ctx); err != nil {
			s.Logger.Error("failed to sweep denylist", "error", err)
		} else {
			s.Logger.Debug("swept denylist", "count", n)
		}
	}

	s.Logger.Info("housekeeping cleanup completed")
}
