// Package cron runs the scheduled retention sweep over stored conversion
// artifacts using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/statement-converter/pkg/storage"
)

const sweepTimeout = 5 * time.Minute

// Scheduler purges expired conversion artifacts on a fixed schedule.
type Scheduler struct {
	cron      *cron.Cron
	store     storage.Store
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a scheduler sweeping the store with the given
// retention window.
func NewScheduler(store storage.Store, retention time.Duration, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Start begins the hourly sweep.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", s.sweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("artifact retention sweeper started",
		slog.Duration("retention", s.retention),
	)
	return nil
}

// Stop gracefully stops the scheduler; the returned context is done when
// any in-flight sweep finishes.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("artifact retention sweeper stopping")
	return s.cron.Stop()
}

// RunNow triggers a sweep outside the schedule.
func (s *Scheduler) RunNow() {
	go s.sweep()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	purged, err := s.store.DeleteExpired(ctx, s.retention)
	if err != nil {
		s.logger.Error("artifact sweep failed", slog.Any("error", err))
		return
	}
	if purged > 0 {
		s.logger.Info("purged expired artifacts", slog.Int("purged", purged))
	}
}
