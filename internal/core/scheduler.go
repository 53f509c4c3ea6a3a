package core

// scheduler.go runs due integration syncs in the background.
//
// Each pass lists enabled integrations and syncs those whose interval has
// elapsed since their last run. Syncs within a pass run sequentially; the
// fetch limiter already bounds outbound concurrency and a slow source only
// delays the next pass. Failures are logged and recorded as failed runs, they
// never stop the scheduler.

import (
	"context"
	"log/slog"
	"time"
)

// SyncSchedulerConfig holds configuration for the sync scheduler.
type SyncSchedulerConfig struct {
	CheckInterval time.Duration // How often to look for due integrations (default: 1m)
}

// StartSyncScheduler blocks, running a pass immediately and then every
// CheckInterval, until ctx is cancelled.
func (s *Service) StartSyncScheduler(ctx context.Context, cfg SyncSchedulerConfig) {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	slog.Info("sync scheduler started", "check_interval", cfg.CheckInterval.String())

	s.runSyncPass(ctx)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.runSyncPass(ctx)
		}
	}
}

// runSyncPass syncs every due integration once. It returns the number of
// integrations synced and how many of those failed.
func (s *Service) runSyncPass(ctx context.Context) (synced, failed int) {
	start := time.Now()

	integrations, err := s.store.ListIntegrations(ctx, IntegrationFilter{EnabledOnly: true})
	if err != nil {
		slog.Error("sync pass: list integrations failed", "error", err)
		return 0, 0
	}

	now := s.now()
	for i := range integrations {
		if ctx.Err() != nil {
			break
		}
		in := &integrations[i]
		if !in.SyncDue(now) {
			continue
		}
		synced++
		if _, err := s.runSync(ctx, in); err != nil {
			failed++
		}
	}

	if synced > 0 {
		slog.Info("sync pass completed",
			"integrations_synced", synced,
			"integrations_failed", failed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return synced, failed
}
