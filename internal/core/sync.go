package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/feedmap/internal/logging"
	"github.com/JonMunkholm/feedmap/internal/mapping"
	"github.com/JonMunkholm/feedmap/internal/metrics"
)

// MaxRunsPerPage caps ListSyncRuns.
const MaxRunsPerPage = 100

// RunSync fetches an integration's source, evaluates its mapping and records
// the run. A failed fetch or decode is recorded as a failed run and also
// returned; only storage errors prevent a run from being recorded.
func (s *Service) RunSync(ctx context.Context, id string) (*SyncRun, error) {
	in, err := s.GetIntegration(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.runSync(ctx, in)
}

func (s *Service) runSync(ctx context.Context, in *Integration) (*SyncRun, error) {
	log := logging.WithFields(ctx, "integration_id", in.ID, "integration", in.Name)

	run := &SyncRun{
		ID:            uuid.New(),
		IntegrationID: in.ID,
		StartedAt:     s.now(),
	}

	result, runErr := s.syncResult(ctx, in)
	run.FinishedAt = s.now()
	if runErr != nil {
		run.Status = SyncFailed
		run.Error = runErr.Error()
	} else {
		run.Status = SyncSucceeded
		run.Result = result
		run.RecordCount = recordCount(result)
	}
	metrics.SyncRuns.WithLabelValues(string(run.Status)).Inc()

	if err := s.store.InsertSyncRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record sync run: %w", err)
	}
	if err := s.store.MarkSynced(ctx, in.ID, run.FinishedAt); err != nil {
		log.Warn("mark synced failed", "error", err)
	}
	if pruned, err := s.store.PruneSyncRuns(ctx, in.ID, s.runHistory); err != nil {
		log.Warn("prune sync runs failed", "error", err)
	} else if pruned > 0 {
		log.Debug("pruned sync runs", "runs_pruned", pruned)
	}

	attrs := []any{
		"run_id", run.ID,
		"status", run.Status,
		"records", run.RecordCount,
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	}
	if runErr != nil {
		log.Error("sync failed", append(attrs, "error", runErr)...)
		return run, runErr
	}
	log.Info("sync completed", attrs...)
	return run, nil
}

// syncResult fetches fresh data, bypassing the sample cache.
func (s *Service) syncResult(ctx context.Context, in *Integration) (*mapping.Result, error) {
	body, err := s.fetch(ctx, in.Source)
	if err != nil {
		return nil, err
	}
	doc, err := mapping.Decode(body)
	if err != nil {
		return nil, err
	}

	var dir mapping.Directory
	if in.Mapping.TargetMode == mapping.TargetCollection {
		loaded, err := s.LoadDirectory(ctx)
		if err != nil {
			return nil, err
		}
		dir = loaded
	}

	result := evaluate(doc, in.Mapping, dir)
	if result == nil {
		return nil, errors.New("source returned an empty document")
	}
	return result, nil
}

func recordCount(r *mapping.Result) int {
	if r == nil {
		return 0
	}
	if r.Mode == mapping.TargetCollection {
		return len(r.Records)
	}
	return 1
}

// ListSyncRuns returns the most recent runs for an integration, newest first.
func (s *Service) ListSyncRuns(ctx context.Context, id string, limit int) ([]SyncRun, error) {
	uid, err := parseIntegrationID(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxRunsPerPage {
		limit = MaxRunsPerPage
	}
	runs, err := s.store.ListSyncRuns(ctx, uid, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []SyncRun{}
	}
	return runs, nil
}
