package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/feedmap/internal/mapping"
)

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a store backed by pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureSchema creates the store's tables if missing.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	return EnsureSchema(ctx, s.pool)
}

// Ping checks database connectivity.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const integrationColumns = `id, name, source, mapping, sync_interval_seconds, enabled,
	last_synced_at, created_at, updated_at`

func scanIntegration(row pgx.Row) (*Integration, error) {
	var (
		in          Integration
		sourceJSON  []byte
		mappingJSON []byte
		intervalSec int64
	)
	err := row.Scan(&in.ID, &in.Name, &sourceJSON, &mappingJSON, &intervalSec, &in.Enabled,
		&in.LastSyncedAt, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := sonic.Unmarshal(sourceJSON, &in.Source); err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	if err := sonic.Unmarshal(mappingJSON, &in.Mapping); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	in.Mapping.Normalize()
	in.SyncInterval = time.Duration(intervalSec) * time.Second
	return &in, nil
}

func encodeIntegration(in *Integration) (source, cfg []byte, err error) {
	source, err = sonic.Marshal(in.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal source: %w", err)
	}
	cfg, err = sonic.Marshal(in.Mapping)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal mapping: %w", err)
	}
	return source, cfg, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PgStore) CreateIntegration(ctx context.Context, in *Integration) error {
	source, cfg, err := encodeIntegration(in)
	if err != nil {
		return err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO integrations (id, name, source, mapping, sync_interval_seconds, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		in.ID, in.Name, source, cfg, int64(in.SyncInterval/time.Second), in.Enabled)
	if err := row.Scan(&in.CreatedAt, &in.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateIntegration, in.Name)
		}
		return fmt.Errorf("insert integration: %w", err)
	}
	return nil
}

func (s *PgStore) GetIntegration(ctx context.Context, id uuid.UUID) (*Integration, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+integrationColumns+` FROM integrations WHERE id = $1`, id)
	in, err := scanIntegration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIntegrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get integration: %w", err)
	}
	return in, nil
}

func (s *PgStore) ListIntegrations(ctx context.Context, filter IntegrationFilter) ([]Integration, error) {
	wb := NewWhereBuilder()
	wb.AddILike("name", filter.Name)
	wb.Add("source->>'url'", filter.SourceURL)
	if filter.EnabledOnly {
		wb.AddRaw("enabled")
	}
	where, _ := wb.Build()

	query := `SELECT ` + integrationColumns + ` FROM integrations` + where + ` ORDER BY name`
	if filter.Limit > 0 {
		query += " LIMIT " + wb.Bind(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + wb.Bind(filter.Offset)
	}
	_, args := wb.Build()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	var out []Integration
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func (s *PgStore) UpdateIntegration(ctx context.Context, in *Integration) error {
	source, cfg, err := encodeIntegration(in)
	if err != nil {
		return err
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE integrations
		SET name = $2, source = $3, mapping = $4, sync_interval_seconds = $5,
			enabled = $6, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at, last_synced_at`,
		in.ID, in.Name, source, cfg, int64(in.SyncInterval/time.Second), in.Enabled)
	err = row.Scan(&in.CreatedAt, &in.UpdatedAt, &in.LastSyncedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrIntegrationNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrDuplicateIntegration, in.Name)
	case err != nil:
		return fmt.Errorf("update integration: %w", err)
	}
	return nil
}

func (s *PgStore) DeleteIntegration(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM integrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

func (s *PgStore) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE integrations SET last_synced_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func (s *PgStore) ListEntities(ctx context.Context) ([]Entity, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, name, updated_at FROM entities ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entity, error) {
		var e Entity
		err := row.Scan(&e.Key, &e.Name, &e.UpdatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan entities: %w", err)
	}
	return out, nil
}

func (s *PgStore) UpsertEntities(ctx context.Context, entities []Entity) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entities {
			batch.Queue(`
				INSERT INTO entities (key, name, updated_at) VALUES ($1, $2, now())
				ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
				e.Key, e.Name)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert entities: %w", err)
		}
		return nil
	})
}

func (s *PgStore) DeleteEntity(ctx context.Context, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM entities WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntityNotFound
	}
	return nil
}

func (s *PgStore) InsertSyncRun(ctx context.Context, run *SyncRun) error {
	var result []byte
	if run.Result != nil {
		var err error
		if result, err = sonic.Marshal(run.Result); err != nil {
			return fmt.Errorf("marshal sync result: %w", err)
		}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_runs (id, integration_id, status, record_count, error, result, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.IntegrationID, string(run.Status), run.RecordCount, run.Error, result,
		run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

func (s *PgStore) ListSyncRuns(ctx context.Context, integrationID uuid.UUID, limit int) ([]SyncRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, integration_id, status, record_count, error, result, started_at, finished_at
		FROM sync_runs WHERE integration_id = $1
		ORDER BY started_at DESC LIMIT $2`, integrationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var out []SyncRun
	for rows.Next() {
		var (
			run    SyncRun
			status string
			result []byte
		)
		if err := rows.Scan(&run.ID, &run.IntegrationID, &status, &run.RecordCount, &run.Error,
			&result, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		run.Status = SyncStatus(status)
		if len(result) > 0 {
			run.Result = &mapping.Result{}
			if err := sonic.Unmarshal(result, run.Result); err != nil {
				return nil, fmt.Errorf("decode sync result: %w", err)
			}
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *PgStore) PruneSyncRuns(ctx context.Context, integrationID uuid.UUID, keep int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM sync_runs
		WHERE integration_id = $1 AND id NOT IN (
			SELECT id FROM sync_runs WHERE integration_id = $1
			ORDER BY started_at DESC LIMIT $2
		)`, integrationID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune sync runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
