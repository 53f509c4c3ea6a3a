package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrIntegrationNotFound is returned when no integration has the given id.
	ErrIntegrationNotFound = errors.New("integration not found")
	// ErrEntityNotFound is returned when deleting an unknown entity key.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrDuplicateIntegration is returned when an integration name is taken.
	ErrDuplicateIntegration = errors.New("integration name already exists")
	// ErrInvalidInput marks request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// Store persists integrations, the entity directory and sync history.
// PgStore is the production implementation.
type Store interface {
	CreateIntegration(ctx context.Context, in *Integration) error
	GetIntegration(ctx context.Context, id uuid.UUID) (*Integration, error)
	ListIntegrations(ctx context.Context, filter IntegrationFilter) ([]Integration, error)
	UpdateIntegration(ctx context.Context, in *Integration) error
	DeleteIntegration(ctx context.Context, id uuid.UUID) error
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error

	ListEntities(ctx context.Context) ([]Entity, error)
	UpsertEntities(ctx context.Context, entities []Entity) error
	DeleteEntity(ctx context.Context, key string) error

	InsertSyncRun(ctx context.Context, run *SyncRun) error
	ListSyncRuns(ctx context.Context, integrationID uuid.UUID, limit int) ([]SyncRun, error)
	PruneSyncRuns(ctx context.Context, integrationID uuid.UUID, keep int) (int64, error)
}
