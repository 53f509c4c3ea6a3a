package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/feedmap/internal/mapping"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// AuthType selects how credentials are attached to a source request.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthHeader AuthType = "header"
)

// Source describes where an integration fetches its response document.
type Source struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`

	AuthType AuthType `json:"authType,omitempty"`
	// AuthToken is the bearer token, "user:password" for basic auth, or the
	// header value for header auth.
	AuthToken string `json:"authToken,omitempty"`
	// AuthHeader names the header used by AuthHeader. Defaults to X-API-Key.
	AuthHeader string `json:"authHeader,omitempty"`
}

// Integration is a saved data source together with its mapping configuration.
type Integration struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Source       Source         `json:"source"`
	Mapping      mapping.Config `json:"mapping"`
	SyncInterval time.Duration  `json:"-"`
	Enabled      bool           `json:"enabled"`
	LastSyncedAt *time.Time     `json:"lastSyncedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type integrationJSON struct {
	integrationAlias
	SyncInterval string `json:"syncInterval"`
}

type integrationAlias Integration

// MarshalJSON renders SyncInterval as a duration string such as "1h0m0s".
func (i Integration) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(integrationJSON{
		integrationAlias: integrationAlias(i),
		SyncInterval:     i.SyncInterval.String(),
	})
}

// UnmarshalJSON accepts SyncInterval as a duration string. Empty means no
// scheduled sync.
func (i *Integration) UnmarshalJSON(data []byte) error {
	var aux integrationJSON
	if err := sonic.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = Integration(aux.integrationAlias)
	i.SyncInterval = 0
	if aux.SyncInterval != "" {
		d, err := time.ParseDuration(aux.SyncInterval)
		if err != nil {
			return fmt.Errorf("syncInterval: %w", err)
		}
		i.SyncInterval = d
	}
	return nil
}

// SyncDue reports whether the integration should be synced at now.
func (i Integration) SyncDue(now time.Time) bool {
	if !i.Enabled || i.SyncInterval <= 0 {
		return false
	}
	if i.LastSyncedAt == nil {
		return true
	}
	return now.Sub(*i.LastSyncedAt) >= i.SyncInterval
}

// IntegrationFilter narrows ListIntegrations. Name is a case-insensitive
// substring; SourceURL must match the source URL exactly.
type IntegrationFilter struct {
	Name        string `schema:"name"`
	SourceURL   string `schema:"source"`
	EnabledOnly bool   `schema:"enabled"`
	Limit       int    `schema:"limit"`
	Offset      int    `schema:"offset"`
}

// Entity is one row of the entity directory.
type Entity struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SyncStatus is the outcome of a sync run.
type SyncStatus string

const (
	SyncSucceeded SyncStatus = "succeeded"
	SyncFailed    SyncStatus = "failed"
)

// SyncRun records one fetch-and-evaluate pass over an integration.
type SyncRun struct {
	ID            uuid.UUID       `json:"id"`
	IntegrationID uuid.UUID       `json:"integrationId"`
	Status        SyncStatus      `json:"status"`
	RecordCount   int             `json:"recordCount"`
	Error         string          `json:"error,omitempty"`
	Result        *mapping.Result `json:"result,omitempty"`
	StartedAt     time.Time       `json:"startedAt"`
	FinishedAt    time.Time       `json:"finishedAt"`
}

// Inspection summarizes the shape of a document for the mapping wizard.
type Inspection struct {
	SuggestedFormat   mapping.Format `json:"suggestedFormat"`
	LooksPositional   bool           `json:"looksPositional"`
	FormatMismatch    bool           `json:"formatMismatch"`
	Paths             []string       `json:"paths"`
	PositionalLength  int            `json:"positionalLength"`
	PositionalSamples []any          `json:"positionalSamples"`
}

// PreviewRequest asks for a dry-run evaluation. Document, when set, is used
// instead of fetching Source.
type PreviewRequest struct {
	Source   *Source         `json:"source,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
	Config   mapping.Config  `json:"config"`
	Refresh  bool            `json:"refresh,omitempty"`
}

// PreviewResponse is the outcome of a dry-run evaluation.
type PreviewResponse struct {
	Inspection Inspection      `json:"inspection"`
	Result     *mapping.Result `json:"result"`
	Warnings   []string        `json:"warnings"`

	ProcessingTimeMs int64 `json:"processingTimeMs"`
}
