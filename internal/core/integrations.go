package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/feedmap/internal/logging"
	"github.com/JonMunkholm/feedmap/internal/mapping"
)

// ErrInvalidID is returned for integration ids that are not UUIDs.
var ErrInvalidID = errors.New("invalid integration ID")

// IntegrationMatchThreshold is the minimum share of an integration's mapping
// addresses that must resolve for it to be suggested.
const IntegrationMatchThreshold = 0.5

// IntegrationMatch is an existing integration whose mapping fits a document.
type IntegrationMatch struct {
	Integration Integration `json:"integration"`
	Score       float64     `json:"score"`
}

// prepareIntegration normalizes and validates an integration before saving.
func prepareIntegration(in *Integration) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalidf("integration name is required")
	}
	if in.SyncInterval < 0 {
		return invalidf("sync interval must not be negative")
	}
	if err := in.Source.Validate(); err != nil {
		return err
	}
	if in.Source.AuthType == "" {
		in.Source.AuthType = AuthNone
	}
	in.Mapping.Normalize()
	if err := in.Mapping.Validate(); err != nil {
		return invalidf("mapping: %v", err)
	}
	return nil
}

// CreateIntegration validates and stores a new integration.
func (s *Service) CreateIntegration(ctx context.Context, in Integration) (*Integration, error) {
	if err := prepareIntegration(&in); err != nil {
		return nil, err
	}
	in.ID = uuid.New()

	if err := s.store.CreateIntegration(ctx, &in); err != nil {
		return nil, fmt.Errorf("create integration: %w", err)
	}

	logging.FromContext(ctx).Info("integration created",
		"integration_id", in.ID,
		"name", in.Name,
		"mappings", len(in.Mapping.Mappings),
	)
	return &in, nil
}

// GetIntegration retrieves an integration by ID.
func (s *Service) GetIntegration(ctx context.Context, id string) (*Integration, error) {
	uid, err := parseIntegrationID(id)
	if err != nil {
		return nil, err
	}
	return s.store.GetIntegration(ctx, uid)
}

// ListIntegrations returns integrations matching filter.
func (s *Service) ListIntegrations(ctx context.Context, filter IntegrationFilter) ([]Integration, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, invalidf("limit and offset must not be negative")
	}
	out, err := s.store.ListIntegrations(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Integration{}
	}
	return out, nil
}

// UpdateIntegration replaces an integration's name, source, mapping and schedule.
func (s *Service) UpdateIntegration(ctx context.Context, id string, in Integration) (*Integration, error) {
	uid, err := parseIntegrationID(id)
	if err != nil {
		return nil, err
	}
	if err := prepareIntegration(&in); err != nil {
		return nil, err
	}
	in.ID = uid

	if err := s.store.UpdateIntegration(ctx, &in); err != nil {
		if errors.Is(err, ErrIntegrationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update integration: %w", err)
	}

	logging.FromContext(ctx).Info("integration updated", "integration_id", in.ID)
	return &in, nil
}

// DeleteIntegration removes an integration and its sync history.
func (s *Service) DeleteIntegration(ctx context.Context, id string) error {
	uid, err := parseIntegrationID(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteIntegration(ctx, uid); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("integration deleted", "integration_id", uid)
	return nil
}

// MatchIntegrations ranks saved integrations by how many of their mapping
// addresses resolve against doc.
func (s *Service) MatchIntegrations(ctx context.Context, doc any) ([]IntegrationMatch, error) {
	all, err := s.store.ListIntegrations(ctx, IntegrationFilter{})
	if err != nil {
		return nil, err
	}

	matches := []IntegrationMatch{}
	for _, in := range all {
		score := mappingCoverage(doc, in.Mapping)
		if score >= IntegrationMatchThreshold {
			matches = append(matches, IntegrationMatch{Integration: in, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// mappingCoverage is the share of cfg's addresses that resolve against the
// first record of doc (or doc itself in single mode).
func mappingCoverage(doc any, cfg mapping.Config) float64 {
	if len(cfg.Mappings) == 0 || doc == nil {
		return 0
	}

	target := doc
	if cfg.TargetMode == mapping.TargetCollection {
		records := mapping.RecordCollection(doc, cfg.Format)
		if len(records) == 0 {
			return 0
		}
		target = records[0]
	}

	found := 0
	for _, m := range cfg.Mappings {
		if _, ok := mapping.Resolve(target, m.Address, cfg.Format); ok {
			found++
		}
	}
	return float64(found) / float64(len(cfg.Mappings))
}

func parseIntegrationID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return uid, nil
}
