package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/feedmap/internal/logging"
	"github.com/JonMunkholm/feedmap/internal/mapping"
)

// ListEntities returns the entity directory ordered by key.
func (s *Service) ListEntities(ctx context.Context) ([]Entity, error) {
	out, err := s.store.ListEntities(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Entity{}
	}
	return out, nil
}

// UpsertEntities inserts or renames directory entries. Keys are trimmed;
// blank keys or names are rejected before anything is written.
func (s *Service) UpsertEntities(ctx context.Context, entities []Entity) error {
	clean := make([]Entity, 0, len(entities))
	for i, e := range entities {
		e.Key = strings.TrimSpace(e.Key)
		e.Name = strings.TrimSpace(e.Name)
		if e.Key == "" {
			return invalidf("entity %d: key is required", i)
		}
		if e.Key == mapping.UnknownEntityKey {
			return invalidf("entity %d: key %q is reserved", i, e.Key)
		}
		if e.Name == "" {
			return invalidf("entity %q: name is required", e.Key)
		}
		clean = append(clean, e)
	}
	if len(clean) == 0 {
		return nil
	}

	if err := s.store.UpsertEntities(ctx, clean); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("entities upserted", "count", len(clean))
	return nil
}

// DeleteEntity removes a directory entry.
func (s *Service) DeleteEntity(ctx context.Context, key string) error {
	return s.store.DeleteEntity(ctx, strings.TrimSpace(key))
}

// LoadDirectory snapshots the entity directory for one evaluation.
func (s *Service) LoadDirectory(ctx context.Context) (mapping.StaticDirectory, error) {
	entities, err := s.store.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}
	dir := make(mapping.StaticDirectory, len(entities))
	for _, e := range entities {
		dir[e.Key] = e.Name
	}
	return dir, nil
}
