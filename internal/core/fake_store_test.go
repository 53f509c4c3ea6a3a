package core

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu           sync.Mutex
	integrations map[uuid.UUID]Integration
	entities     map[string]Entity
	runs         []SyncRun
	failEntities error
}

func newMemStore() *memStore {
	return &memStore{
		integrations: make(map[uuid.UUID]Integration),
		entities:     make(map[string]Entity),
	}
}

func (m *memStore) CreateIntegration(_ context.Context, in *Integration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.integrations {
		if existing.Name == in.Name {
			return ErrDuplicateIntegration
		}
	}
	now := time.Now()
	in.CreatedAt, in.UpdatedAt = now, now
	m.integrations[in.ID] = *in
	return nil
}

func (m *memStore) GetIntegration(_ context.Context, id uuid.UUID) (*Integration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.integrations[id]
	if !ok {
		return nil, ErrIntegrationNotFound
	}
	return &in, nil
}

func (m *memStore) ListIntegrations(_ context.Context, filter IntegrationFilter) ([]Integration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Integration
	for _, in := range m.integrations {
		if filter.EnabledOnly && !in.Enabled {
			continue
		}
		if filter.SourceURL != "" && in.Source.URL != filter.SourceURL {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(in.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) UpdateIntegration(_ context.Context, in *Integration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.integrations[in.ID]
	if !ok {
		return ErrIntegrationNotFound
	}
	in.CreatedAt = existing.CreatedAt
	in.LastSyncedAt = existing.LastSyncedAt
	in.UpdatedAt = time.Now()
	m.integrations[in.ID] = *in
	return nil
}

func (m *memStore) DeleteIntegration(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.integrations[id]; !ok {
		return ErrIntegrationNotFound
	}
	delete(m.integrations, id)
	return nil
}

func (m *memStore) MarkSynced(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.integrations[id]
	if !ok {
		return ErrIntegrationNotFound
	}
	in.LastSyncedAt = &at
	m.integrations[id] = in
	return nil
}

func (m *memStore) ListEntities(context.Context) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEntities != nil {
		return nil, m.failEntities
	}
	out := make([]Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStore) UpsertEntities(_ context.Context, entities []Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entities {
		e.UpdatedAt = time.Now()
		m.entities[e.Key] = e
	}
	return nil
}

func (m *memStore) DeleteEntity(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[key]; !ok {
		return ErrEntityNotFound
	}
	delete(m.entities, key)
	return nil
}

func (m *memStore) InsertSyncRun(_ context.Context, run *SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memStore) ListSyncRuns(_ context.Context, id uuid.UUID, limit int) ([]SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SyncRun
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.runs[i].IntegrationID == id {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *memStore) PruneSyncRuns(_ context.Context, id uuid.UUID, keep int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		kept   []SyncRun
		seen   int
		pruned int64
	)
	for i := len(m.runs) - 1; i >= 0; i-- {
		r := m.runs[i]
		if r.IntegrationID == id {
			seen++
			if seen > keep {
				pruned++
				continue
			}
		}
		kept = append([]SyncRun{r}, kept...)
	}
	m.runs = kept
	return pruned, nil
}
