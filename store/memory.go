package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/snow-ghost/dosage/core"
)

// MemoryStore is an in-process RunStore.
type MemoryStore struct {
	records []core.RunRecord
	byID    map[string]int
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make([]core.RunRecord, 0),
		byID:    make(map[string]int),
	}
}

// Save records a run, assigning an ID when missing.
func (m *MemoryStore) Save(ctx context.Context, rec core.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec = prepare(rec)
	if _, exists := m.byID[rec.ID]; exists {
		return fmt.Errorf("run %s already stored", rec.ID)
	}
	m.byID[rec.ID] = len(m.records)
	m.records = append(m.records, rec)
	return nil
}

// Get returns the run with the given ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (core.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return core.RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.records[i], nil
}

// List returns up to limit runs, newest first.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]core.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.RunRecord, len(m.records))
	copy(out, m.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
