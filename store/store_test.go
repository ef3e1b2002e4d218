package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/snow-ghost/dosage/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) map[string]core.RunStore {
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]core.RunStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func sampleRecord(seed int64, at time.Time) core.RunRecord {
	return core.RunRecord{
		CreatedAt:     at,
		Seed:          seed,
		Generations:   150,
		Params:        json.RawMessage(fmt.Sprintf(`{"pop_size":50,"rng_seed":%d}`, seed)),
		Best:          core.Vector{0.43, 26.34, 23.23},
		BestFitness:   38.19,
		Effectiveness: 97.64,
		SideEffects:   59.45,
		Duration:      250 * time.Millisecond,
	}
}

func TestSaveAssignsIDAndGet(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, sampleRecord(1, time.Time{})))

			list, err := s.List(ctx, 10)
			require.NoError(t, err)
			require.Len(t, list, 1)
			require.NotEmpty(t, list[0].ID)
			assert.False(t, list[0].CreatedAt.IsZero())

			got, err := s.Get(ctx, list[0].ID)
			require.NoError(t, err)
			assert.Equal(t, core.Vector{0.43, 26.34, 23.23}, got.Best)
			assert.Equal(t, 38.19, got.BestFitness)
			assert.Equal(t, 250*time.Millisecond, got.Duration)
			assert.JSONEq(t, string(sampleRecord(1, time.Time{}).Params), string(got.Params))
		})
	}
}

func TestGetUnknown(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "nope")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := int64(0); i < 5; i++ {
				require.NoError(t, s.Save(ctx, sampleRecord(i, base.Add(time.Duration(i)*time.Hour))))
			}

			list, err := s.List(ctx, 3)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, int64(4), list[0].Seed)
			assert.Equal(t, int64(3), list[1].Seed)
			assert.Equal(t, int64(2), list[2].Seed)

			all, err := s.List(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 5)
		})
	}
}

func TestSaveDuplicateID(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			rec := sampleRecord(1, time.Now())
			rec.ID = "fixed"
			require.NoError(t, s.Save(context.Background(), rec))
			require.Error(t, s.Save(context.Background(), rec))
		})
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	rec := sampleRecord(7, time.Now())
	rec.ID = "persisted"
	require.NoError(t, s.Save(context.Background(), rec))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(context.Background(), "persisted")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Seed)
	assert.Equal(t, rec.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())
}
