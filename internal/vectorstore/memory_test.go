package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/core/internal/types"
)

func TestMemoryStore_UpsertGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	item := types.NewVectorItem("a", []float32{1, 0, 0}, map[string]any{"k": "v"})
	require.NoError(t, store.Upsert(ctx, item))

	got, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, item.Payload["k"], got.Payload["k"])
}

func TestMemoryStore_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	item := types.NewVectorItem("a", []float32{1, 0, 0}, map[string]any{"k": "v"})
	require.NoError(t, store.Upsert(ctx, item))
	require.NoError(t, store.Upsert(ctx, item))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVectors)
}

func TestMemoryStore_ClearResetsStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, types.NewVectorItem("a", []float32{1, 0}, nil)))

	require.NoError(t, store.Clear(ctx))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalVectors)
}

func TestCosineSimilarity(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)

	neg := []float32{-1, -2, -3}
	assert.InDelta(t, -1.0, cosineSimilarity(v, neg), 1e-9)
}

func TestMemoryStore_SearchRespectsFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, types.NewVectorItem("a", []float32{1, 0}, map[string]any{"tag": "x"})))
	require.NoError(t, store.Upsert(ctx, types.NewVectorItem("b", []float32{1, 0}, map[string]any{"tag": "y"})))

	filter := types.Filter{Predicates: []types.FilterPredicate{{Field: "tag", Operator: types.FilterEq, Value: "x"}}}
	results, err := store.Search(ctx, []float32{1, 0}, SearchOptions{Limit: 10, Filter: filter})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}
