package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25Index_RanksExactMatchHigher(t *testing.T) {
	idx := NewBM25Index()
	idx.IndexBatch([]BM25Doc{
		{ID: "1", Content: "the quick brown fox jumps over the lazy dog"},
		{ID: "2", Content: "completely unrelated text about gardening"},
	})

	results := idx.Search("quick fox", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "1", results[0].ID)
}

func TestBM25Index_ReindexOverwrites(t *testing.T) {
	idx := NewBM25Index()
	idx.Index(BM25Doc{ID: "1", Content: "apples"})
	idx.Index(BM25Doc{ID: "1", Content: "oranges"})

	assert.Empty(t, idx.Search("apples", 10))
	assert.NotEmpty(t, idx.Search("oranges", 10))
}

func TestNormalize(t *testing.T) {
	scores := map[string]float64{"a": 0, "b": 5, "c": 10}
	norm := normalize(scores)
	assert.InDelta(t, 0.0, norm["a"], 1e-9)
	assert.InDelta(t, 1.0, norm["c"], 1e-9)
	assert.InDelta(t, 0.5, norm["b"], 1e-9)
}

func TestNormalize_AllEqual(t *testing.T) {
	scores := map[string]float64{"a": 3, "b": 3}
	norm := normalize(scores)
	assert.Equal(t, 1.0, norm["a"])
	assert.Equal(t, 1.0, norm["b"])
}
