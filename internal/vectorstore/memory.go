package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/openclaw/core/internal/types"
)

// MemoryStore is an in-process Store backend for tests and dev use. Scoring
// uses cosine similarity.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]types.VectorItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]types.VectorItem)}
}

func (s *MemoryStore) Upsert(ctx context.Context, item types.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *MemoryStore) UpsertBatch(ctx context.Context, items []types.VectorItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.items[item.ID] = item
	}
	return len(items), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (s *MemoryStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]types.ScoredVectorItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	results := make([]types.ScoredVectorItem, 0, len(s.items))
	for _, item := range s.items {
		if !MatchFilter(opts.Filter, item.Payload) {
			continue
		}
		results = append(results, types.ScoredVectorItem{
			VectorItem: item,
			Score:      cosineSimilarity(query, item.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (types.VectorItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) DeleteByFilter(ctx context.Context, filter types.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, item := range s.items {
		if MatchFilter(filter, item.Payload) {
			delete(s.items, id)
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (types.VectorStoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sizeBytes int64
	for _, item := range s.items {
		sizeBytes += int64(len(item.Vector) * 4)
	}
	return types.VectorStoreStats{
		TotalVectors:   int64(len(s.items)),
		TotalSizeBytes: sizeBytes,
		LastUpdated:    time.Now().UTC(),
	}, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]types.VectorItem)
	return nil
}
