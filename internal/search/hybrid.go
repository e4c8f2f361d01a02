package search

import (
	"context"
	"sort"
	"strings"

	"github.com/openclaw/core/internal/types"
	"github.com/openclaw/core/internal/vectorstore"
)

// HybridSearchConfig carries per-modality weights and limits. Weights need
// not sum to 1: DefaultHybridSearchConfig's defaults (0.5/0.3/0.2/0.1 for
// vector/keyword/bm25/graph) match the spec's literal wording; whatever a
// caller supplies is renormalized across the *enabled* modalities before
// fusion.
type HybridSearchConfig struct {
	VectorWeight  float64
	KeywordWeight float64
	BM25Weight    float64
	GraphWeight   float64

	VectorEnabled  bool
	KeywordEnabled bool
	BM25Enabled    bool
	GraphEnabled   bool

	PerModalityLimit int
	Limit            int
}

func DefaultHybridSearchConfig() HybridSearchConfig {
	return HybridSearchConfig{
		VectorWeight:     0.5,
		KeywordWeight:    0.3,
		BM25Weight:       0.2,
		GraphWeight:      0.1,
		VectorEnabled:    true,
		KeywordEnabled:   true,
		BM25Enabled:      true,
		GraphEnabled:     false,
		PerModalityLimit: 20,
		Limit:            10,
	}
}

// Embedder produces a query embedding for the vector modality.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GraphBooster extracts candidate entities from a query and returns a
// boost score in [0,1] for a candidate document ID based on entity
// mentions. Optional; nil disables the graph modality regardless of
// config.
type GraphBooster interface {
	BoostScores(ctx context.Context, query string, candidateIDs []string) (map[string]float64, error)
}

// HybridResult is one fused hit.
type HybridResult struct {
	ID      string
	Content string
	Score   float64
	Payload map[string]any
}

// HybridSearchManager fuses vector search, BM25, and an optional
// knowledge-graph boost into a single ranked list.
type HybridSearchManager struct {
	store    vectorstore.Store
	bm25     *BM25Index
	embedder Embedder
	graph    GraphBooster
}

func NewHybridSearchManager(store vectorstore.Store, bm25 *BM25Index, embedder Embedder, graph GraphBooster) *HybridSearchManager {
	return &HybridSearchManager{store: store, bm25: bm25, embedder: embedder, graph: graph}
}

func normalize(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return scores
	}
	min, max := scores[firstKey(scores)], scores[firstKey(scores)]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make(map[string]float64, len(scores))
	if max == min {
		for id := range scores {
			out[id] = 1.0
		}
		return out
	}
	for id, s := range scores {
		out[id] = (s - min) / (max - min)
	}
	return out
}

func firstKey(m map[string]float64) string {
	for k := range m {
		return k
	}
	return ""
}

// keywordOverlapScore is a cheap exact-term-overlap scorer distinct from
// BM25's frequency/length-normalized ranking: fraction of query terms that
// appear verbatim in the document content.
func keywordOverlapScore(query, content string) float64 {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	hits := 0
	for _, term := range queryTerms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms))
}

// Search runs every enabled modality, normalizes each within [0,1], applies
// weight redistribution for disabled modalities, and returns the fused,
// sorted, limit-truncated result list.
func (h *HybridSearchManager) Search(ctx context.Context, query string, cfg HybridSearchConfig) ([]HybridResult, error) {
	type modalityScores struct {
		weight float64
		scores map[string]float64
		docs   map[string]HybridResult
	}

	enabledWeight := 0.0
	var modalities []modalityScores

	// Vector modality.
	if cfg.VectorEnabled && h.embedder != nil {
		vec, err := h.embedder.Embed(ctx, query)
		if err == nil {
			hits, err := h.store.Search(ctx, vec, vectorstore.SearchOptions{Limit: cfg.PerModalityLimit})
			if err == nil {
				scores := make(map[string]float64, len(hits))
				docs := make(map[string]HybridResult, len(hits))
				for _, hit := range hits {
					scores[hit.ID] = hit.Score
					content, _ := hit.Payload["content"].(string)
					docs[hit.ID] = HybridResult{ID: hit.ID, Content: content, Payload: hit.Payload}
				}
				modalities = append(modalities, modalityScores{weight: cfg.VectorWeight, scores: normalize(scores), docs: docs})
				enabledWeight += cfg.VectorWeight
			}
		}
	}

	// BM25 modality.
	if cfg.BM25Enabled && h.bm25 != nil {
		hits := h.bm25.Search(query, cfg.PerModalityLimit)
		scores := make(map[string]float64, len(hits))
		for _, hit := range hits {
			scores[hit.ID] = hit.Score
		}
		modalities = append(modalities, modalityScores{weight: cfg.BM25Weight, scores: normalize(scores)})
		enabledWeight += cfg.BM25Weight
	}

	// Keyword overlap modality reuses whatever documents the other
	// modalities surfaced (it has no independent index), scored against
	// their content.
	if cfg.KeywordEnabled {
		scores := make(map[string]float64)
		for _, m := range modalities {
			for id, doc := range m.docs {
				if doc.Content != "" {
					scores[id] = keywordOverlapScore(query, doc.Content)
				}
			}
		}
		if len(scores) > 0 {
			modalities = append(modalities, modalityScores{weight: cfg.KeywordWeight, scores: normalize(scores)})
			enabledWeight += cfg.KeywordWeight
		}
	}

	// Candidate ID set across all modalities so far, used for the graph
	// boost (which only raises scores, it doesn't introduce new
	// candidates).
	candidateSet := make(map[string]HybridResult)
	for _, m := range modalities {
		for id, doc := range m.docs {
			candidateSet[id] = doc
		}
	}

	if cfg.GraphEnabled && h.graph != nil && len(candidateSet) > 0 {
		ids := make([]string, 0, len(candidateSet))
		for id := range candidateSet {
			ids = append(ids, id)
		}
		boosts, err := h.graph.BoostScores(ctx, query, ids)
		if err == nil {
			modalities = append(modalities, modalityScores{weight: cfg.GraphWeight, scores: normalize(boosts)})
			enabledWeight += cfg.GraphWeight
		}
	}

	if enabledWeight == 0 {
		return nil, nil
	}

	fused := make(map[string]float64)
	for _, m := range modalities {
		redistributed := m.weight / enabledWeight
		for id, score := range m.scores {
			fused[id] += redistributed * score
		}
		for id, doc := range m.docs {
			if _, ok := candidateSet[id]; !ok {
				candidateSet[id] = doc
			}
		}
	}

	results := make([]HybridResult, 0, len(fused))
	for id, score := range fused {
		doc := candidateSet[id]
		doc.ID = id
		doc.Score = score
		results = append(results, doc)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	limit := cfg.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
