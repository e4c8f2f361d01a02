package rag

import (
	"context"

	"github.com/openclaw/core/internal/search"
	"github.com/openclaw/core/internal/types"
)

// RetrievalExecutor runs a single sub-query against whatever retrieval
// backend is wired in and returns ranked results.
type RetrievalExecutor interface {
	Execute(ctx context.Context, subQuery types.SubQuery) ([]types.RetrievalResult, error)
}

// HybridExecutor executes sub-queries through a HybridSearchManager,
// projecting fused hits into RetrievalResult.
type HybridExecutor struct {
	hybrid *search.HybridSearchManager
	cfg    search.HybridSearchConfig
}

func NewHybridExecutor(hybrid *search.HybridSearchManager, cfg search.HybridSearchConfig) *HybridExecutor {
	return &HybridExecutor{hybrid: hybrid, cfg: cfg}
}

func (e *HybridExecutor) Execute(ctx context.Context, subQuery types.SubQuery) ([]types.RetrievalResult, error) {
	hits, err := e.hybrid.Search(ctx, subQuery.Query, e.cfg)
	if err != nil {
		return nil, err
	}
	results := make([]types.RetrievalResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.RetrievalResult{
			ID:             h.ID,
			Content:        h.Content,
			Source:         subQuery.Source,
			RelevanceScore: h.Score,
			Metadata:       h.Payload,
		})
	}
	return results, nil
}
