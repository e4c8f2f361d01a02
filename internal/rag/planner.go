package rag

import (
	"context"
	"strings"

	"github.com/openclaw/core/internal/types"
)

// PlannerConfig tunes how a QueryPlanner decomposes a question.
type PlannerConfig struct {
	DefaultSources []string
	MaxSubQueries  int
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{DefaultSources: []string{"memory", "vector_db"}, MaxSubQueries: 3}
}

// QueryPlanner turns a user query (plus conversation context and any
// refinement hints) into a RetrievalPlan.
type QueryPlanner interface {
	Plan(ctx context.Context, query string, history []types.Message, hints []string, cfg PlannerConfig) (types.RetrievalPlan, error)
}

// DefaultQueryPlanner performs a deterministic rewrite-and-split: the query
// itself becomes the rewrite, and is split on "and"/";" into at most
// MaxSubQueries sub-queries against every configured source. Refinement
// hints from a prior Reflection are appended as extra sub-queries, matching
// how the loop asks for additional retrieval passes.
type DefaultQueryPlanner struct{}

func NewDefaultQueryPlanner() *DefaultQueryPlanner { return &DefaultQueryPlanner{} }

func (p *DefaultQueryPlanner) Plan(ctx context.Context, query string, history []types.Message, hints []string, cfg PlannerConfig) (types.RetrievalPlan, error) {
	rewrite := strings.TrimSpace(query)

	parts := splitQuery(rewrite)
	if len(parts) == 0 {
		parts = []string{rewrite}
	}

	sources := cfg.DefaultSources
	if len(sources) == 0 {
		sources = []string{"memory"}
	}

	var subQueries []types.SubQuery
	for i, part := range parts {
		if cfg.MaxSubQueries > 0 && i >= cfg.MaxSubQueries {
			break
		}
		for _, src := range sources {
			subQueries = append(subQueries, types.SubQuery{Query: part, Source: src})
		}
	}

	for _, hint := range hints {
		subQueries = append(subQueries, types.SubQuery{Query: rewrite + " " + hint, Source: sources[0]})
	}

	return types.RetrievalPlan{
		QueryRewrite:  rewrite,
		SubQueries:    subQueries,
		Sources:       sources,
		MaxIterations: 3,
	}, nil
}

func splitQuery(query string) []string {
	var out []string
	for _, sep := range []string{";", " and "} {
		if strings.Contains(strings.ToLower(query), sep) {
			for _, part := range strings.Split(query, sep) {
				trimmed := strings.TrimSpace(part)
				if trimmed != "" {
					out = append(out, trimmed)
				}
			}
			return out
		}
	}
	return []string{query}
}
