package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/core/internal/types"
)

type stubExecutor struct {
	score float64
}

func (s *stubExecutor) Execute(ctx context.Context, subQuery types.SubQuery) ([]types.RetrievalResult, error) {
	return []types.RetrievalResult{
		{ID: "r1", Content: "result for " + subQuery.Query, Source: subQuery.Source, RelevanceScore: s.score},
	}, nil
}

type stubReflector struct {
	sufficientAfter int
	calls           int
}

func (s *stubReflector) Reflect(ctx context.Context, query string, results []types.RetrievalResult, cfg ReflectorConfig) (types.Reflection, error) {
	s.calls++
	if s.calls >= s.sufficientAfter {
		return types.Reflection{IsSufficient: true, Confidence: 0.9}, nil
	}
	return types.Reflection{IsSufficient: false, Confidence: 0.3, Suggestions: []string{"broaden"}}, nil
}

func (s *stubReflector) GenerateAnswer(ctx context.Context, query string, results []types.RetrievalResult, history []types.Message) (string, error) {
	return "final answer", nil
}

func TestLoop_RunsExactlyMaxIterationsWhenNeverSufficient(t *testing.T) {
	planner := NewDefaultQueryPlanner()
	executor := &stubExecutor{score: 0.3}
	reflector := &stubReflector{sufficientAfter: 100} // never sufficient
	loop := NewLoop(planner, executor, reflector, nil)

	resp, err := loop.Run(context.Background(), "what is Go", nil, DefaultPlannerConfig(), ReflectorConfig{MinConfidence: 0.7, MaxIterations: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Iterations)
	assert.Equal(t, 3, reflector.calls)
}

func TestLoop_StopsEarlyWhenSufficient(t *testing.T) {
	planner := NewDefaultQueryPlanner()
	executor := &stubExecutor{score: 0.9}
	reflector := &stubReflector{sufficientAfter: 1}
	loop := NewLoop(planner, executor, reflector, nil)

	resp, err := loop.Run(context.Background(), "what is Go", nil, DefaultPlannerConfig(), ReflectorConfig{MinConfidence: 0.7, MaxIterations: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Iterations)
	assert.Equal(t, "final answer", resp.Answer)
}

func TestDefaultResultReflector_VerifySimple_RequiresTwoResults(t *testing.T) {
	reflector := NewDefaultResultReflector(nil, "")
	cfg := DefaultReflectorConfig()

	single := []types.RetrievalResult{{ID: "1", RelevanceScore: 0.9}}
	reflection, err := reflector.Reflect(context.Background(), "q", single, cfg)
	require.NoError(t, err)
	assert.False(t, reflection.IsSufficient)

	double := []types.RetrievalResult{{ID: "1", RelevanceScore: 0.9}, {ID: "2", RelevanceScore: 0.8}}
	reflection, err = reflector.Reflect(context.Background(), "q", double, cfg)
	require.NoError(t, err)
	assert.True(t, reflection.IsSufficient)
}

func TestDefaultResultReflector_EmptyResultsInsufficient(t *testing.T) {
	reflector := NewDefaultResultReflector(nil, "")
	reflection, err := reflector.Reflect(context.Background(), "q", nil, DefaultReflectorConfig())
	require.NoError(t, err)
	assert.False(t, reflection.IsSufficient)
	assert.Equal(t, 0.0, reflection.Confidence)
}
