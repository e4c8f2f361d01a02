package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/openclaw/core/internal/providers"
	"github.com/openclaw/core/internal/types"
)

// ReflectorConfig tunes when retrieved context is judged sufficient.
type ReflectorConfig struct {
	MinConfidence      float64
	MaxIterations      int
	EnableLLMVerify    bool
}

func DefaultReflectorConfig() ReflectorConfig {
	return ReflectorConfig{MinConfidence: 0.7, MaxIterations: 3, EnableLLMVerify: false}
}

// ResultReflector judges whether retrieved context answers a query and, if
// so, writes the final answer.
type ResultReflector interface {
	Reflect(ctx context.Context, query string, results []types.RetrievalResult, cfg ReflectorConfig) (types.Reflection, error)
	GenerateAnswer(ctx context.Context, query string, results []types.RetrievalResult, history []types.Message) (string, error)
}

// DefaultResultReflector scores sufficiency from result count/relevance by
// default (deterministic, no LLM round-trip), and optionally verifies with
// an LLM call when EnableLLMVerify is set. Answer generation always goes
// through the configured provider.
type DefaultResultReflector struct {
	provider providers.Provider
	model    string
}

func NewDefaultResultReflector(provider providers.Provider, model string) *DefaultResultReflector {
	if model == "" {
		model = "gpt-4o"
	}
	return &DefaultResultReflector{provider: provider, model: model}
}

func (r *DefaultResultReflector) Reflect(ctx context.Context, query string, results []types.RetrievalResult, cfg ReflectorConfig) (types.Reflection, error) {
	if len(results) == 0 {
		return types.Reflection{
			IsSufficient: false,
			Confidence:   0,
			MissingInfo:  []string{"no results retrieved"},
			Suggestions:  []string{"try different search terms"},
		}, nil
	}

	if cfg.EnableLLMVerify && r.provider != nil {
		return r.verifyWithLLM(ctx, query, results, cfg)
	}
	return r.verifySimple(results, cfg), nil
}

// verifySimple requires both an average relevance above MinConfidence and
// at least two results, matching the grounded heuristic: a single
// high-scoring hit is still treated as insufficient corroboration.
func (r *DefaultResultReflector) verifySimple(results []types.RetrievalResult, cfg ReflectorConfig) types.Reflection {
	var total float64
	for _, res := range results {
		total += res.RelevanceScore
	}
	avg := total / float64(len(results))
	sufficient := avg >= cfg.MinConfidence && len(results) >= 2

	reflection := types.Reflection{IsSufficient: sufficient, Confidence: avg}
	if !sufficient {
		reflection.MissingInfo = []string{"results below confidence threshold"}
		reflection.Suggestions = []string{"try broader search terms"}
	}
	return reflection
}

func (r *DefaultResultReflector) verifyWithLLM(ctx context.Context, query string, results []types.RetrievalResult, cfg ReflectorConfig) (types.Reflection, error) {
	var b strings.Builder
	limit := len(results)
	if limit > 5 {
		limit = 5
	}
	for _, res := range results[:limit] {
		fmt.Fprintf(&b, "- %s\n  Source: %s\n  Relevance: %.2f\n\n", res.Content, res.Source, res.RelevanceScore)
	}

	prompt := fmt.Sprintf(`Analyze whether the retrieved information is sufficient to answer the user's question.

Question: %s

Retrieved information:
%s
Respond with JSON: {"is_sufficient": true/false, "confidence": 0.0-1.0, "missing_info": [], "suggestions": []}`, query, b.String())

	resp, err := r.provider.Chat(ctx, providers.ChatRequest{
		Model:    r.model,
		Messages: []providers.ChatMessage{{Role: "system", Content: prompt}},
	})
	if err != nil {
		return r.verifySimple(results, cfg), nil
	}
	return parseReflectionJSON(resp.Message.Content, cfg), nil
}

func (r *DefaultResultReflector) GenerateAnswer(ctx context.Context, query string, results []types.RetrievalResult, history []types.Message) (string, error) {
	if len(results) == 0 {
		return "I couldn't find relevant information to answer your question.", nil
	}
	if r.provider == nil {
		return fallbackAnswer(results), nil
	}

	var contextStr strings.Builder
	for _, res := range results {
		fmt.Fprintf(&contextStr, "[%s] %s\n\n", res.Source, res.Content)
	}

	var historyStr strings.Builder
	for _, m := range history {
		if t := m.TextContent(); t != "" {
			historyStr.WriteString(t)
			historyStr.WriteString("\n")
		}
	}

	prompt := fmt.Sprintf(`Based on the following retrieved information%s, answer the user's question.

Retrieved information:
%s
Question: %s

Provide a clear, accurate answer based on the retrieved information. If the information is insufficient, state that clearly.`,
		historySuffix(historyStr.String()), contextStr.String(), query)

	resp, err := r.provider.Chat(ctx, providers.ChatRequest{
		Model:    r.model,
		Messages: []providers.ChatMessage{{Role: "system", Content: prompt}},
	})
	if err != nil {
		return fallbackAnswer(results), nil
	}
	return resp.Message.Content, nil
}

func historySuffix(history string) string {
	if history == "" {
		return ""
	}
	return " and conversation history"
}

func fallbackAnswer(results []types.RetrievalResult) string {
	var b strings.Builder
	for _, res := range results {
		b.WriteString(res.Content)
		b.WriteString("\n")
	}
	return b.String()
}
