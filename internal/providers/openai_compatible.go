package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/clawerr"
)

// OpenAICompatibleConfig parameterizes the template: display name, default
// base URL, default model list, and the bearer key used for auth. Reused
// for every provider that accepts OpenAI's /chat/completions and
// /embeddings shapes (openai, deepseek, qwen, doubao, glm, minimax, kimi,
// openrouter, ollama).
type OpenAICompatibleConfig struct {
	DisplayName    string
	BaseURL        string
	DefaultModels  []string
	APIKey         string
}

// OpenAICompatibleProvider implements Provider against any backend that
// speaks OpenAI's wire format.
type OpenAICompatibleProvider struct {
	cfg    OpenAICompatibleConfig
	client *http.Client
	log    logrus.FieldLogger
}

func NewOpenAICompatibleProvider(cfg OpenAICompatibleConfig, log logrus.FieldLogger) *OpenAICompatibleProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &OpenAICompatibleProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.WithField("provider", cfg.DisplayName),
	}
}

func (p *OpenAICompatibleProvider) Name() string { return p.cfg.DisplayName }

type oaChatCompletionReq struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type oaChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type oaChatCompletionResp struct {
	ID      string     `json:"id"`
	Model   string     `json:"model"`
	Choices []oaChoice `json:"choices"`
	Usage   Usage      `json:"usage"`
}

func mapOAFinishReason(s string) FinishReason {
	switch s {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	case "tool_calls", "function_call":
		return FinishToolCalls
	case "content_filter":
		return FinishContentFilter
	case "":
		return FinishStop
	default:
		return FinishError
	}
}

func (p *OpenAICompatibleProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	payload := oaChatCompletionReq{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp oaChatCompletionResp
	if err := p.doJSON(ctx, "/chat/completions", payload, &resp); err != nil {
		return ChatResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, &clawerr.ProviderError{Provider: p.cfg.DisplayName, Message: "empty choices"}
	}
	choice := resp.Choices[0]
	return ChatResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Message:      choice.Message,
		Usage:        resp.Usage,
		FinishReason: mapOAFinishReason(choice.FinishReason),
	}, nil
}

type oaStreamChoice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type oaStreamChunk struct {
	ID      string           `json:"id"`
	Model   string           `json:"model"`
	Choices []oaStreamChoice `json:"choices"`
}

func (p *OpenAICompatibleProvider) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	payload := oaChatCompletionReq{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &clawerr.SerializationError{Context: "openai_compatible.chat_stream", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &clawerr.NetworkError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &clawerr.NetworkError{Op: "chat_stream", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &clawerr.ProviderError{Provider: p.cfg.DisplayName, StatusCode: resp.StatusCode, Message: "non-2xx stream response"}
	}

	out := make(chan StreamChunk, 256)
	mapper := JSONChunkMapper(func(c oaStreamChunk) StreamChunk {
		if len(c.Choices) == 0 {
			return StreamChunk{ID: c.ID, Model: c.Model}
		}
		ch := c.Choices[0]
		chunk := StreamChunk{ID: c.ID, Model: c.Model, Delta: ch.Delta}
		if ch.FinishReason != "" {
			reason := mapOAFinishReason(ch.FinishReason)
			chunk.Finished = true
			chunk.FinishReason = &reason
		}
		return chunk
	})

	go func() {
		defer resp.Body.Close()
		DecodeStream(resp.Body, mapper, out)
	}()

	// Cancellation: dropping the consumer (context cancel) aborts the
	// in-flight request via ctx, which unblocks the body read in
	// DecodeStream's goroutine.
	return out, nil
}

type oaEmbeddingReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type oaEmbeddingData struct {
	Embedding []float32 `json:"embedding"`
}

type oaEmbeddingResp struct {
	Model string            `json:"model"`
	Data  []oaEmbeddingData `json:"data"`
	Usage Usage             `json:"usage"`
}

func (p *OpenAICompatibleProvider) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	var resp oaEmbeddingResp
	if err := p.doJSON(ctx, "/embeddings", oaEmbeddingReq{Model: req.Model, Input: req.Input}, &resp); err != nil {
		return EmbeddingResponse{}, err
	}
	embeddings := make([][]float32, 0, len(resp.Data))
	for _, d := range resp.Data {
		embeddings = append(embeddings, d.Embedding)
	}
	return EmbeddingResponse{Model: resp.Model, Embeddings: embeddings, Usage: resp.Usage}, nil
}

func (p *OpenAICompatibleProvider) Models(ctx context.Context) ([]string, error) {
	return p.cfg.DefaultModels, nil
}

func (p *OpenAICompatibleProvider) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.WithError(err).Warn("health check failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *OpenAICompatibleProvider) doJSON(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &clawerr.SerializationError{Context: "openai_compatible.request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return &clawerr.NetworkError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return &clawerr.NetworkError{Op: fmt.Sprintf("POST %s", path), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &clawerr.ProviderError{Provider: p.cfg.DisplayName, StatusCode: resp.StatusCode, Message: "non-2xx response"}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &clawerr.SerializationError{Context: "openai_compatible.response", Err: err}
	}
	return nil
}

// Factory builds a Factory closure for this template, parameterized by the
// config pieces the registry needs (bearer key comes from the caller's
// config map, per Toolkit's provider-factory pattern).
func (cfg OpenAICompatibleConfig) Factory(log logrus.FieldLogger) Factory {
	return func(config map[string]any) (Provider, error) {
		instanceCfg := cfg
		if key, ok := config["api_key"].(string); ok && key != "" {
			instanceCfg.APIKey = key
		}
		if base, ok := config["base_url"].(string); ok && base != "" {
			instanceCfg.BaseURL = base
		}
		return NewOpenAICompatibleProvider(instanceCfg, log), nil
	}
}
