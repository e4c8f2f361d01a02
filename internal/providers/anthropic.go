package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/clawerr"
)

// AnthropicProvider adapts the gateway's uniform contract to Anthropic's
// native wire format: system message as a top-level field (not part of the
// messages array), and content blocks instead of a flat string.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	version string
	client  *http.Client
	log     logrus.FieldLogger
}

func NewAnthropicProvider(apiKey string, log logrus.FieldLogger) *AnthropicProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AnthropicProvider{
		apiKey:  apiKey,
		baseURL: "https://api.anthropic.com",
		version: "2023-06-01",
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.WithField("provider", "anthropic"),
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func splitSystem(messages []ChatMessage) (system string, rest []anthropicMessage) {
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		rest = append(rest, anthropicMessage{
			Role:    m.Role,
			Content: []anthropicContentBlock{{Type: "text", Text: m.Content}},
		})
	}
	return system, rest
}

func mapAnthropicStopReason(s string) FinishReason {
	switch s {
	case "end_turn", "stop_sequence":
		return FinishStop
	case "max_tokens":
		return FinishLength
	case "tool_use":
		return FinishToolCalls
	default:
		return FinishStop
	}
}

func (p *AnthropicProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	system, messages := splitSystem(req.Messages)
	payload := anthropicRequest{
		Model:     req.Model,
		System:    system,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if payload.MaxTokens == 0 {
		payload.MaxTokens = 4096
	}

	var resp anthropicResponse
	if err := p.doRequest(ctx, "/v1/messages", payload, &resp); err != nil {
		return ChatResponse{}, err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Message: ChatMessage{
			Role:    "assistant",
			Content: text,
		},
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		FinishReason: mapAnthropicStopReason(resp.StopReason),
	}, nil
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
}

func (p *AnthropicProvider) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	system, messages := splitSystem(req.Messages)
	payload := anthropicRequest{
		Model:     req.Model,
		System:    system,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stream:    true,
	}
	if payload.MaxTokens == 0 {
		payload.MaxTokens = 4096
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &clawerr.SerializationError{Context: "anthropic.chat_stream", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, &clawerr.NetworkError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", p.version)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &clawerr.NetworkError{Op: "chat_stream", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &clawerr.ProviderError{Provider: "anthropic", StatusCode: resp.StatusCode, Message: "non-2xx stream response"}
	}

	out := make(chan StreamChunk, 256)
	mapper := JSONChunkMapper(func(ev anthropicStreamEvent) StreamChunk {
		switch ev.Type {
		case "content_block_delta":
			return StreamChunk{Delta: Delta{Content: ev.Delta.Text}}
		case "message_delta":
			if ev.Delta.StopReason != "" {
				reason := mapAnthropicStopReason(ev.Delta.StopReason)
				return StreamChunk{Finished: true, FinishReason: &reason}
			}
		}
		return StreamChunk{}
	})

	go func() {
		defer resp.Body.Close()
		DecodeStream(resp.Body, mapper, out)
	}()

	return out, nil
}

// Embed: Claude has no native embeddings endpoint.
func (p *AnthropicProvider) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	return EmbeddingResponse{}, &clawerr.ProviderError{Provider: "anthropic", Message: "anthropic does not support embeddings directly"}
}

func (p *AnthropicProvider) Models(ctx context.Context) ([]string, error) {
	return []string{"claude-opus-4", "claude-sonnet-4", "claude-haiku-4"}, nil
}

func (p *AnthropicProvider) HealthCheck(ctx context.Context) bool {
	_, err := p.Chat(ctx, ChatRequest{Model: "claude-haiku-4", Messages: []ChatMessage{{Role: "user", Content: "ping"}}, MaxTokens: 1})
	return err == nil
}

func (p *AnthropicProvider) doRequest(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &clawerr.SerializationError{Context: "anthropic.request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &clawerr.NetworkError{Op: "build request", Err: err}
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", p.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &clawerr.NetworkError{Op: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &clawerr.ProviderError{Provider: "anthropic", StatusCode: resp.StatusCode, Message: "non-2xx response"}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &clawerr.SerializationError{Context: "anthropic.response", Err: err}
	}
	return nil
}
