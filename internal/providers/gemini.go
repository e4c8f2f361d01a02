package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/clawerr"
)

// GeminiProvider adapts the uniform contract to Gemini's generateContent
// wire format: role mapping assistant->model, systemInstruction as a
// separate side-channel, API key carried as a query parameter rather than
// a header.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     logrus.FieldLogger
}

func NewGeminiProvider(apiKey string, log logrus.FieldLogger) *GeminiProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.WithField("provider", "gemini"),
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate   `json:"candidates"`
	UsageMetadata geminiUsageMetadata `json:"usageMetadata"`
}

// MapGeminiFinishReason maps Gemini's finishReason vocabulary onto the
// uniform FinishReason set: STOP -> Stop, MAX_TOKENS -> Length,
// SAFETY/RECITATION -> ContentFilter.
func MapGeminiFinishReason(s string) FinishReason {
	switch s {
	case "STOP":
		return FinishStop
	case "MAX_TOKENS":
		return FinishLength
	case "SAFETY", "RECITATION":
		return FinishContentFilter
	case "":
		return FinishStop
	default:
		return FinishError
	}
}

func toGeminiContents(messages []ChatMessage) (system *geminiContent, contents []geminiContent) {
	for _, m := range messages {
		role := m.Role
		switch role {
		case "assistant":
			role = "model"
		case "system":
			sys := geminiContent{Parts: []geminiPart{{Text: m.Content}}}
			system = &sys
			continue
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	return system, contents
}

func (p *GeminiProvider) endpoint(model, verb string, stream bool) string {
	u := fmt.Sprintf("%s/models/%s:%s", p.baseURL, model, verb)
	q := url.Values{"key": {p.apiKey}}
	if stream {
		q.Set("alt", "sse")
	}
	return u + "?" + q.Encode()
}

func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	system, contents := toGeminiContents(req.Messages)
	payload := geminiRequest{Contents: contents, SystemInstruction: system}

	body, err := json.Marshal(payload)
	if err != nil {
		return ChatResponse{}, &clawerr.SerializationError{Context: "gemini.request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(req.Model, "generateContent", false), bytes.NewReader(body))
	if err != nil {
		return ChatResponse{}, &clawerr.NetworkError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return ChatResponse{}, &clawerr.NetworkError{Op: "generateContent", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ChatResponse{}, &clawerr.ProviderError{Provider: "gemini", StatusCode: resp.StatusCode, Message: "non-2xx response"}
	}

	var gresp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gresp); err != nil {
		return ChatResponse{}, &clawerr.SerializationError{Context: "gemini.response", Err: err}
	}
	if len(gresp.Candidates) == 0 {
		return ChatResponse{}, &clawerr.ProviderError{Provider: "gemini", Message: "empty candidates"}
	}

	candidate := gresp.Candidates[0]
	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}

	return ChatResponse{
		Model: req.Model,
		Message: ChatMessage{
			Role:    "assistant",
			Content: text,
		},
		Usage: Usage{
			PromptTokens:     gresp.UsageMetadata.PromptTokenCount,
			CompletionTokens: gresp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gresp.UsageMetadata.TotalTokenCount,
		},
		FinishReason: MapGeminiFinishReason(candidate.FinishReason),
	}, nil
}

func (p *GeminiProvider) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	system, contents := toGeminiContents(req.Messages)
	payload := geminiRequest{Contents: contents, SystemInstruction: system}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &clawerr.SerializationError{Context: "gemini.chat_stream", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(req.Model, "streamGenerateContent", true), bytes.NewReader(body))
	if err != nil {
		return nil, &clawerr.NetworkError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &clawerr.NetworkError{Op: "chat_stream", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &clawerr.ProviderError{Provider: "gemini", StatusCode: resp.StatusCode, Message: "non-2xx stream response"}
	}

	out := make(chan StreamChunk, 256)
	mapper := JSONChunkMapper(func(gresp geminiResponse) StreamChunk {
		if len(gresp.Candidates) == 0 {
			return StreamChunk{}
		}
		candidate := gresp.Candidates[0]
		var text string
		for _, part := range candidate.Content.Parts {
			text += part.Text
		}
		chunk := StreamChunk{Delta: Delta{Content: text}}
		if candidate.FinishReason != "" {
			reason := MapGeminiFinishReason(candidate.FinishReason)
			chunk.Finished = true
			chunk.FinishReason = &reason
		}
		return chunk
	})

	go func() {
		defer resp.Body.Close()
		DecodeStream(resp.Body, mapper, out)
	}()

	return out, nil
}

// Embed: text-embedding support is available via a different Gemini
// endpoint family the gateway does not wire in (no example repo exercises
// it); callers needing embeddings from Google models should register a
// dedicated embedding-only adapter instead.
func (p *GeminiProvider) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	return EmbeddingResponse{}, &clawerr.ProviderError{Provider: "gemini", Message: "embeddings not wired for this adapter"}
}

func (p *GeminiProvider) Models(ctx context.Context) ([]string, error) {
	return []string{"gemini-2.0-flash", "gemini-2.0-pro"}, nil
}

func (p *GeminiProvider) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models?key="+p.apiKey, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.WithError(err).Warn("health check failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
