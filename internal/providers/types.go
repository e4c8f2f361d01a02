// Package providers implements the Provider Gateway: a uniform chat/stream/
// embed/health contract over heterogeneous LLM backends, an SSE chunk
// parser, and a runtime-registerable provider factory registry.
package providers

import "context"

// FinishReason is the uniform completion reason across every backend.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishError         FinishReason = "error"
)

// ChatMessage is the wire-level message shape passed to a provider. Kept
// separate from types.Message so provider adapters own the lossy
// projection to each backend's wire format without coupling the core data
// model to any one provider's quirks.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ToolDefinition describes a callable tool a provider may invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatRequest is the uniform request shape accepted by every provider.
type ChatRequest struct {
	Model       string           `json:"model"`
	Messages    []ChatMessage    `json:"messages"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

// Usage reports token accounting for one chat call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the uniform non-streaming response shape.
type ChatResponse struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Message      ChatMessage  `json:"message"`
	Usage        Usage        `json:"usage"`
	FinishReason FinishReason `json:"finish_reason"`
}

// Delta is the incremental content carried by one StreamChunk.
type Delta struct {
	Role      string           `json:"role,omitempty"`
	Content   string           `json:"content,omitempty"`
	ToolCalls []ToolDefinition `json:"tool_calls,omitempty"`
}

// StreamChunk is one incremental event in a chat_stream sequence.
type StreamChunk struct {
	ID           string        `json:"id"`
	Model        string        `json:"model"`
	Delta        Delta         `json:"delta"`
	Finished     bool          `json:"finished"`
	FinishReason *FinishReason `json:"finish_reason,omitempty"`
	Err          error         `json:"-"`
}

// EmbeddingRequest/Response mirror the OpenAI embeddings shape closely
// enough to serve as the uniform contract across providers that support
// embeddings at all.
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type EmbeddingResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
	Usage      Usage       `json:"usage"`
}

// Provider is the contract every backend (built-in or user-registered)
// must satisfy.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
	Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error)
	Models(ctx context.Context) ([]string, error)
	HealthCheck(ctx context.Context) bool
}
