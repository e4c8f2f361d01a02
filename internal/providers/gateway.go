package providers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// BuiltinNames lists the provider names the gateway wires by default.
// Non-compatible backends (anthropic, gemini) get explicit adapters;
// everything else rides the OpenAI-compatible template.
var BuiltinNames = []string{
	"openai", "anthropic", "gemini", "deepseek", "qwen", "doubao",
	"glm", "minimax", "kimi", "openrouter", "ollama",
}

var openAICompatibleDefaults = map[string]OpenAICompatibleConfig{
	"openai":     {DisplayName: "openai", BaseURL: "https://api.openai.com/v1", DefaultModels: []string{"gpt-4o", "gpt-4o-mini"}},
	"deepseek":   {DisplayName: "deepseek", BaseURL: "https://api.deepseek.com/v1", DefaultModels: []string{"deepseek-chat", "deepseek-reasoner"}},
	"qwen":       {DisplayName: "qwen", BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", DefaultModels: []string{"qwen-plus", "qwen-turbo"}},
	"doubao":     {DisplayName: "doubao", BaseURL: "https://ark.cn-beijing.volces.com/api/v3", DefaultModels: []string{"doubao-pro"}},
	"glm":        {DisplayName: "glm", BaseURL: "https://open.bigmodel.cn/api/paas/v4", DefaultModels: []string{"glm-4"}},
	"minimax":    {DisplayName: "minimax", BaseURL: "https://api.minimax.chat/v1", DefaultModels: []string{"abab6.5"}},
	"kimi":       {DisplayName: "kimi", BaseURL: "https://api.moonshot.cn/v1", DefaultModels: []string{"moonshot-v1-8k"}},
	"openrouter": {DisplayName: "openrouter", BaseURL: "https://openrouter.ai/api/v1", DefaultModels: []string{"auto"}},
	"ollama":     {DisplayName: "ollama", BaseURL: "http://localhost:11434/v1", DefaultModels: []string{"llama3"}},
}

// Gateway is the top-level entry point agents and the RAG loop call
// through: a registry of built-in and custom providers, addressed by name.
type Gateway struct {
	registry *Registry
	log      logrus.FieldLogger
}

func NewGateway(log logrus.FieldLogger) *Gateway {
	if log == nil {
		log = logrus.StandardLogger()
	}
	gw := &Gateway{registry: NewRegistry(), log: log}
	gw.registerBuiltins()
	return gw
}

func (g *Gateway) registerBuiltins() {
	for name, cfg := range openAICompatibleDefaults {
		name, cfg := name, cfg
		_ = g.registry.RegisterFactory(name, cfg.Factory(g.log))
	}
	_ = g.registry.RegisterFactory("anthropic", func(config map[string]any) (Provider, error) {
		key, _ := config["api_key"].(string)
		return NewAnthropicProvider(key, g.log), nil
	})
	_ = g.registry.RegisterFactory("gemini", func(config map[string]any) (Provider, error) {
		key, _ := config["api_key"].(string)
		return NewGeminiProvider(key, g.log), nil
	})
}

// RegisterCustom adds a user-supplied provider factory. Duplicate names
// fail registration, matching the contract in §4.1.
func (g *Gateway) RegisterCustom(name string, factory Factory) error {
	return g.registry.RegisterFactory(name, factory)
}

// Provider resolves (building on first use) the named provider with the
// given config.
func (g *Gateway) Provider(name string, config map[string]any) (Provider, error) {
	p, err := g.registry.Build(name, config)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	return p, nil
}

// Chat is a convenience wrapper resolving the provider by name first.
func (g *Gateway) Chat(ctx context.Context, providerName string, config map[string]any, req ChatRequest) (ChatResponse, error) {
	p, err := g.Provider(providerName, config)
	if err != nil {
		return ChatResponse{}, err
	}
	return p.Chat(ctx, req)
}

// ConcatenateStream drains a stream channel and reconstructs the final
// message text by concatenating delta.content across all chunks for a
// given choice, along with the terminal finish reason. Used both by
// callers that want a "streamed but buffered" result and by tests
// asserting the chat/chat_stream equivalence invariant (§8).
func ConcatenateStream(chunks <-chan StreamChunk) (text string, finish FinishReason, err error) {
	finish = FinishStop
	for chunk := range chunks {
		if chunk.Err != nil {
			err = chunk.Err
			continue
		}
		text += chunk.Delta.Content
		if chunk.Finished && chunk.FinishReason != nil {
			finish = *chunk.FinishReason
		}
	}
	return text, finish, err
}
