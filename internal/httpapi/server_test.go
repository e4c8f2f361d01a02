package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/core/internal/agents"
	"github.com/openclaw/core/internal/orchestrator"
	"github.com/openclaw/core/internal/presence"
	"github.com/openclaw/core/internal/providers"
	"github.com/openclaw/core/internal/rag"
	"github.com/openclaw/core/internal/types"
)

type stubProvider struct{ reply string }

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Chat(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	return providers.ChatResponse{
		Message:      providers.ChatMessage{Role: "assistant", Content: s.reply},
		Usage:        providers.Usage{TotalTokens: 5},
		FinishReason: providers.FinishStop,
	}, nil
}
func (s *stubProvider) ChatStream(ctx context.Context, req providers.ChatRequest) (<-chan providers.StreamChunk, error) {
	ch := make(chan providers.StreamChunk, 2)
	ch <- providers.StreamChunk{Delta: providers.Delta{Content: s.reply}}
	ch <- providers.StreamChunk{Finished: true}
	close(ch)
	return ch, nil
}
func (s *stubProvider) Embed(ctx context.Context, req providers.EmbeddingRequest) (providers.EmbeddingResponse, error) {
	return providers.EmbeddingResponse{}, nil
}
func (s *stubProvider) Models(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubProvider) HealthCheck(ctx context.Context) bool         { return true }

type stubPlanner struct{}

func (stubPlanner) Plan(ctx context.Context, query string, history []types.Message, hints []string, cfg rag.PlannerConfig) (types.RetrievalPlan, error) {
	return types.RetrievalPlan{SubQueries: []types.SubQuery{{Query: query, Source: "memory"}}, MaxIterations: cfg.MaxSubQueries}, nil
}

type stubExecutor struct{}

func (stubExecutor) Execute(ctx context.Context, sq types.SubQuery) ([]types.RetrievalResult, error) {
	return []types.RetrievalResult{{ID: "r1", Content: "stub result", Source: sq.Source, RelevanceScore: 0.9}}, nil
}

type stubReflector struct{}

func (stubReflector) Reflect(ctx context.Context, query string, results []types.RetrievalResult, cfg rag.ReflectorConfig) (types.Reflection, error) {
	return types.Reflection{IsSufficient: true, Confidence: 0.9}, nil
}
func (stubReflector) GenerateAnswer(ctx context.Context, query string, results []types.RetrievalResult, history []types.Message) (string, error) {
	return "stub answer", nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	team := agents.NewTeam(agents.DefaultTeamConfig("t", "Test Team"))
	chat := agents.NewBaseAgent(types.AgentDescriptor{
		ID: "chat", Name: "Chat", Type: types.AgentConversationalist,
		Capabilities: []types.Capability{types.CapConversation}, MaxConcurrentTasks: 5, Enabled: true,
	})
	chat.SetProvider(&stubProvider{reply: "hi there"})
	team.AddAgent(chat)

	orch := orchestrator.New(team, orchestrator.DefaultConfig(), nil)
	loop := rag.NewLoop(stubPlanner{}, stubExecutor{}, stubReflector{}, nil)

	registry := providers.NewRegistry()
	registry.RegisterInstance("openai", &stubProvider{reply: "hi there"})

	return NewServer(Deps{
		Orchestrator:    orch,
		Team:            team,
		RAGLoop:         loop,
		Presence:        presence.NewManager(presence.DefaultConfig()),
		Providers:       registry,
		DefaultProvider: "openai",
		PlannerConfig:   rag.DefaultPlannerConfig(),
		ReflectorConfig: rag.DefaultReflectorConfig(),
		Mode:            gin.TestMode,
	})
}

func TestHandleChat_NonStreaming(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
	})

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp providers.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hi there", resp.Message.Content)
}

func TestHandleAgentProcess_UnknownAgent404s(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(types.TaskRequest{TaskType: types.TaskConversation, Input: types.TextInput("hi")})

	req := httptest.NewRequest(http.MethodPost, "/agents/ghost/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAgentProcess_KnownAgentSucceeds(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(types.TaskRequest{TaskType: types.TaskConversation, Input: types.TextInput("hi")})

	req := httptest.NewRequest(http.MethodPost, "/agents/chat/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result types.TaskResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, types.TaskCompleted, result.Status)
}

func TestHandleRAGQuery(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(map[string]string{"query": "what is Go"})

	req := httptest.NewRequest(http.MethodPost, "/rag/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.RAGResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "stub answer", resp.Answer)
}

func TestHandlePresenceHeartbeatThenList(t *testing.T) {
	s := newTestServer(t)
	s.presence.SetStatus("agent-1", presence.EntityAgent, presence.StatusOnline, "")

	body, _ := json.Marshal(map[string][]string{"ids": {"agent-1"}})
	req := httptest.NewRequest(http.MethodPost, "/presence/heartbeat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/presence", nil)
	w2 := httptest.NewRecorder()
	s.Engine().ServeHTTP(w2, req2)
	require.Equal(t, http.StatusOK, w2.Code)
}
