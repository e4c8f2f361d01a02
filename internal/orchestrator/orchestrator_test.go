package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/core/internal/agents"
	"github.com/openclaw/core/internal/providers"
	"github.com/openclaw/core/internal/types"
)

type stubProvider struct {
	reply string
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Chat(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	return providers.ChatResponse{
		Message:      providers.ChatMessage{Role: "assistant", Content: s.reply},
		Usage:        providers.Usage{TotalTokens: 10},
		FinishReason: providers.FinishStop,
	}, nil
}
func (s *stubProvider) ChatStream(ctx context.Context, req providers.ChatRequest) (<-chan providers.StreamChunk, error) {
	return nil, nil
}
func (s *stubProvider) Embed(ctx context.Context, req providers.EmbeddingRequest) (providers.EmbeddingResponse, error) {
	return providers.EmbeddingResponse{}, nil
}
func (s *stubProvider) Models(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubProvider) HealthCheck(ctx context.Context) bool         { return true }

func newTestTeam() *agents.Team {
	team := agents.NewTeam(agents.DefaultTeamConfig("t", "Test Team"))
	chat := agents.NewBaseAgent(types.AgentDescriptor{
		ID: "chat", Name: "Chat", Type: types.AgentConversationalist,
		Capabilities: []types.Capability{types.CapConversation}, MaxConcurrentTasks: 5, Enabled: true,
	})
	chat.SetProvider(&stubProvider{reply: "hi there"})
	team.AddAgent(chat)
	return team
}

func TestOrchestrator_Process_SimpleConversation(t *testing.T) {
	team := newTestTeam()
	orch := New(team, DefaultConfig(), nil)

	req := types.TaskRequest{
		ID:                   "task-1",
		TaskType:             types.TaskConversation,
		Input:                types.TextInput("Hello"),
		RequiredCapabilities: []types.Capability{types.CapConversation},
	}

	result, err := orch.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.TaskCompleted, result.Status)
	assert.Equal(t, 0, orch.ActiveTaskCount())
}

func TestOrchestrator_Process_NoAvailableAgentFails(t *testing.T) {
	team := agents.NewTeam(agents.DefaultTeamConfig("t", "Empty Team"))
	orch := New(team, DefaultConfig(), nil)

	req := types.TaskRequest{
		ID:                   "task-2",
		TaskType:             types.TaskConversation,
		Input:                types.TextInput("Hello"),
		RequiredCapabilities: []types.Capability{types.CapConversation},
	}

	result, err := orch.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.TaskFailed, result.Status)
}

func TestTaskAnalyzer_Analyze_WriteCodeRequest(t *testing.T) {
	analyzer := NewTaskAnalyzer()
	req := types.TaskRequest{TaskType: types.TaskCodeGeneration, Input: types.TextInput("please write a function to sort a list")}
	analysis := analyzer.Analyze(req)
	assert.Equal(t, types.AgentCoder, analysis.SuggestedAgentType)
	assert.Contains(t, analysis.RequiredCapabilities, types.CapCodeGeneration)
}

func TestTaskAnalyzer_Analyze_ResearchRequest(t *testing.T) {
	analyzer := NewTaskAnalyzer()
	req := types.TaskRequest{TaskType: types.TaskWebSearch, Input: types.TextInput("please research the history of Go")}
	analysis := analyzer.Analyze(req)
	assert.Equal(t, types.AgentResearcher, analysis.SuggestedAgentType)
}

func TestOrchestrator_Aggregate_AllFailedSurfacesFirstFailureReason(t *testing.T) {
	results := []types.TaskResult{
		types.FailureResult("sub-1", "agent-a", "agent-a: rate limited"),
		types.FailureResult("sub-2", "agent-b", "agent-b: timed out"),
	}

	orch := New(agents.NewTeam(agents.DefaultTeamConfig("t", "Team")), DefaultConfig(), nil)
	result := orch.aggregate("task-1", results)

	assert.Equal(t, types.TaskFailed, result.Status)
	assert.Equal(t, "agent-a: rate limited", result.Error)
	assert.Len(t, result.SubTasks, 2)
}

// capturingAgent wraps a BaseAgent and records the last TaskRequest it was
// asked to Process, so tests can inspect what the orchestrator actually
// dispatched (e.g. whether ToolHints was pre-populated).
type capturingAgent struct {
	*agents.BaseAgent
	lastTask types.TaskRequest
}

func (c *capturingAgent) Process(ctx context.Context, task types.TaskRequest) (types.TaskResult, error) {
	c.lastTask = task
	return c.BaseAgent.Process(ctx, task)
}

func TestOrchestrator_Process_PrePopulatesToolHintsFromAnalysis(t *testing.T) {
	team := agents.NewTeam(agents.DefaultTeamConfig("t", "Test Team"))
	base := agents.NewBaseAgent(types.AgentDescriptor{
		ID: "coder", Name: "Coder", Type: types.AgentCoder,
		Capabilities: []types.Capability{types.CapCodeGeneration}, MaxConcurrentTasks: 5, Enabled: true,
	})
	base.SetProvider(&stubProvider{reply: "func sorted() {}"})
	coder := &capturingAgent{BaseAgent: base}
	team.AddAgent(coder)

	orch := New(team, DefaultConfig(), nil)
	req := types.TaskRequest{
		ID:                   "task-3",
		TaskType:             types.TaskCodeGeneration,
		Input:                types.TextInput("please write a function to sort a list"),
		RequiredCapabilities: []types.Capability{types.CapCodeGeneration},
	}

	_, err := orch.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"code_generator"}, coder.lastTask.ToolHints)
}

func TestOrchestrator_Decompose_DocumentationSplitsIntoTwo(t *testing.T) {
	team := newTestTeam()
	orch := New(team, DefaultConfig(), nil)
	req := types.TaskRequest{ID: "doc-1", TaskType: types.TaskDocumentation, Input: types.TextInput("write docs")}
	analysis := orch.analyzer.Analyze(req)
	subTasks := orch.decompose(req, analysis)
	require.Len(t, subTasks, 2)
	assert.Equal(t, types.TaskWebSearch, subTasks[0].TaskType)
	assert.Equal(t, types.TaskDocumentation, subTasks[1].TaskType)
}
