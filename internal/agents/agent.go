// Package agents implements individual agents and the team they route
// tasks through.
package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openclaw/core/internal/memory"
	"github.com/openclaw/core/internal/providers"
	"github.com/openclaw/core/internal/types"
)

// Agent is the contract every runtime agent implements.
type Agent interface {
	ID() string
	Name() string
	AgentType() types.AgentType
	Capabilities() []types.Capability
	HasCapability(c types.Capability) bool
	Info() types.AgentDescriptor
	Process(ctx context.Context, task types.TaskRequest) (types.TaskResult, error)
	IsAvailable() bool
	Load() float64
	SetProvider(p providers.Provider)
	SetMemory(m *memory.MemoryManager)
	SystemPrompt() string
}

// BaseAgent is the default Agent implementation: it turns a TaskRequest
// into a ChatRequest against whatever Provider is configured and wraps the
// reply back into a TaskResult. Specialized agent behavior is expressed
// entirely through AgentDescriptor (system prompt, capabilities, model
// hint), not through Go subtypes.
type BaseAgent struct {
	mu sync.RWMutex

	descriptor   types.AgentDescriptor
	status       types.AgentStatus
	currentTasks int

	provider providers.Provider
	mem      *memory.MemoryManager
}

func NewBaseAgent(descriptor types.AgentDescriptor) *BaseAgent {
	return &BaseAgent{descriptor: descriptor, status: types.AgentIdle}
}

func (a *BaseAgent) ID() string                        { return a.descriptor.ID }
func (a *BaseAgent) Name() string                       { return a.descriptor.Name }
func (a *BaseAgent) AgentType() types.AgentType         { return a.descriptor.Type }
func (a *BaseAgent) Capabilities() []types.Capability   { return a.descriptor.Capabilities }
func (a *BaseAgent) HasCapability(c types.Capability) bool {
	return a.descriptor.HasCapability(c)
}
func (a *BaseAgent) Info() types.AgentDescriptor { return a.descriptor }
func (a *BaseAgent) SystemPrompt() string        { return a.descriptor.SystemPrompt }

func (a *BaseAgent) SetProvider(p providers.Provider) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.provider = p
}

func (a *BaseAgent) SetMemory(m *memory.MemoryManager) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mem = m
}

// IsAvailable mirrors the availability check used by every routing
// strategy: enabled, idle, and under its concurrent-task ceiling.
func (a *BaseAgent) IsAvailable() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.descriptor.Enabled &&
		a.status == types.AgentIdle &&
		a.currentTasks < a.descriptor.MaxConcurrentTasks
}

// Load returns current load in [0,1]; an agent with zero concurrency slots
// reports itself fully loaded rather than dividing by zero.
func (a *BaseAgent) Load() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.descriptor.MaxConcurrentTasks == 0 {
		return 1.0
	}
	return float64(a.currentTasks) / float64(a.descriptor.MaxConcurrentTasks)
}

func (a *BaseAgent) buildMessages(task types.TaskRequest) []types.Message {
	var messages []types.Message
	if a.descriptor.SystemPrompt != "" {
		messages = append(messages, types.NewMessage(types.RoleSystem, types.TextContent(a.descriptor.SystemPrompt)))
	}
	messages = append(messages, task.Context...)

	switch task.Input.Kind {
	case types.InputMessage:
		if task.Input.Message != nil {
			messages = append(messages, *task.Input.Message)
		}
	case types.InputText:
		messages = append(messages, types.UserMessage(task.Input.Text))
	case types.InputCode:
		messages = append(messages, types.UserMessage(fmt.Sprintf("```%s\n%s\n```", task.Input.Lang, task.Input.Code)))
	case types.InputData:
		messages = append(messages, types.UserMessage(fmt.Sprintf("Data: %v", task.Input.Data)))
	case types.InputFile:
		messages = append(messages, types.UserMessage(fmt.Sprintf("File: %s\n\n%s", task.Input.Path, task.Input.FileContent)))
	case types.InputSearchQuery:
		messages = append(messages, types.UserMessage(fmt.Sprintf("Search for: %s", task.Input.Query)))
	case types.InputToolCall:
		messages = append(messages, types.UserMessage(fmt.Sprintf("Execute tool '%s' with arguments: %v", task.Input.ToolName, task.Input.ToolArgs)))
	}
	return messages
}

func (a *BaseAgent) model() string {
	if a.descriptor.ModelHint != "" {
		return a.descriptor.ModelHint
	}
	return "gpt-4o"
}

// Process builds a ChatRequest from the task and runs it through the
// configured Provider. Missing provider or provider errors both resolve to
// a TaskFailed result rather than a Go error, so callers never have to
// special-case "agent couldn't run" from "agent ran and failed".
func (a *BaseAgent) Process(ctx context.Context, task types.TaskRequest) (types.TaskResult, error) {
	startedAt := time.Now().UTC()

	a.mu.Lock()
	a.currentTasks++
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.currentTasks--
		a.mu.Unlock()
	}()

	if a.provider == nil {
		return types.FailureResult(task.ID, a.ID(), "no AI provider configured for this agent"), nil
	}

	messages := a.buildMessages(task)
	chatMessages := make([]providers.ChatMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, providers.ChatMessage{Role: string(m.Role), Content: m.TextContent(), Name: m.Name})
	}

	resp, err := a.provider.Chat(ctx, providers.ChatRequest{Model: a.model(), Messages: chatMessages})
	if err != nil {
		return types.FailureResult(task.ID, a.ID(), fmt.Sprintf("AI provider error: %v", err)), nil
	}

	completedAt := time.Now().UTC()
	replyMsg := types.AssistantMessage(resp.Message.Content)
	output := types.TaskOutput{Kind: types.OutputMessage, Message: &replyMsg}
	total := resp.Usage.TotalTokens

	return types.TaskResult{
		TaskID:      task.ID,
		AgentID:     a.ID(),
		Status:      types.TaskCompleted,
		Output:      &output,
		StartedAt:   startedAt,
		CompletedAt: &completedAt,
		TokensUsed:  &total,
	}, nil
}
