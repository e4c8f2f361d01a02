package types

import "time"

// TaskType is the kind of work a TaskRequest represents.
type TaskType string

const (
	TaskConversation    TaskType = "conversation"
	TaskQuestionAnswer  TaskType = "question_answer"
	TaskCodeGeneration  TaskType = "code_generation"
	TaskCodeReview      TaskType = "code_review"
	TaskWebSearch       TaskType = "web_search"
	TaskDataAnalysis    TaskType = "data_analysis"
	TaskDocumentation   TaskType = "documentation"
)

// CustomTaskType mirrors CustomAgentType: TaskType=Custom(name) is
// represented as the literal string.
func CustomTaskType(name string) TaskType { return TaskType(name) }

// TaskInputKind tags the variant carried by TaskInput.
type TaskInputKind string

const (
	InputMessage    TaskInputKind = "message"
	InputText       TaskInputKind = "text"
	InputCode       TaskInputKind = "code"
	InputData       TaskInputKind = "data"
	InputFile       TaskInputKind = "file"
	InputSearchQuery TaskInputKind = "search_query"
	InputToolCall   TaskInputKind = "tool_call"
)

// TaskInput is a sum type over the shapes a task's input may take.
type TaskInput struct {
	Kind TaskInputKind `json:"kind"`

	Message *Message `json:"message,omitempty"`

	Text string `json:"text,omitempty"`

	Lang string `json:"lang,omitempty"`
	Code string `json:"code,omitempty"`

	Data map[string]any `json:"data,omitempty"`

	Path    string `json:"path,omitempty"`
	FileContent string `json:"file_content,omitempty"`

	Query string `json:"query,omitempty"`

	ToolName string         `json:"tool_name,omitempty"`
	ToolArgs map[string]any `json:"tool_args,omitempty"`
}

func TextInput(s string) TaskInput { return TaskInput{Kind: InputText, Text: s} }

// TaskPriority orders tasks for scheduling purposes; higher runs first.
type TaskPriority int

const (
	PriorityLow    TaskPriority = 0
	PriorityNormal TaskPriority = 50
	PriorityHigh   TaskPriority = 100
)

// TaskRequest is one unit of work submitted to the Orchestrator.
type TaskRequest struct {
	ID                  string       `json:"id"`
	TaskType            TaskType     `json:"task_type"`
	Input               TaskInput    `json:"input"`
	Context             []Message    `json:"context,omitempty"`
	RequiredCapabilities []Capability `json:"required_capabilities,omitempty"`
	PreferredAgent      string       `json:"preferred_agent,omitempty"`
	Priority            TaskPriority `json:"priority"`
	CreatedAt           time.Time    `json:"created_at"`

	// ToolHints names tools an agent processing this request should prefer,
	// pre-populated by the orchestrator from TaskAnalysis.SuggestedTools
	// when the caller didn't already set one.
	ToolHints []string `json:"tool_hints,omitempty"`
}

// TaskStatus is the terminal or in-flight status of a TaskResult.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// TaskOutputKind tags the variant carried by TaskOutput.
type TaskOutputKind string

const (
	OutputMessage      TaskOutputKind = "message"
	OutputText         TaskOutputKind = "text"
	OutputCode         TaskOutputKind = "code"
	OutputData         TaskOutputKind = "data"
	OutputSearchResult TaskOutputKind = "search_result"
	OutputToolResult   TaskOutputKind = "tool_result"
	OutputMultiple     TaskOutputKind = "multiple"
)

// SearchResultItem is one hit in an OutputSearchResult.
type SearchResultItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// TaskOutput is a sum type over what an agent can produce.
type TaskOutput struct {
	Kind TaskOutputKind `json:"kind"`

	Message *Message `json:"message,omitempty"`
	Text    string   `json:"text,omitempty"`

	Lang string `json:"lang,omitempty"`
	Code string `json:"code,omitempty"`

	Data map[string]any `json:"data,omitempty"`

	SearchResults []SearchResultItem `json:"search_results,omitempty"`

	ToolResult map[string]any `json:"tool_result,omitempty"`

	Outputs []TaskOutput `json:"outputs,omitempty"`
}

func TextOutput(s string) TaskOutput { return TaskOutput{Kind: OutputText, Text: s} }

// TaskResult is the outcome of processing a TaskRequest. SubTasks forms a
// single-level tree only: decomposition never recurses.
type TaskResult struct {
	TaskID      string       `json:"task_id"`
	AgentID     string       `json:"agent_id"`
	Status      TaskStatus   `json:"status"`
	Output      *TaskOutput  `json:"output,omitempty"`
	Error       string       `json:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	TokensUsed  *int         `json:"tokens_used,omitempty"`
	SubTasks    []TaskResult `json:"sub_tasks,omitempty"`
}

func SuccessResult(taskID, agentID string, output TaskOutput) TaskResult {
	now := time.Now().UTC()
	return TaskResult{
		TaskID:      taskID,
		AgentID:     agentID,
		Status:      TaskCompleted,
		Output:      &output,
		StartedAt:   now,
		CompletedAt: &now,
	}
}

func FailureResult(taskID, agentID, reason string) TaskResult {
	now := time.Now().UTC()
	return TaskResult{
		TaskID:      taskID,
		AgentID:     agentID,
		Status:      TaskFailed,
		Error:       reason,
		StartedAt:   now,
		CompletedAt: &now,
	}
}
