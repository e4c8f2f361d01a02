package types

// AgentType classifies an agent's specialty.
type AgentType string

const (
	AgentOrchestrator     AgentType = "orchestrator"
	AgentResearcher       AgentType = "researcher"
	AgentCoder            AgentType = "coder"
	AgentWriter           AgentType = "writer"
	AgentConversationalist AgentType = "conversationalist"
	AgentDataAnalyst      AgentType = "data_analyst"
	AgentToolUser         AgentType = "tool_user"
)

// CustomAgentType builds the AgentType value for AgentType=Custom(name) in
// the spec's data model; Go has no tagged-enum payload, so custom types are
// represented as the literal string, distinguishable from the built-ins
// above by not matching any of them.
func CustomAgentType(name string) AgentType { return AgentType(name) }

// Capability is a tag describing something an agent can do; used to match
// tasks to agents.
type Capability string

const (
	CapCodeGeneration Capability = "code_generation"
	CapCodeReview     Capability = "code_review"
	CapWebSearch      Capability = "web_search"
	CapDataAnalysis   Capability = "data_analysis"
	CapWriting        Capability = "writing"
	CapConversation   Capability = "conversation"
	CapDocumentation  Capability = "documentation"
	CapToolUse        Capability = "tool_use"
)

// AgentStatus is the live runtime status of an agent, layered on top of the
// static AgentDescriptor.
type AgentStatus string

const (
	AgentIdle  AgentStatus = "idle"
	AgentBusy  AgentStatus = "busy"
	AgentError AgentStatus = "error"
)

// AgentDescriptor is the static configuration of one agent.
type AgentDescriptor struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Type              AgentType    `json:"type"`
	Capabilities      []Capability `json:"capabilities"`
	Priority          int          `json:"priority"` // [0,100]
	MaxConcurrentTasks int         `json:"max_concurrent_tasks"`
	Enabled           bool         `json:"enabled"`
	SystemPrompt      string       `json:"system_prompt,omitempty"`
	ModelHint         string       `json:"model_hint,omitempty"`
}

func (d AgentDescriptor) HasCapability(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// HasAllCapabilities reports whether d covers every capability in required.
func (d AgentDescriptor) HasAllCapabilities(required []Capability) bool {
	for _, c := range required {
		if !d.HasCapability(c) {
			return false
		}
	}
	return true
}
