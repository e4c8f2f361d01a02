// Package orchestrator coordinates task analysis, decomposition, agent
// assignment, and result aggregation across a Team.
package orchestrator

import (
	"strings"

	"github.com/openclaw/core/internal/types"
)

// TaskComplexity is a rough coarse-graining of how much work a task input
// represents, used to decide whether decomposition is worthwhile.
type TaskComplexity string

const (
	ComplexitySimple  TaskComplexity = "simple"
	ComplexityMedium  TaskComplexity = "medium"
	ComplexityComplex TaskComplexity = "complex"
)

// TaskAnalysis is the result of analyzing a TaskRequest: complexity,
// the capabilities it actually needs, the agent type best suited for it,
// and whether it should be decomposed into sub-tasks.
type TaskAnalysis struct {
	TaskType             types.TaskType
	Complexity           TaskComplexity
	RequiredCapabilities []types.Capability
	SuggestedAgentType   types.AgentType
	NeedsDecomposition   bool
	SuggestedTools       []string
	SuggestedAgents      []string
}

// TaskAnalyzer unifies the task-type-based complexity classification with
// richer content/keyword-based capability inference: every task first gets
// a complexity grade from its TaskType and input shape, then its required
// capabilities, suggested agent type, and tool hints are derived from the
// actual input content.
type TaskAnalyzer struct{}

func NewTaskAnalyzer() *TaskAnalyzer { return &TaskAnalyzer{} }

// complexityFromInput grades an input by its size.
func complexityFromInput(input types.TaskInput) TaskComplexity {
	switch input.Kind {
	case types.InputText:
		return textComplexity(input.Text)
	case types.InputCode:
		lines := strings.Count(input.Code, "\n") + 1
		return lineComplexity(lines, 50, 200)
	case types.InputSearchQuery, types.InputToolCall:
		return ComplexitySimple
	case types.InputMessage:
		return ComplexityMedium
	case types.InputData:
		if arr, ok := input.Data["items"].([]any); ok && len(arr) > 100 {
			return ComplexityComplex
		}
		return ComplexityMedium
	case types.InputFile:
		lines := strings.Count(input.FileContent, "\n") + 1
		if lines < 100 {
			return ComplexityMedium
		}
		return ComplexityComplex
	default:
		return ComplexityMedium
	}
}

func textComplexity(content string) TaskComplexity {
	length := len(content)
	words := len(strings.Fields(content))
	switch {
	case length < 100 && words < 20:
		return ComplexitySimple
	case length < 500 && words < 100:
		return ComplexityMedium
	default:
		return ComplexityComplex
	}
}

func lineComplexity(lines, simpleMax, mediumMax int) TaskComplexity {
	switch {
	case lines < simpleMax:
		return ComplexitySimple
	case lines < mediumMax:
		return ComplexityMedium
	default:
		return ComplexityComplex
	}
}

// Analyze classifies complexity by task type (Documentation tasks always
// decompose; Custom task types are always Complex) and then, separately,
// infers required capabilities/suggested agent/tools from the actual input
// content — a richer signal than TaskType alone provides.
func (a *TaskAnalyzer) Analyze(request types.TaskRequest) TaskAnalysis {
	analysis := TaskAnalysis{
		TaskType:             request.TaskType,
		RequiredCapabilities: request.RequiredCapabilities,
	}

	switch request.TaskType {
	case types.TaskConversation, types.TaskQuestionAnswer:
		analysis.Complexity = ComplexitySimple
	case types.TaskCodeGeneration, types.TaskCodeReview, types.TaskWebSearch, types.TaskDataAnalysis:
		analysis.Complexity = ComplexityMedium
	case types.TaskDocumentation:
		analysis.Complexity = ComplexityMedium
		analysis.NeedsDecomposition = true
	default:
		analysis.Complexity = ComplexityComplex
		analysis.NeedsDecomposition = true
	}

	inputComplexity := complexityFromInput(request.Input)
	if inputComplexity == ComplexityComplex {
		analysis.Complexity = ComplexityComplex
	}

	caps, agentType, tools := analyzeContent(request.Input, inputComplexity)
	if len(analysis.RequiredCapabilities) == 0 {
		analysis.RequiredCapabilities = caps
	}
	analysis.SuggestedAgentType = agentType
	analysis.SuggestedTools = tools

	return analysis
}

// analyzeContent inspects the task input's actual text for intent
// keywords, grounded on the richer decision-making heuristic: "write"/
// "create"/"generate" implies code or writing work, "search"/"find"/
// "research" implies the researcher, "analyze"/"data" implies the data
// analyst, "debug"/"fix"/"error" implies code review.
func analyzeContent(input types.TaskInput, complexity TaskComplexity) ([]types.Capability, types.AgentType, []string) {
	text := inputText(input)
	lower := strings.ToLower(text)

	switch {
	case lower == "":
		return []types.Capability{types.CapConversation}, types.AgentConversationalist, nil

	case containsAny(lower, "write", "create", "generate"):
		switch {
		case containsAny(lower, "code", "function", "class"):
			return []types.Capability{types.CapCodeGeneration}, types.AgentCoder, []string{"code_generator"}
		case containsAny(lower, "article", "blog", "post", "document"):
			return []types.Capability{types.CapWriting}, types.AgentWriter, []string{"content_writer"}
		default:
			return []types.Capability{types.CapConversation}, types.AgentConversationalist, nil
		}

	case containsAny(lower, "search", "find", "research"):
		return []types.Capability{types.CapWebSearch}, types.AgentResearcher, []string{"web_search"}

	case containsAny(lower, "analyze", "data", "statistics"):
		return []types.Capability{types.CapDataAnalysis}, types.AgentDataAnalyst, []string{"data_analyzer"}

	case containsAny(lower, "debug", "fix", "error"):
		return []types.Capability{types.CapCodeReview}, types.AgentCoder, []string{"debugger"}

	default:
		if input.Kind == types.InputCode {
			return []types.Capability{types.CapCodeGeneration, types.CapCodeReview}, types.AgentCoder, []string{"code_generator", "code_executor"}
		}
		return []types.Capability{types.CapConversation}, types.AgentConversationalist, nil
	}
}

func inputText(input types.TaskInput) string {
	switch input.Kind {
	case types.InputText:
		return input.Text
	case types.InputCode:
		return input.Code
	case types.InputSearchQuery:
		return input.Query
	case types.InputFile:
		return input.FileContent
	case types.InputMessage:
		if input.Message != nil {
			return input.Message.TextContent()
		}
	}
	return ""
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
