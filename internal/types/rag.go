package types

import "time"

// RAGPhase is one state of the bounded Agentic RAG state machine.
type RAGPhase string

const (
	PhaseThink    RAGPhase = "think"
	PhasePlan     RAGPhase = "plan"
	PhaseRetrieve RAGPhase = "retrieve"
	PhaseExecute  RAGPhase = "execute"
	PhaseObserve  RAGPhase = "observe"
	PhaseReflect  RAGPhase = "reflect"
	PhaseAnswer   RAGPhase = "answer"
	PhaseDone     RAGPhase = "done"
)

// SubQuery is one dispatch unit of a RetrievalPlan.
type SubQuery struct {
	Query  string `json:"query"`
	Source string `json:"source"`
}

// RetrievalPlan is the planner's output for one Think->Plan transition.
type RetrievalPlan struct {
	QueryRewrite  string     `json:"query_rewrite"`
	SubQueries    []SubQuery `json:"sub_queries"`
	Sources       []string   `json:"sources"`
	MaxIterations int        `json:"max_iterations"`
}

// RetrievalResult is one hit returned by a source executor.
type RetrievalResult struct {
	ID             string         `json:"id"`
	Content        string         `json:"content"`
	Source         string         `json:"source"`
	RelevanceScore float64        `json:"relevance_score"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Thought is one entry of the loop's thought history, timestamped (a
// supplemented feature beyond the distilled spec's bare text trace).
type Thought struct {
	Phase     RAGPhase  `json:"phase"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Reflection is the reflector's verdict on whether retrieved context is
// sufficient to answer.
type Reflection struct {
	IsSufficient bool     `json:"is_sufficient"`
	Confidence   float64  `json:"confidence"`
	MissingInfo  []string `json:"missing_info,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// RAGLoopState is the mutable state threaded through the bounded loop.
//
// Invariant: Iteration is monotonically increasing and never exceeds
// MaxIterations before the loop transitions to Answer.
type RAGLoopState struct {
	Iteration            int               `json:"iteration"`
	MaxIterations         int               `json:"max_iterations"`
	Plan                  *RetrievalPlan    `json:"plan,omitempty"`
	Retrieved             []RetrievalResult `json:"retrieved,omitempty"`
	ThoughtHistory        []Thought         `json:"thought_history,omitempty"`
	CurrentSubQueryIndex  *int              `json:"current_sub_query_index,omitempty"`
	RetrievedContext      []RetrievalResult `json:"retrieved_context,omitempty"`
}

func NewRAGLoopState(maxIterations int) *RAGLoopState {
	return &RAGLoopState{MaxIterations: maxIterations}
}

func (s *RAGLoopState) AddThought(phase RAGPhase, text string) {
	s.ThoughtHistory = append(s.ThoughtHistory, Thought{Phase: phase, Text: text, Timestamp: time.Now().UTC()})
}

// RAGResponse is the final output of a completed loop run.
type RAGResponse struct {
	Answer     string            `json:"answer"`
	Sources    []RetrievalResult `json:"sources"`
	Iterations int               `json:"iterations"`
	Confidence float64           `json:"confidence"`
	Trace      []Thought         `json:"trace"`
}
