package memory

import (
	"math"
	"strings"

	"github.com/openclaw/core/internal/types"
)

// ImportanceScorer assigns each incoming message a score in [0,1] used to
// bias retention decisions. The default implementation is pure and
// deterministic given the message: callers needing an LLM-assisted scorer
// implement the same Score method.
type ImportanceScorer interface {
	Score(msg types.Message) float64
}

// DefaultImportanceScorer combines length (log-scaled), configurable
// keyword matches, role weighting, and presence of structured payload.
type DefaultImportanceScorer struct {
	Keywords    []string
	RoleWeights map[types.Role]float64
}

func NewDefaultImportanceScorer() *DefaultImportanceScorer {
	return &DefaultImportanceScorer{
		Keywords: []string{"important", "remember", "decision", "deadline", "must", "critical"},
		RoleWeights: map[types.Role]float64{
			types.RoleSystem:    1.0,
			types.RoleTool:      0.9,
			types.RoleAssistant: 0.6,
			types.RoleUser:      0.5,
		},
	}
}

func (s *DefaultImportanceScorer) Score(msg types.Message) float64 {
	text := msg.TextContent()

	// Length component: log-scaled so a 4000-char message doesn't dwarf a
	// 40-char one linearly.
	lengthScore := math.Log1p(float64(len(text))) / math.Log1p(2000)
	if lengthScore > 1 {
		lengthScore = 1
	}

	keywordScore := 0.0
	if len(s.Keywords) > 0 {
		lower := strings.ToLower(text)
		hits := 0
		for _, kw := range s.Keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		keywordScore = math.Min(1.0, float64(hits)/float64(len(s.Keywords))*2)
	}

	roleScore := s.RoleWeights[msg.Role]

	structuredScore := 0.0
	for _, c := range msg.Content {
		if c.Kind == types.ContentData || c.Kind == types.ContentToolCall || c.Kind == types.ContentToolResult {
			structuredScore = 0.3
			break
		}
	}

	score := 0.3*lengthScore + 0.3*keywordScore + 0.3*roleScore + structuredScore
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
