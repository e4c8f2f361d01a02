package rag

import (
	"encoding/json"
	"strings"

	"github.com/openclaw/core/internal/types"
)

type rawReflection struct {
	IsSufficient bool     `json:"is_sufficient"`
	Confidence   float64  `json:"confidence"`
	MissingInfo  []string `json:"missing_info"`
	Suggestions  []string `json:"suggestions"`
}

// parseReflectionJSON extracts a Reflection from an LLM's (possibly
// fenced) JSON reply. On malformed JSON it returns an insufficient
// reflection rather than erroring, matching the fallback posture the rest
// of the loop relies on.
func parseReflectionJSON(response string, cfg ReflectorConfig) types.Reflection {
	trimmed := strings.TrimSpace(response)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var raw rawReflection
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return types.Reflection{
			IsSufficient: false,
			Confidence:   0,
			MissingInfo:  []string{"failed to parse reflection"},
		}
	}

	return types.Reflection{
		IsSufficient: raw.IsSufficient && raw.Confidence >= cfg.MinConfidence,
		Confidence:   raw.Confidence,
		MissingInfo:  raw.MissingInfo,
		Suggestions:  raw.Suggestions,
	}
}
