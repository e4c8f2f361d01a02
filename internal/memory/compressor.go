package memory

import (
	"context"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/types"
)

// EstimateTokens approximates token count from character length, matching
// the rough heuristic used across the runtime wherever a real tokenizer
// isn't wired in (~4 chars/token for English prose).
func EstimateTokens(s string) int {
	n := len(s) / 4
	if n == 0 && s != "" {
		n = 1
	}
	return n
}

// Summarizer optionally compresses text via an LLM. When nil, the
// compressor always uses the concatenation-with-truncation fallback.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxTokens int) (string, error)
}

// Compressor turns an overflow set of working-memory items into a single
// Summary MemoryItem.
type Compressor struct {
	cfg        ShortTermMemoryConfig
	summarizer Summarizer
	log        logrus.FieldLogger
}

func NewCompressor(cfg ShortTermMemoryConfig, summarizer Summarizer, log logrus.FieldLogger) *Compressor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Compressor{cfg: cfg, summarizer: summarizer, log: log}
}

var properNounPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]{2,}\b`)
var numericFactPattern = regexp.MustCompile(`\b\d+[\d.,]*\b`)

// extractSalientFacts pulls proper nouns and numeric facts out of text so
// the fallback summary still preserves them even under truncation.
func extractSalientFacts(text string) []string {
	seen := make(map[string]bool)
	var facts []string
	for _, m := range properNounPattern.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			facts = append(facts, m)
		}
	}
	for _, m := range numericFactPattern.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			facts = append(facts, m)
		}
	}
	return facts
}

func lastUserIntent(items []types.MemoryItem) string {
	for i := len(items) - 1; i >= 0; i-- {
		msg := items[i].Content.Message
		if msg != nil && msg.Role == types.RoleUser {
			return msg.TextContent()
		}
	}
	return ""
}

// Compress builds a Summary MemoryItem from an ordered, message-bearing
// overflow set with total token count T. The result's TokenCount is at
// most ceil(T*ratio). Compression may call an LLM via the configured
// Summarizer; failures fall back to concatenation-with-truncation so the
// cascade never stalls.
func (c *Compressor) Compress(ctx context.Context, overflow []types.MemoryItem) (types.MemoryItem, error) {
	var sourceIDs []string
	var fullText strings.Builder
	totalTokens := 0
	for _, item := range overflow {
		sourceIDs = append(sourceIDs, item.ID)
		totalTokens += item.TokenCount
		if item.Content.Message != nil {
			fullText.WriteString(string(item.Content.Message.Role))
			fullText.WriteString(": ")
			fullText.WriteString(item.Content.Message.TextContent())
			fullText.WriteString("\n")
		}
	}

	ratio := c.cfg.CompressionRatio
	if ratio <= 0 {
		ratio = 0.3
	}
	budget := ceilRatio(totalTokens, ratio)
	if budget < 1 {
		budget = 1
	}

	var summaryText string
	if c.summarizer != nil {
		text, err := c.summarizer.Summarize(ctx, fullText.String(), budget)
		if err != nil {
			c.log.WithError(err).Warn("memory compressor: llm summarize failed, falling back to truncation")
			summaryText = c.fallbackSummary(fullText.String(), overflow, budget)
		} else {
			summaryText = text
		}
	} else {
		summaryText = c.fallbackSummary(fullText.String(), overflow, budget)
	}

	tokenCount := EstimateTokens(summaryText)
	if tokenCount > budget {
		tokenCount = budget
	}

	return types.MemoryItem{
		ID:    newSummaryID(),
		Level: types.MemoryShortTerm,
		Content: types.MemoryContent{
			Kind:        types.MemoryContentSummary,
			SummaryText: summaryText,
			SourceIDs:   sourceIDs,
		},
		CreatedAt:       nowUTC(),
		LastAccessed:    nowUTC(),
		ImportanceScore: maxImportance(overflow),
		TokenCount:      tokenCount,
	}, nil
}

// fallbackSummary concatenates extracted salient facts and the most recent
// user intent, truncated to fit budget*4 characters (the inverse of
// EstimateTokens).
func (c *Compressor) fallbackSummary(fullText string, overflow []types.MemoryItem, budget int) string {
	facts := extractSalientFacts(fullText)
	intent := lastUserIntent(overflow)

	var b strings.Builder
	if len(facts) > 0 {
		b.WriteString("facts: ")
		b.WriteString(strings.Join(facts, ", "))
	}
	if intent != "" {
		if b.Len() > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("latest intent: ")
		b.WriteString(intent)
	}
	summary := b.String()
	if summary == "" {
		summary = fullText
	}

	maxChars := budget * 4
	if maxChars > 0 && len(summary) > maxChars {
		summary = summary[:maxChars]
	}
	return summary
}

func ceilRatio(total int, ratio float64) int {
	v := float64(total) * ratio
	n := int(v)
	if float64(n) < v {
		n++
	}
	return n
}

func maxImportance(items []types.MemoryItem) float64 {
	max := 0.0
	for _, it := range items {
		if it.ImportanceScore > max {
			max = it.ImportanceScore
		}
	}
	return max
}
