package types

import (
	"time"

	"github.com/google/uuid"
)

// MemoryLevel is the tier a MemoryItem currently resides in.
type MemoryLevel string

const (
	MemoryWorking   MemoryLevel = "working"
	MemoryShortTerm MemoryLevel = "short_term"
	MemoryLongTerm  MemoryLevel = "long_term"
)

// MemoryContentKind tags the variant carried by MemoryItem.Content.
type MemoryContentKind string

const (
	MemoryContentMessage  MemoryContentKind = "message"
	MemoryContentSummary  MemoryContentKind = "summary"
	MemoryContentVectorRef MemoryContentKind = "vector_ref"
)

// MemoryContent is a sum type: exactly one of Message/Summary/VectorRef
// fields is meaningful, selected by Kind.
type MemoryContent struct {
	Kind MemoryContentKind `json:"kind"`

	Message *Message `json:"message,omitempty"`

	SummaryText string   `json:"summary_text,omitempty"`
	SourceIDs   []string `json:"source_ids,omitempty"`

	VectorID string `json:"vector_id,omitempty"`
	Preview  string `json:"preview,omitempty"`
}

// MemoryItem is the unit of storage across all three memory tiers.
//
// Invariant: TokenCount is the canonical size used for every budget
// decision; it is set once at creation time and never recomputed lazily.
type MemoryItem struct {
	ID              string            `json:"id"`
	Level           MemoryLevel       `json:"level"`
	Content         MemoryContent     `json:"content"`
	CreatedAt       time.Time         `json:"created_at"`
	LastAccessed    time.Time         `json:"last_accessed"`
	AccessCount     int               `json:"access_count"`
	ImportanceScore float64           `json:"importance_score"`
	TokenCount      int               `json:"token_count"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewMessageMemoryItem wraps a Message as a Working-tier MemoryItem. The
// caller supplies tokenCount and importance since both depend on policy
// (tokenizer, scorer) that lives outside the data model.
func NewMessageMemoryItem(msg Message, importance float64, tokenCount int) MemoryItem {
	now := time.Now().UTC()
	return MemoryItem{
		ID:              uuid.New().String(),
		Level:           MemoryWorking,
		Content:         MemoryContent{Kind: MemoryContentMessage, Message: &msg},
		CreatedAt:       now,
		LastAccessed:    now,
		AccessCount:     0,
		ImportanceScore: importance,
		TokenCount:      tokenCount,
	}
}

// MemoryRetrieval is the ordered result of MemoryManager.Retrieve: working
// items first, then short-term, then long-term, preserving the order
// prompts are assembled in.
type MemoryRetrieval struct {
	Items []MemoryItem `json:"items"`
}

func (r *MemoryRetrieval) Add(item MemoryItem) {
	r.Items = append(r.Items, item)
}

func (r *MemoryRetrieval) TotalTokens() int {
	total := 0
	for _, it := range r.Items {
		total += it.TokenCount
	}
	return total
}
