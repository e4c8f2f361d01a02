package memory

import (
	"github.com/openclaw/core/internal/types"
)

// WorkingMemory is the ordered, in-memory front tier. Callers own
// synchronization (MemoryManager guards it with a single RWMutex per the
// concurrency model in §5); WorkingMemory itself is not safe for
// concurrent use.
type WorkingMemory struct {
	cfg   WorkingMemoryConfig
	items []types.MemoryItem
}

func NewWorkingMemory(cfg WorkingMemoryConfig) *WorkingMemory {
	return &WorkingMemory{cfg: cfg}
}

func (w *WorkingMemory) totalTokens() int {
	total := 0
	for _, it := range w.items {
		total += it.TokenCount
	}
	return total
}

// Add appends item and, if either bound is now exceeded, drains the oldest
// contiguous prefix that brings both bounds back under limit. The drained
// prefix (the "overflow set") is returned for the caller to compress; nil
// means nothing overflowed.
func (w *WorkingMemory) Add(item types.MemoryItem) []types.MemoryItem {
	w.items = append(w.items, item)

	if len(w.items) <= w.cfg.MaxMessages && w.totalTokens() <= w.cfg.MaxTokens {
		return nil
	}

	var overflow []types.MemoryItem
	for len(w.items) > w.cfg.MaxMessages || w.totalTokens() > w.cfg.MaxTokens {
		if len(w.items) == 0 {
			break
		}
		overflow = append(overflow, w.items[0])
		w.items = w.items[1:]
	}
	return overflow
}

func (w *WorkingMemory) GetAll() []types.MemoryItem {
	out := make([]types.MemoryItem, len(w.items))
	copy(out, w.items)
	return out
}

func (w *WorkingMemory) Len() int { return len(w.items) }

func (w *WorkingMemory) TotalTokens() int { return w.totalTokens() }

func (w *WorkingMemory) Clear() { w.items = nil }

// ToMessages projects working items back into plain Messages, skipping any
// non-message content (summaries/vector refs never live in Working).
func (w *WorkingMemory) ToMessages() []types.Message {
	var out []types.Message
	for _, it := range w.items {
		if it.Content.Kind == types.MemoryContentMessage && it.Content.Message != nil {
			out = append(out, *it.Content.Message)
		}
	}
	return out
}
