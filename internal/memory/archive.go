package memory

import (
	"context"

	"github.com/openclaw/core/internal/types"
)

// archive embeds a popped ShortTerm summary and upserts it into the
// LongTerm vector store. Called as a fire-and-forget goroutine from Add;
// failures are logged by the caller's logger and never surface to the
// caller of Add, since archival lagging behind the cascade must never
// block new messages from being admitted.
func (m *MemoryManager) archive(ctx context.Context, summary types.MemoryItem) {
	if m.embedder == nil {
		m.log.Warn("memory manager: archive skipped, no embedder configured")
		return
	}

	vec, err := m.embedder.Embed(ctx, summary.Content.SummaryText)
	if err != nil {
		m.log.WithError(err).WithField("summary_id", summary.ID).Warn("memory manager: archive embed failed")
		return
	}

	item := types.NewVectorItem(summary.ID, vec, map[string]any{
		"content":    summary.Content.SummaryText,
		"level":      string(types.MemoryShortTerm),
		"importance": summary.ImportanceScore,
		"created_at": summary.CreatedAt,
	})

	if err := m.longTerm.Upsert(ctx, item); err != nil {
		m.log.WithError(err).WithField("summary_id", summary.ID).Warn("memory manager: archive upsert failed")
	}
}
