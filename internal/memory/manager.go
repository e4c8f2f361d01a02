package memory

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/search"
	"github.com/openclaw/core/internal/types"
	"github.com/openclaw/core/internal/vectorstore"
)

// MemoryStats summarizes the three tiers for observability.
type MemoryStats struct {
	WorkingCount    int
	WorkingTokens   int
	ShortTermCount  int
	LongTermEnabled bool
	LongTermVectors int64
}

// MemoryManager owns the full Working -> ShortTerm -> LongTerm cascade: a
// single RWMutex guards Working and ShortTerm since both are mutated on
// every Add; LongTerm (a vectorstore.Store) has its own internal
// synchronization and is touched only via archive/retrieve.
type MemoryManager struct {
	mu sync.RWMutex

	cfg        Config
	working    *WorkingMemory
	shortTerm  []types.MemoryItem
	scorer     ImportanceScorer
	compressor *Compressor

	longTerm vectorstore.Store
	hybrid   *search.HybridSearchManager
	embedder search.Embedder

	log logrus.FieldLogger
}

func NewMemoryManager(cfg Config, scorer ImportanceScorer, compressor *Compressor, longTerm vectorstore.Store, hybrid *search.HybridSearchManager, embedder search.Embedder, log logrus.FieldLogger) *MemoryManager {
	if scorer == nil {
		scorer = NewDefaultImportanceScorer()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MemoryManager{
		cfg:        cfg,
		working:    NewWorkingMemory(cfg.Working),
		scorer:     scorer,
		compressor: compressor,
		longTerm:   longTerm,
		hybrid:     hybrid,
		embedder:   embedder,
		log:        log,
	}
}

// Add scores msg, admits it into Working, and — on overflow — compresses
// the evicted prefix into a Summary appended to ShortTerm. When ShortTerm
// itself overflows MaxSummaries, the oldest summary is popped and archived
// to LongTerm asynchronously (archival failures are logged, never
// propagated: the cascade must never stall on a slow or down backend).
func (m *MemoryManager) Add(ctx context.Context, msg types.Message) error {
	importance := m.scorer.Score(msg)
	tokenCount := EstimateTokens(msg.TextContent())
	item := types.NewMessageMemoryItem(msg, importance, tokenCount)

	m.mu.Lock()
	overflow := m.working.Add(item)
	var popped *types.MemoryItem
	if len(overflow) > 0 {
		summary, err := m.compressor.Compress(ctx, overflow)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		m.shortTerm = append(m.shortTerm, summary)
		if m.cfg.ShortTerm.MaxSummaries > 0 && len(m.shortTerm) > m.cfg.ShortTerm.MaxSummaries {
			p := m.shortTerm[0]
			m.shortTerm = m.shortTerm[1:]
			popped = &p
		}
	}
	m.mu.Unlock()

	if popped != nil && m.cfg.LongTerm.Enabled && m.longTerm != nil {
		go m.archive(context.Background(), *popped)
	}
	return nil
}

// Retrieve walks Working newest-first, then ShortTerm newest-first, then
// (if enabled) LongTerm via hybrid search, stopping once maxTokens is
// reached. A LongTerm search failure degrades gracefully: it is logged and
// the call still returns whatever Working/ShortTerm already contributed.
func (m *MemoryManager) Retrieve(ctx context.Context, query string, maxTokens int) (types.MemoryRetrieval, error) {
	m.mu.RLock()
	working := m.working.GetAll()
	shortTerm := append([]types.MemoryItem(nil), m.shortTerm...)
	m.mu.RUnlock()

	var out types.MemoryRetrieval
	budget := maxTokens

	for i := len(working) - 1; i >= 0 && budget > 0; i-- {
		item := working[i]
		if item.TokenCount > budget {
			continue
		}
		out.Add(item)
		budget -= item.TokenCount
	}

	for i := len(shortTerm) - 1; i >= 0 && budget > 0; i-- {
		item := shortTerm[i]
		if item.TokenCount > budget {
			continue
		}
		out.Add(item)
		budget -= item.TokenCount
	}

	if budget > 0 && m.cfg.LongTerm.Enabled && m.hybrid != nil {
		cfg := search.DefaultHybridSearchConfig()
		results, err := m.hybrid.Search(ctx, query, cfg)
		if err != nil {
			m.log.WithError(err).Warn("memory manager: long-term retrieval failed, returning working/short-term only")
			return out, nil
		}
		for _, r := range results {
			tokenCount := EstimateTokens(r.Content)
			if tokenCount > budget {
				continue
			}
			out.Add(types.MemoryItem{
				ID:    r.ID,
				Level: types.MemoryLongTerm,
				Content: types.MemoryContent{
					Kind:    types.MemoryContentVectorRef,
					Preview: r.Content,
				},
				ImportanceScore: r.Score,
				TokenCount:      tokenCount,
			})
			budget -= tokenCount
			if budget <= 0 {
				break
			}
		}
	}

	return out, nil
}

func (m *MemoryManager) Stats(ctx context.Context) MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := MemoryStats{
		WorkingCount:    m.working.Len(),
		WorkingTokens:   m.working.TotalTokens(),
		ShortTermCount:  len(m.shortTerm),
		LongTermEnabled: m.cfg.LongTerm.Enabled,
	}
	if m.cfg.LongTerm.Enabled && m.longTerm != nil {
		if s, err := m.longTerm.Stats(ctx); err == nil {
			stats.LongTermVectors = s.TotalVectors
		}
	}
	return stats
}

func (m *MemoryManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.working.Clear()
	m.shortTerm = nil
	m.mu.Unlock()

	if m.cfg.LongTerm.Enabled && m.longTerm != nil {
		return m.longTerm.Clear(ctx)
	}
	return nil
}
