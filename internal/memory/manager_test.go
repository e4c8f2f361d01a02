package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/core/internal/types"
)

func padTokens(text string, tokens int) string {
	for EstimateTokens(text) < tokens {
		text += " filler"
	}
	return text
}

func TestMemoryManager_WorkingOverflowProducesOneShortTermSummary(t *testing.T) {
	cfg := Config{
		Working:   WorkingMemoryConfig{MaxMessages: 3, MaxTokens: 10000},
		ShortTerm: ShortTermMemoryConfig{MaxSummaries: 20, CompressionRatio: 0.3},
		LongTerm:  LongTermMemoryConfig{Enabled: false},
	}
	compressor := NewCompressor(cfg.ShortTerm, nil, nil)
	mgr := NewMemoryManager(cfg, NewDefaultImportanceScorer(), compressor, nil, nil, nil, nil)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		msg := types.UserMessage(padTokens("message", 30))
		require.NoError(t, mgr.Add(ctx, msg))
	}

	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	assert.Equal(t, 3, mgr.working.Len())
	require.Len(t, mgr.shortTerm, 1)
	assert.Equal(t, types.MemoryContentSummary, mgr.shortTerm[0].Content.Kind)
	require.Len(t, mgr.shortTerm[0].Content.SourceIDs, 1)
}

func TestMemoryManager_RetrieveRespectsTokenBudgetNewestFirst(t *testing.T) {
	cfg := DefaultConfig()
	compressor := NewCompressor(cfg.ShortTerm, nil, nil)
	mgr := NewMemoryManager(cfg, NewDefaultImportanceScorer(), compressor, nil, nil, nil, nil)

	items := []int{100, 200, 400}
	for _, tc := range items {
		mgr.mu.Lock()
		mgr.working.items = append(mgr.working.items, types.MemoryItem{
			ID:         "",
			Level:      types.MemoryWorking,
			TokenCount: tc,
			Content:    types.MemoryContent{Kind: types.MemoryContentMessage, Message: &types.Message{Role: types.RoleUser}},
		})
		mgr.mu.Unlock()
	}

	ctx := context.Background()
	result, err := mgr.Retrieve(ctx, "anything", 350)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 200, result.Items[0].TokenCount)
	assert.Equal(t, 100, result.Items[1].TokenCount)
	assert.Equal(t, 300, result.TotalTokens())
}
