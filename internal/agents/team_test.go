package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/core/internal/types"
)

func busyAgent(id string, priority, maxConcurrent, currentTasks int, caps ...types.Capability) *BaseAgent {
	a := NewBaseAgent(types.AgentDescriptor{
		ID:                 id,
		Name:               id,
		Capabilities:       caps,
		Priority:           priority,
		MaxConcurrentTasks: maxConcurrent,
		Enabled:            true,
	})
	a.currentTasks = currentTasks
	return a
}

func TestTeam_SmartRouting_PrefersLowerLoadOverHigherPriority(t *testing.T) {
	// Agent A: priority 50, load 0.8 (4/5) -> score 50*1 + 30*0.5 + 20*0.2 = 50+15+4 = 69
	// Agent B: priority 40, load 0.0 (0/5) -> score 50*1 + 30*0.4 + 20*1.0 = 50+12+20 = 82
	a := busyAgent("a", 50, 5, 4, types.CapConversation)
	b := busyAgent("b", 40, 5, 0, types.CapConversation)

	team := NewTeam(DefaultTeamConfig("t", "Test Team"))
	team.AddAgent(a)
	team.AddAgent(b)

	selected, ok := team.SelectAgent([]types.Capability{types.CapConversation}, "")
	require.True(t, ok)
	assert.Equal(t, "b", selected)
}

func TestTeam_CapabilityMatch_RequiresAllCapabilities(t *testing.T) {
	a := busyAgent("a", 50, 5, 0, types.CapCodeGeneration)
	b := busyAgent("b", 50, 5, 0, types.CapCodeGeneration, types.CapCodeReview)

	cfg := DefaultTeamConfig("t", "Test Team")
	cfg.RoutingStrategy = RoutingCapabilityMatch
	team := NewTeam(cfg)
	team.AddAgent(a)
	team.AddAgent(b)

	selected, ok := team.SelectAgent([]types.Capability{types.CapCodeGeneration, types.CapCodeReview}, "")
	require.True(t, ok)
	assert.Equal(t, "b", selected)
}

func TestTeam_PreferredAgent_WinsWhenAvailableAndCapable(t *testing.T) {
	a := busyAgent("a", 90, 5, 0, types.CapConversation)
	b := busyAgent("b", 10, 5, 0, types.CapConversation)

	team := NewTeam(DefaultTeamConfig("t", "Test Team"))
	team.AddAgent(a)
	team.AddAgent(b)

	selected, ok := team.SelectAgent([]types.Capability{types.CapConversation}, "b")
	require.True(t, ok)
	assert.Equal(t, "b", selected)
}

func TestTeam_SelectAgent_NoneAvailableReturnsFalse(t *testing.T) {
	team := NewTeam(DefaultTeamConfig("t", "Test Team"))
	_, ok := team.SelectAgent([]types.Capability{types.CapConversation}, "")
	assert.False(t, ok)
}

func TestBaseAgent_IsAvailable_FalseWhenAtCapacity(t *testing.T) {
	a := busyAgent("a", 50, 2, 2, types.CapConversation)
	assert.False(t, a.IsAvailable())
}
