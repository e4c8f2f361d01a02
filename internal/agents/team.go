package agents

import (
	"sync"

	"github.com/openclaw/core/internal/types"
)

// RoutingStrategy selects how Team.SelectAgent picks among available
// agents for a task.
type RoutingStrategy string

const (
	RoutingCapabilityMatch RoutingStrategy = "capability_match"
	RoutingLoadBalance     RoutingStrategy = "load_balance"
	RoutingPriority        RoutingStrategy = "priority"
	RoutingRoundRobin      RoutingStrategy = "round_robin"
	RoutingSmart           RoutingStrategy = "smart"
	RoutingManual          RoutingStrategy = "manual"
)

// TeamConfig names a team and its default routing strategy.
type TeamConfig struct {
	ID               string
	Name             string
	Description      string
	RoutingStrategy  RoutingStrategy
}

func DefaultTeamConfig(id, name string) TeamConfig {
	return TeamConfig{ID: id, Name: name, RoutingStrategy: RoutingSmart}
}

// Team holds a named set of agents and routes tasks to them according to
// its configured RoutingStrategy.
type Team struct {
	mu sync.RWMutex

	config            TeamConfig
	agents            map[string]Agent
	roundRobinCounter int
}

func NewTeam(config TeamConfig) *Team {
	return &Team{config: config, agents: make(map[string]Agent)}
}

func (t *Team) Config() TeamConfig { return t.config }

func (t *Team) AgentIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.agents))
	for id := range t.agents {
		ids = append(ids, id)
	}
	return ids
}

func (t *Team) GetAgent(id string) (Agent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.agents[id]
	return a, ok
}

func (t *Team) AddAgent(a Agent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.agents[a.ID()] = a
}

func (t *Team) RemoveAgent(id string) (Agent, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.agents[id]
	if ok {
		delete(t.agents, id)
	}
	return a, ok
}

func availableCandidates(agents map[string]Agent, required []types.Capability) []Agent {
	var out []Agent
	for _, a := range agents {
		if !a.IsAvailable() {
			continue
		}
		matches := true
		for _, c := range required {
			if !a.HasCapability(c) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, a)
		}
	}
	return out
}

// SelectAgent picks one agent ID to run a task. preferredAgent, if set and
// available and capable, always wins regardless of routing strategy.
func (t *Team) SelectAgent(requiredCapabilities []types.Capability, preferredAgent string) (string, bool) {
	if preferredAgent != "" {
		if a, ok := t.GetAgent(preferredAgent); ok && a.IsAvailable() {
			ok := true
			for _, c := range requiredCapabilities {
				if !a.HasCapability(c) {
					ok = false
					break
				}
			}
			if ok {
				return preferredAgent, true
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.config.RoutingStrategy {
	case RoutingCapabilityMatch:
		return t.selectByCapability(requiredCapabilities)
	case RoutingLoadBalance:
		return t.selectByLoad(requiredCapabilities)
	case RoutingPriority:
		return t.selectByPriority(requiredCapabilities)
	case RoutingRoundRobin:
		return t.selectByRoundRobin(requiredCapabilities)
	default: // Smart, Manual
		return t.selectSmart(requiredCapabilities)
	}
}

func (t *Team) selectByCapability(required []types.Capability) (string, bool) {
	candidates := availableCandidates(t.agents, required)
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	bestCount := matchCount(best, required)
	for _, a := range candidates[1:] {
		if c := matchCount(a, required); c > bestCount {
			best, bestCount = a, c
		}
	}
	return best.ID(), true
}

func matchCount(a Agent, required []types.Capability) int {
	n := 0
	for _, c := range required {
		if a.HasCapability(c) {
			n++
		}
	}
	return n
}

func (t *Team) selectByLoad(required []types.Capability) (string, bool) {
	candidates := availableCandidates(t.agents, required)
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	for _, a := range candidates[1:] {
		if a.Load() < best.Load() {
			best = a
		}
	}
	return best.ID(), true
}

func (t *Team) selectByPriority(required []types.Capability) (string, bool) {
	candidates := availableCandidates(t.agents, required)
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	for _, a := range candidates[1:] {
		if a.Info().Priority > best.Info().Priority {
			best = a
		}
	}
	return best.ID(), true
}

func (t *Team) selectByRoundRobin(required []types.Capability) (string, bool) {
	candidates := availableCandidates(t.agents, required)
	if len(candidates) == 0 {
		return "", false
	}
	t.roundRobinCounter = (t.roundRobinCounter + 1) % len(candidates)
	return candidates[t.roundRobinCounter].ID(), true
}

// selectSmart combines capability coverage (0-50), priority (0-30), and
// inverse load (0-20) into a single score and picks the highest.
func (t *Team) selectSmart(required []types.Capability) (string, bool) {
	candidates := availableCandidates(t.agents, required)
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	bestScore := agentScore(best, required)
	for _, a := range candidates[1:] {
		if s := agentScore(a, required); s > bestScore {
			best, bestScore = a, s
		}
	}
	return best.ID(), true
}

func agentScore(a Agent, required []types.Capability) float64 {
	capacityBase := len(required)
	if capacityBase == 0 {
		capacityBase = 1
	}
	capabilityScore := float64(matchCount(a, required)) / float64(capacityBase) * 50.0
	priorityScore := float64(a.Info().Priority) / 100.0 * 30.0
	loadScore := (1.0 - a.Load()) * 20.0
	return capabilityScore + priorityScore + loadScore
}
