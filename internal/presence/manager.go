package presence

import (
	"context"
	"sync"
	"time"
)

// Manager is the entity presence cache: current status per entity plus
// the monotonic timestamp of its last update, used to age status into
// Away/Offline. It owns a Publisher and emits events for every state
// transition it causes — Joined/StatusChanged/Heartbeat/Left — so
// subscribers (e.g. a presence WebSocket/SSE handler) observe every
// change the cache itself makes, not just ones a caller happens to
// publish by hand.
type Manager struct {
	mu sync.RWMutex

	cfg         Config
	presences   map[string]Presence
	lastUpdates map[string]time.Time

	publisher *Publisher
	cache     Cache
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:         cfg,
		presences:   make(map[string]Presence),
		lastUpdates: make(map[string]time.Time),
		publisher:   NewPublisher(),
	}
}

// Events exposes the manager's publisher so callers can subscribe to its
// presence events.
func (m *Manager) Events() *Publisher {
	return m.publisher
}

// SetCache attaches an optional write-through backing store; nil (the
// default) keeps the manager purely in-memory.
func (m *Manager) SetCache(c Cache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = c
}

func (m *Manager) SetConfig(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// SetStatus writes an explicit status for id, emitting Joined on first
// sight of the entity or StatusChanged when the status actually moves.
func (m *Manager) SetStatus(id string, entityType EntityType, status Status, statusMessage string) {
	m.setStatus(id, entityType, status, statusMessage, true)
}

// setStatus stores status for id; touch controls whether the entity's
// last-update instant is refreshed.
func (m *Manager) setStatus(id string, entityType EntityType, status Status, statusMessage string, touch bool) {
	now := time.Now()

	m.mu.Lock()
	prev, existed := m.presences[id]
	current := Presence{
		ID:            id,
		EntityType:    entityType,
		Status:        status,
		LastActive:    now,
		StatusMessage: statusMessage,
		CanReceive:    true,
	}
	m.presences[id] = current
	if touch {
		m.lastUpdates[id] = now
	}
	cache := m.cache
	m.mu.Unlock()

	if cache != nil {
		_ = cache.Save(context.Background(), current)
	}

	if !existed {
		m.publisher.Publish(Event{Kind: EventJoined, ID: id, EntityType: entityType})
		m.publisher.Publish(Event{Kind: EventStatusChanged, ID: id, EntityType: entityType, OldStatus: StatusUnknown, NewStatus: status})
		return
	}
	if prev.Status != status {
		m.publisher.Publish(Event{Kind: EventStatusChanged, ID: id, EntityType: entityType, OldStatus: prev.Status, NewStatus: status})
	}
}

// UpdateOnline recomputes status from the age of the entity's last
// update: younger than OnlineTimeout is Online, younger than AwayTimeout
// is Away, otherwise Offline. The last-update instant itself is left as it
// was, so repeated calls keep aging the entity. An entity never seen
// before is set Online.
func (m *Manager) UpdateOnline(id string, entityType EntityType) {
	cfg := m.GetConfig()

	m.mu.RLock()
	lastUpdate, ok := m.lastUpdates[id]
	m.mu.RUnlock()

	if !ok {
		m.SetStatus(id, entityType, StatusOnline, "")
		return
	}

	elapsed := time.Since(lastUpdate)
	var status Status
	switch {
	case elapsed < cfg.OnlineTimeout:
		status = StatusOnline
	case elapsed < cfg.AwayTimeout:
		status = StatusAway
	default:
		status = StatusOffline
	}
	m.setStatus(id, entityType, status, "", false)
}

func (m *Manager) GetStatus(id string) (Presence, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.presences[id]
	return p, ok
}

func (m *Manager) GetAllPresences() []Presence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Presence, 0, len(m.presences))
	for _, p := range m.presences {
		out = append(out, p)
	}
	return out
}

func (m *Manager) GetByType(entityType EntityType) []Presence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Presence
	for _, p := range m.presences {
		if p.EntityType == entityType {
			out = append(out, p)
		}
	}
	return out
}

func (m *Manager) GetOnlineAgents() []Presence {
	return filterOnline(m.GetByType(EntityAgent))
}

func (m *Manager) GetOnlineChannels() []Presence {
	return filterOnline(m.GetByType(EntityChannel))
}

func filterOnline(presences []Presence) []Presence {
	var out []Presence
	for _, p := range presences {
		if p.Status == StatusOnline {
			out = append(out, p)
		}
	}
	return out
}

// Remove drops id from the cache entirely and emits Left.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	p, ok := m.presences[id]
	delete(m.presences, id)
	delete(m.lastUpdates, id)
	cache := m.cache
	m.mu.Unlock()

	if ok {
		if cache != nil {
			_ = cache.Delete(context.Background(), id)
		}
		m.publisher.Publish(Event{Kind: EventLeft, ID: id, EntityType: p.EntityType})
	}
}

// CleanupOffline sweeps every entity whose last update is older than
// AwayTimeout and marks it Offline, emitting StatusChanged for each one
// actually transitioned.
func (m *Manager) CleanupOffline() {
	cfg := m.GetConfig()
	now := time.Now()

	type transition struct {
		id         string
		entityType EntityType
		oldStatus  Status
	}
	var transitions []transition

	m.mu.Lock()
	for id, lastUpdate := range m.lastUpdates {
		if now.Sub(lastUpdate) <= cfg.AwayTimeout {
			continue
		}
		p, ok := m.presences[id]
		if !ok || p.Status == StatusOffline {
			continue
		}
		transitions = append(transitions, transition{id: id, entityType: p.EntityType, oldStatus: p.Status})
		p.Status = StatusOffline
		m.presences[id] = p
	}
	m.mu.Unlock()

	for _, t := range transitions {
		m.publisher.Publish(Event{Kind: EventStatusChanged, ID: t.id, EntityType: t.entityType, OldStatus: t.oldStatus, NewStatus: StatusOffline})
	}
}

// Heartbeat refreshes id's last-update instant and, for an entity that
// already has a presence entry, forces it Online, emitting Heartbeat and
// also StatusChanged if it was not already Online. For an id with no
// presence entry only the instant is recorded and no event is emitted.
func (m *Manager) Heartbeat(id string) {
	now := time.Now()

	m.mu.Lock()
	m.lastUpdates[id] = now
	p, ok := m.presences[id]
	var oldStatus Status
	var entityType EntityType
	if ok {
		oldStatus = p.Status
		entityType = p.EntityType
		p.Status = StatusOnline
		p.LastActive = now
		m.presences[id] = p
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	m.publisher.Publish(Event{Kind: EventHeartbeat, ID: id})
	if oldStatus != StatusOnline {
		m.publisher.Publish(Event{Kind: EventStatusChanged, ID: id, EntityType: entityType, OldStatus: oldStatus, NewStatus: StatusOnline})
	}
}

func (m *Manager) BatchHeartbeat(ids []string) {
	for _, id := range ids {
		m.Heartbeat(id)
	}
}
