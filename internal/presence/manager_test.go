package presence

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SetAndGetStatus(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "Ready")

	p, ok := mgr.GetStatus("agent-1")
	require.True(t, ok)
	assert.Equal(t, StatusOnline, p.Status)
	assert.Equal(t, "Ready", p.StatusMessage)
}

func TestManager_Heartbeat(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "")
	mgr.Heartbeat("agent-1")

	p, ok := mgr.GetStatus("agent-1")
	require.True(t, ok)
	assert.Equal(t, StatusOnline, p.Status)
}

func TestManager_GetOnlineAgents(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "")
	mgr.SetStatus("agent-2", EntityAgent, StatusAway, "")
	mgr.SetStatus("channel-1", EntityChannel, StatusOnline, "")

	online := mgr.GetOnlineAgents()
	assert.Len(t, online, 1)
	assert.Equal(t, "agent-1", online[0].ID)
}

func TestManager_UpdateOnline_ClassifiesByAge(t *testing.T) {
	mgr := NewManager(Config{OnlineTimeout: 50 * time.Millisecond, AwayTimeout: 150 * time.Millisecond})
	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "")

	time.Sleep(80 * time.Millisecond)
	mgr.UpdateOnline("agent-1", EntityAgent)
	p, _ := mgr.GetStatus("agent-1")
	assert.Equal(t, StatusAway, p.Status)

	time.Sleep(100 * time.Millisecond)
	mgr.UpdateOnline("agent-1", EntityAgent)
	p, _ = mgr.GetStatus("agent-1")
	assert.Equal(t, StatusOffline, p.Status)
}

func TestManager_CleanupOffline_SweepsStaleEntries(t *testing.T) {
	mgr := NewManager(Config{OnlineTimeout: 10 * time.Millisecond, AwayTimeout: 20 * time.Millisecond})
	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "")

	time.Sleep(40 * time.Millisecond)
	mgr.CleanupOffline()

	p, ok := mgr.GetStatus("agent-1")
	require.True(t, ok)
	assert.Equal(t, StatusOffline, p.Status)
}

func TestManager_Remove_EmitsLeft(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	events := mgr.Events().Subscribe()
	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "")
	drainEvents(events, 2)

	mgr.Remove("agent-1")
	ev := <-events
	assert.Equal(t, EventLeft, ev.Kind)

	_, ok := mgr.GetStatus("agent-1")
	assert.False(t, ok)
}

func TestManager_SetStatus_EmitsJoinedThenStatusChanged(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	events := mgr.Events().Subscribe()

	mgr.SetStatus("agent-1", EntityAgent, StatusOnline, "")
	joined := <-events
	assert.Equal(t, EventJoined, joined.Kind)
	changed := <-events
	assert.Equal(t, EventStatusChanged, changed.Kind)
	assert.Equal(t, StatusOnline, changed.NewStatus)

	mgr.SetStatus("agent-1", EntityAgent, StatusBusy, "")
	changed = <-events
	assert.Equal(t, EventStatusChanged, changed.Kind)
	assert.Equal(t, StatusOnline, changed.OldStatus)
	assert.Equal(t, StatusBusy, changed.NewStatus)
}

func TestPublisher_FullQueueDropsOldestRatherThanBlocking(t *testing.T) {
	pub := NewPublisher()
	ch := pub.Subscribe()

	for i := 0; i < subscriberQueueDepth+10; i++ {
		pub.Publish(Event{Kind: EventHeartbeat, ID: strconv.Itoa(i)})
	}

	assert.Len(t, ch, subscriberQueueDepth)
	// The first 10 events were dropped to make room for the last 10.
	first := <-ch
	assert.Equal(t, strconv.Itoa(10), first.ID)
}

func drainEvents(ch <-chan Event, n int) {
	for i := 0; i < n; i++ {
		<-ch
	}
}
