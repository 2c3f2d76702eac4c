package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrescue/dispatch/pkg/logger"
)

func newTestClient(party string, partyID int) *Client {
	return &Client{
		ID:            party + "-test",
		Party:         party,
		PartyID:       partyID,
		Send:          make(chan []byte, 4),
		subscriptions: make(map[string]bool),
		logger:        logger.Nop(),
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBroadcast_ReachesEveryClient(t *testing.T) {
	h := NewHub(logger.Nop())
	go h.Run()

	dashboard := newTestClient("dashboard", 1)
	mech := newTestClient("mechanic", 2)
	h.Register(dashboard)
	h.Register(mech)

	require.Eventually(t, func() bool { return h.ActiveConnections() == 2 },
		time.Second, 10*time.Millisecond)

	h.Broadcast(Event{Type: "mechanic_availability_changed", Data: "busy"})

	assert.Contains(t, string(receive(t, dashboard)), "mechanic_availability_changed")
	assert.Contains(t, string(receive(t, mech)), "mechanic_availability_changed")
}

func TestBroadcast_EvictsSlowClient(t *testing.T) {
	h := NewHub(logger.Nop())
	go h.Run()

	slow := newTestClient("user", 1)
	for i := 0; i < cap(slow.Send); i++ {
		slow.Send <- []byte("backlog")
	}
	h.Register(slow)

	require.Eventually(t, func() bool { return h.ActiveConnections() == 1 },
		time.Second, 10*time.Millisecond)

	h.Broadcast(Event{Type: "ping"})

	assert.Eventually(t, func() bool { return h.ActiveConnections() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestBroadcastToRequest_OnlySubscribers(t *testing.T) {
	h := NewHub(logger.Nop())
	go h.Run()

	subscribed := newTestClient("user", 1)
	subscribed.Subscribe("7")
	other := newTestClient("user", 2)
	h.Register(subscribed)
	h.Register(other)

	require.Eventually(t, func() bool { return h.ActiveConnections() == 2 },
		time.Second, 10*time.Millisecond)

	h.BroadcastToRequest(7, Event{Type: "request_status_changed"})

	assert.Contains(t, string(receive(t, subscribed)), "request_status_changed")
	assert.Empty(t, other.Send)
}

func TestSendToParty_FiltersByIdentity(t *testing.T) {
	h := NewHub(logger.Nop())
	go h.Run()

	target := newTestClient("mechanic", 5)
	bystander := newTestClient("mechanic", 6)
	h.Register(target)
	h.Register(bystander)

	require.Eventually(t, func() bool { return h.ActiveConnections() == 2 },
		time.Second, 10*time.Millisecond)

	h.SendToParty("mechanic", 5, Event{Type: "request_created"})

	assert.Contains(t, string(receive(t, target)), "request_created")
	assert.Empty(t, bystander.Send)
}
