package ws

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addClient places a client in the hub's registry without going through the
// register channel, so tests don't need a live websocket connection.
func addClient(h *Hub, userID int64, buffer int) *Client {
	client := &Client{hub: h, send: make(chan []byte, buffer), userID: userID, logger: zerolog.Nop()}
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*Client]bool)
	}
	h.clients[userID][client] = true
	return client
}

func TestHubDeliver(t *testing.T) {
	h := NewHub(zerolog.Nop())
	client := addClient(h, 1, 8)

	h.deliver(&Event{UserID: 1, Type: "FEEDBACK_PROVIDED", Message: "New feedback", Timestamp: time.Now()})

	select {
	case msg := <-client.send:
		assert.Contains(t, string(msg), "FEEDBACK_PROVIDED")
	default:
		t.Fatal("connected client received nothing")
	}

	// Events for users without connections are dropped silently
	h.deliver(&Event{UserID: 99, Type: "STATUS_CHANGED", Message: "noop", Timestamp: time.Now()})
}

func TestHubDropsSlowClientWithoutBlocking(t *testing.T) {
	h := NewHub(zerolog.Nop())
	slow := addClient(h, 1, 0)
	healthy := addClient(h, 1, 8)
	other := addClient(h, 2, 8)

	done := make(chan struct{})
	go func() {
		h.deliver(&Event{UserID: 1, Type: "STATUS_CHANGED", Message: "first", Timestamp: time.Now()})
		h.deliver(&Event{UserID: 2, Type: "STATUS_CHANGED", Message: "second", Timestamp: time.Now()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deliver blocked on a client with a full send buffer")
	}

	// The stalled connection is gone, the others still receive events
	assert.Equal(t, 1, h.ConnectionCount(1))
	assert.Equal(t, 1, h.ConnectionCount(2))

	select {
	case msg := <-healthy.send:
		assert.Contains(t, string(msg), "first")
	default:
		t.Fatal("healthy connection of the same user received nothing")
	}
	select {
	case msg := <-other.send:
		assert.Contains(t, string(msg), "second")
	default:
		t.Fatal("other user's connection received nothing")
	}

	// The dropped client's send channel is closed so its writePump exits
	_, open := <-slow.send
	assert.False(t, open)

	// A later unregister for the dropped client is a no-op, not a double close
	require.NotPanics(t, func() { h.unregisterClient(slow) })
}

func TestHubLastConnectionRemovedFromRegistry(t *testing.T) {
	h := NewHub(zerolog.Nop())
	addClient(h, 1, 0)

	h.deliver(&Event{UserID: 1, Type: "STATUS_CHANGED", Message: "m", Timestamp: time.Now()})

	assert.Equal(t, 0, h.ConnectionCount(1))
	_, ok := h.clients[1]
	assert.False(t, ok, "user entry is removed with its last connection")
}
