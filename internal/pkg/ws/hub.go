package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hub maintains the set of connected clients keyed by user ID and pushes
// notification events to them. The hub is push-only: clients never publish
// events, they only receive them.
type Hub struct {
	// Registered clients organized by user ID; one user may hold several
	// connections (multiple tabs)
	clients map[int64]map[*Client]bool

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger zerolog.Logger
}

// Event is a notification pushed over the websocket
type Event struct {
	NotificationID int64     `json:"notificationId,omitempty"`
	UserID         int64     `json:"-"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	ThesisID       *int64    `json:"thesisId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub loop, handling registrations and event delivery
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Notification client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.userID]; ok {
		if _, ok := conns[client]; ok {
			delete(conns, client)
			close(client.send)
			if len(conns) == 0 {
				delete(h.clients, client.userID)
			}
			h.logger.Info().
				Int64("userID", client.userID).
				Msg("Notification client unregistered")
		}
	}
}

// deliver pushes an event to every connection of the target user. Users
// without open connections simply miss the push; the notifications table is
// the durable record.
func (h *Hub) deliver(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", event.UserID).Msg("Failed to marshal notification event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[event.UserID]
	if !ok {
		return
	}

	for client := range conns {
		select {
		case client.send <- data:
		default:
			// A full send buffer means the peer stopped reading. Removal
			// must happen inline: the unregister channel is serviced by the
			// same loop that called deliver, so sending to it here would
			// block the hub forever.
			delete(conns, client)
			close(client.send)
			h.logger.Warn().Int64("userID", client.userID).Msg("Dropping slow notification client")
		}
	}
	if len(conns) == 0 {
		delete(h.clients, event.UserID)
	}
}

// Push queues an event for delivery to its target user without blocking the
// caller; when the hub itself is saturated the event is dropped.
func (h *Hub) Push(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Int64("userID", event.UserID).Msg("Notification hub saturated, event dropped")
	}
}

// ConnectionCount returns the number of open connections for a user
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
