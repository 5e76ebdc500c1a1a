package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"moodmate/internal/middleware"
	"moodmate/internal/observability"

	json "github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// Max connections per signed-in user
	maxConnsPerUser = 12
	// Max total connections, anonymous viewers included
	maxTotalConns = 10000
)

var (
	ErrHubClosed       = errors.New("hub is shutting down")
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrUserConnLimit   = errors.New("user connection limit reached")
)

// Hub fans community events out to every connected feed viewer.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	perUser map[uuid.UUID]int
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		perUser: make(map[uuid.UUID]int),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "community hub" }

// Register adds a connection. userID may be uuid.Nil for anonymous viewers,
// which are only bound by the global limit.
func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if len(h.clients) >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	if userID != uuid.Nil && h.perUser[userID] >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := newClient(h, conn, userID)
	h.clients[client] = struct{}{}
	if userID != uuid.Nil {
		h.perUser[userID]++
	}
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes a client and closes its send channel. Safe to call
// more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if client.UserID != uuid.Nil {
		h.perUser[client.UserID]--
		if h.perUser[client.UserID] <= 0 {
			delete(h.perUser, client.UserID)
		}
	}
	client.close()
	observability.WebSocketConnectionsTotal.Dec()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll sends message to every client. Clients whose buffer is full
// are disconnected instead of stalling the broadcast.
func (h *Hub) BroadcastAll(message []byte) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		if !c.TrySend(message) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		h.removeLocked(c)
		observability.WebSocketBackpressureDrops.WithLabelValues(h.Name(), "full").Inc()
	}
	h.mu.Unlock()
	middleware.Logger.Warn("dropped slow websocket clients", slog.Int("count", len(slow)))
}

// StartWiring subscribes the hub to the notifier's community channel.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartCommunitySubscriber(ctx, func(payload string) {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(payload), &head); err != nil || head.Type == "" {
			middleware.Logger.Warn("ignoring malformed community event", slog.Int("bytes", len(payload)))
			return
		}
		observability.WebSocketEventsTotal.WithLabelValues(head.Type).Inc()
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every client's send channel; each write pump then sends
// a close frame and exits. Later registrations are refused.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	return nil
}
