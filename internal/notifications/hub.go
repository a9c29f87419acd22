package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"postboard/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per identity
	maxConnsPerIdentity = 8
	// Max total connections
	maxTotalConns = 1000
)

var (
	ErrServerConnLimit   = errors.New("server connection limit reached")
	ErrIdentityConnLimit = errors.New("identity connection limit reached")
)

// Hub fans moderation events out to connected admin clients, keyed by
// identity id.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	log        *observability.WSLogger
}

// NewHub creates an empty moderation hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*Client]struct{}),
		log:   observability.NewWSLogger("moderation hub"),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "moderation hub" }

// Register a connection for identityID. Returns the Client or an error if limits are exceeded.
func (h *Hub) Register(identityID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[identityID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[identityID] = m
	}
	if len(m) >= maxConnsPerIdentity {
		return nil, ErrIdentityConnLimit
	}

	client := NewClient(h, conn, identityID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	h.log.LogConnect(context.Background(), identityID)
	return client, nil
}

// UnregisterClient removes client and closes its send channel. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.IdentityID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.IdentityID)
	}
	h.totalConns--
	close(client.Send)
	observability.WebSocketConnectionsTotal.Dec()
	h.log.LogDisconnect(context.Background(), client.IdentityID, "unregistered")
}

// ConnectionCount reports the number of registered clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message string) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(message), &envelope); err == nil && envelope.Type != "" {
		observability.WebSocketEventsTotal.WithLabelValues(envelope.Type).Inc()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// StartWiring connects the Notifier to this hub. With Redis, events arrive
// through the moderation channel; without it the notifier delivers locally.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	if n.rdb == nil {
		n.SetLocalSink(h.BroadcastAll)
		return nil
	}
	return n.StartModerationSubscriber(ctx, h.BroadcastAll)
}

// Shutdown closes every client's send channel; each WritePump then sends a
// close frame and tears its connection down.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for identityID, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.WebSocketConnectionsTotal.Dec()
			h.log.LogDisconnect(context.Background(), identityID, "server shutdown")
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
