// Package realtime delivers chat events to connected WebSocket clients.
//
// Every instance keeps the connections of its own users. Broadcasts go
// through a Broker so that a message sent on one instance reaches
// recipients connected to another.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is the frame written to clients
type Event struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// envelope is what travels over the broker
type envelope struct {
	TenantID uuid.UUID   `json:"tenant_id"`
	UserIDs  []uuid.UUID `json:"user_ids"`
	Event    Event       `json:"event"`
}

type clientKey struct {
	tenantID uuid.UUID
	userID   uuid.UUID
}

// HubOption configures the hub
type HubOption func(*Hub)

// WithPingInterval sets how often clients are pinged. Clients that do not
// answer within two intervals are dropped.
func WithPingInterval(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

// WithWriteTimeout bounds a single frame write
func WithWriteTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithSendBuffer sets the per-connection queue length
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithBroker replaces the in-process broker
func WithBroker(b Broker) HubOption {
	return func(h *Hub) {
		h.broker = b
	}
}

// WithMetrics records connection counts
func WithMetrics(m *telemetry.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithCheckOrigin sets the upgrade origin check
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// Hub tracks connections and fans out events
type Hub struct {
	mu      sync.RWMutex
	clients map[clientKey]map[*Client]struct{}

	upgrader     websocket.Upgrader
	broker       Broker
	metrics      *telemetry.Metrics
	logger       *zap.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	sendBuffer   int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a hub. Call Start before broadcasting.
func NewHub(logger *zap.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients:      make(map[clientKey]map[*Client]struct{}),
		logger:       logger,
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
		sendBuffer:   32,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.broker == nil {
		h.broker = NewLocalBroker()
	}
	return h
}

// Start subscribes to the broker
func (h *Hub) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	messages, err := h.broker.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe realtime broker: %w", err)
	}
	h.cancel = cancel
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		for payload := range messages {
			var env envelope
			if err := json.Unmarshal(payload, &env); err != nil {
				h.logger.Warn("Dropping malformed realtime envelope", zap.Error(err))
				continue
			}
			h.deliver(env)
		}
	}()
	h.logger.Info("Realtime hub started", zap.Duration("ping_interval", h.pingInterval))
	return nil
}

// Stop closes every connection and the broker subscription
func (h *Hub) Stop(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.mu.Lock()
	for key, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, key)
	}
	h.mu.Unlock()
	return h.broker.Close()
}

// Broadcast sends an event to every connection of the users
func (h *Hub) Broadcast(ctx context.Context, tenantID uuid.UUID, userIDs []uuid.UUID, eventType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode realtime event: %w", err)
	}
	payload, err := json.Marshal(envelope{
		TenantID: tenantID,
		UserIDs:  userIDs,
		Event:    Event{Type: eventType, Data: raw, OccurredAt: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("encode realtime envelope: %w", err)
	}
	return h.broker.Publish(ctx, payload)
}

// ServeWS upgrades the request and registers the connection for the user.
// The caller has already authenticated the request.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tenantID, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	c := newClient(h, conn, clientKey{tenantID: tenantID, userID: userID})
	h.register(c)
	go c.writePump()
	go c.readPump()
	return nil
}

// ConnectionCount returns the number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// IsOnline reports whether the user has a local connection
func (h *Hub) IsOnline(tenantID, userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clientKey{tenantID, userID}]) > 0
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.key]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.key] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.WSConnected(1)
	h.logger.Debug("Realtime client connected", zap.String("user_id", c.key.userID.String()))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.key]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.key)
			}
			h.metrics.WSConnected(-1)
		}
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) deliver(env envelope) {
	frame, err := json.Marshal(env.Event)
	if err != nil {
		return
	}
	seen := make(map[uuid.UUID]bool, len(env.UserIDs))
	var slow []*Client

	h.mu.RLock()
	for _, userID := range env.UserIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		for c := range h.clients[clientKey{env.TenantID, userID}] {
			if !c.enqueue(frame) {
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow realtime client", zap.String("user_id", c.key.userID.String()))
		h.unregister(c)
	}
}
