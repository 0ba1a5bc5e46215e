package realtime

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventType for WebSocket messages
type EventType string

const (
	EventCreditsUpdated EventType = "credits:updated"
)

// eventsChannel is the Redis channel that fans events out to every API
// instance.
const eventsChannel = "realtime:events"

var (
	wsConnectionsGauge   = expvar.NewInt("websocket_connections")
	wsEventsSentTotal    = expvar.NewInt("websocket_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("websocket_events_dropped_total")
)

// Event is one push to a connected client.
type Event struct {
	Type      EventType `json:"type"`
	AccountID uuid.UUID `json:"account_id"`
	Balance   int       `json:"balance,omitempty"`
}

// envelope wraps an Event for the Redis channel so instances can skip
// their own publishes.
type envelope struct {
	AccountID        string          `json:"account_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection represents one WebSocket client
type Connection struct {
	AccountID uuid.UUID
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub pushes account-scoped events to WebSocket clients. Redis Pub/Sub
// carries events between API instances; without Redis the hub still
// works for a single instance.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
}

// NewHub creates a hub
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, eventsChannel)
	}

	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.AccountID] == nil {
				h.connections[conn.AccountID] = make(map[*Connection]bool)
			}
			h.connections[conn.AccountID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("account_id", conn.AccountID.String()).Msg("WebSocket connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.AccountID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.AccountID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("account_id", conn.AccountID.String()).Msg("WebSocket disconnected")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.SenderInstanceID == h.instanceID {
				continue
			}
			accountID, err := uuid.Parse(env.AccountID)
			if err != nil {
				continue
			}
			h.sendLocal(accountID, []byte(env.Payload))
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BalanceUpdated pushes the new credit balance to every open session of
// the account, on this instance and, via Redis, on all others.
func (h *Hub) BalanceUpdated(ctx context.Context, accountID uuid.UUID, balance int) {
	h.SendToAccount(ctx, accountID, &Event{
		Type:      EventCreditsUpdated,
		AccountID: accountID,
		Balance:   balance,
	})
}

// SendToAccount delivers an event to all of the account's connections.
func (h *Hub) SendToAccount(ctx context.Context, accountID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal WebSocket event")
		return
	}

	h.sendLocal(accountID, data)

	if h.redis == nil {
		return
	}

	env := envelope{
		AccountID:        accountID.String(),
		Payload:          data,
		SenderInstanceID: h.instanceID,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := h.redis.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", eventsChannel).Msg("Redis publish failed")
	}
}

func (h *Hub) sendLocal(accountID uuid.UUID, data []byte) {
	h.mu.RLock()
	conns, ok := h.connections[accountID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	for conn := range conns {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			// Buffer full, drop rather than block the hub
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("account_id", accountID.String()).Msg("WebSocket send buffer full")
		}
	}
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
