package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"medibook-be/internal/pkg/logger"
)

const fanoutChannel = "chat_frames"

// fanoutEnvelope carries a frame to whichever instance holds the target
// connection when the gateway runs behind a load balancer.
type fanoutEnvelope struct {
	ClientID string          `json:"client_id"`
	Payload  json.RawMessage `json:"payload"`
}

// Hub tracks connected clients and owns delivery: frames to an open
// connection go out immediately, frames to a temporarily broken one land in
// the client's bounded retry queue and are flushed on reconnect.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	rdb           *redis.Client // optional, nil disables cross-instance fanout
	logger        logger.ILogger
	queueCapacity int

	heartbeatStop chan struct{}
	heartbeatOnce sync.Once
}

func NewHub(rdb *redis.Client, queueCapacity int, log logger.ILogger) *Hub {
	return &Hub{
		clients:       make(map[string]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		rdb:           rdb,
		logger:        log,
		queueCapacity: queueCapacity,
		heartbeatStop: make(chan struct{}),
	}
}

// Run processes register/unregister events. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info("WebSocketHub", "Client connected", map[string]interface{}{"client_id": client.ID})
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
			}
			h.mu.Unlock()
			client.markClosed()
			h.logger.Info("WebSocketHub", "Client disconnected", map[string]interface{}{"client_id": client.ID})
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

// Deliver sends a frame to the client. If the connection is open the backlog
// is flushed first so ordering is preserved; if the write path is down the
// frame joins the retry queue. Unknown local clients are fanned out over
// Redis when configured.
func (h *Hub) Deliver(clientID string, payload []byte) {
	client := h.client(clientID)
	if client == nil {
		h.fanout(clientID, payload)
		return
	}
	h.deliverLocal(client, payload)
}

func (h *Hub) deliverLocal(client *Client, payload []byte) {
	if !client.isOpen() {
		client.enqueue(payload, h.queueCapacity)
		return
	}
	backlog := client.drainQueue()
	for i, queued := range backlog {
		if err := client.send(queued); err != nil {
			h.logger.Warn("WebSocketHub", "Backlog flush failed", map[string]interface{}{"client_id": client.ID, "error": err})
			// The failed frame and everything drained behind it go back
			// into the queue ahead of the new payload.
			for _, frame := range backlog[i:] {
				client.enqueue(frame, h.queueCapacity)
			}
			client.enqueue(payload, h.queueCapacity)
			return
		}
	}
	if err := client.send(payload); err != nil {
		h.logger.Warn("WebSocketHub", "Delivery failed, frame queued", map[string]interface{}{"client_id": client.ID, "error": err})
		client.enqueue(payload, h.queueCapacity)
	}
}

// DeliverToSession sends a frame to every local connection attached to the
// session. Used for server-initiated notices like abandonment.
func (h *Hub) DeliverToSession(sessionID string, payload []byte) {
	h.mu.RLock()
	attached := make([]*Client, 0, 1)
	for _, client := range h.clients {
		if client.sessionID() == sessionID {
			attached = append(attached, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range attached {
		h.deliverLocal(client, payload)
	}
}

func (h *Hub) fanout(clientID string, payload []byte) {
	if h.rdb == nil {
		return
	}
	envelope, err := json.Marshal(fanoutEnvelope{ClientID: clientID, Payload: payload})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), fanoutChannel, envelope).Err(); err != nil {
		h.logger.Warn("WebSocketHub", "Redis fanout failed", map[string]interface{}{"error": err})
	}
}

// SubscribeFanout consumes frames published by peer instances and delivers
// the ones addressed to locally held connections. No-op without Redis.
func (h *Hub) SubscribeFanout(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	sub := h.rdb.Subscribe(ctx, fanoutChannel)
	go func() {
		defer sub.Close()
		for msg := range sub.Channel() {
			var envelope fanoutEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				continue
			}
			if client := h.client(envelope.ClientID); client != nil {
				h.deliverLocal(client, envelope.Payload)
			}
		}
	}()
}

// StartHeartbeat sweeps connections on the given interval. A connection that
// did not answer the previous ping is closed and its retry queue discarded.
func (h *Hub) StartHeartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.sweep()
			case <-h.heartbeatStop:
				return
			}
		}
	}()
}

func (h *Hub) StopHeartbeat() {
	h.heartbeatOnce.Do(func() {
		close(h.heartbeatStop)
	})
}

func (h *Hub) sweep() {
	h.mu.RLock()
	swept := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		swept = append(swept, client)
	}
	h.mu.RUnlock()

	for _, client := range swept {
		if !client.checkAndResetAlive() {
			h.logger.Warn("WebSocketHub", "Heartbeat missed, closing client", map[string]interface{}{"client_id": client.ID})
			client.markClosed()
			client.Conn.Close()
			h.mu.Lock()
			delete(h.clients, client.ID)
			h.mu.Unlock()
			continue
		}
		if err := client.ping(); err != nil {
			h.logger.Warn("WebSocketHub", "Heartbeat ping failed", map[string]interface{}{"client_id": client.ID, "error": err})
		}
	}
}
