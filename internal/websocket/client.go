package websocket

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// wireConn is the write side of the websocket connection.
type wireConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connected chat widget. Writes are serialized through mu so
// the delivery path, the backlog flush and the heartbeat ping never interleave
// on the wire.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn wireConn

	// Generated identifier for this connection.
	ID string

	mu sync.Mutex
	// Session the client attached to via init, empty until then.
	session string
	open    bool
	alive   bool
	queue   [][]byte // bounded outbound retry queue, oldest first
}

func newClient(hub *Hub, conn wireConn, id string) *Client {
	return &Client{
		Hub:   hub,
		Conn:  conn,
		ID:    id,
		open:  true,
		alive: true,
	}
}

// send writes one frame. An error marks the connection as no longer open.
func (c *Client) send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return websocket.ErrCloseSent
	}
	if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.open = false
		return err
	}
	return nil
}

// enqueue appends to the retry queue, evicting the oldest entry once the
// capacity is exceeded.
func (c *Client) enqueue(payload []byte, capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, payload)
	if len(c.queue) > capacity {
		c.queue = c.queue[len(c.queue)-capacity:]
	}
}

// drainQueue returns the backlog in order and clears it.
func (c *Client) drainQueue() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	queued := c.queue
	c.queue = nil
	return queued
}

func (c *Client) queueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Client) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

func (c *Client) attachSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = sessionID
}

func (c *Client) sessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) markAlive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = true
}

// checkAndResetAlive reports whether the client answered since the previous
// sweep and arms the flag for the next one.
func (c *Client) checkAndResetAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasAlive := c.alive
	c.alive = false
	return wasAlive
}

// ping sends a control ping. Errors surface through the next sweep.
func (c *Client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return websocket.ErrCloseSent
	}
	return c.Conn.WriteMessage(websocket.PingMessage, nil)
}
