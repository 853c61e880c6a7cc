package websocket

import (
	"fmt"
	"testing"
	"time"

	"medibook-be/internal/constant"
	"medibook-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestRetryQueueEvictsOldest(t *testing.T) {
	hub := NewHub(nil, 10, nopLogger{})
	client := newClient(hub, nil, "client-1")
	client.markClosed() // write path down, everything queues
	hub.clients[client.ID] = client

	for i := 1; i <= 11; i++ {
		hub.Deliver(client.ID, []byte(fmt.Sprintf("frame-%d", i)))
	}

	queued := client.drainQueue()
	require.Len(t, queued, 10)
	// frame-1 was evicted; order of the survivors is preserved.
	assert.Equal(t, "frame-2", string(queued[0]))
	assert.Equal(t, "frame-11", string(queued[9]))
}

// flakyConn accepts a fixed number of writes, then fails every one after.
type flakyConn struct {
	writesLeft int
	written    []string
}

func (c *flakyConn) WriteMessage(messageType int, data []byte) error {
	if c.writesLeft <= 0 {
		return fmt.Errorf("write on broken connection")
	}
	c.writesLeft--
	c.written = append(c.written, string(data))
	return nil
}

func (c *flakyConn) Close() error { return nil }

func TestBacklogFlushFailureRequeuesRemainder(t *testing.T) {
	hub := NewHub(nil, 10, nopLogger{})
	conn := &flakyConn{writesLeft: 1}
	client := newClient(hub, conn, "client-1")
	hub.clients[client.ID] = client

	for _, frame := range []string{"frame-a", "frame-b", "frame-c"} {
		client.enqueue([]byte(frame), 10)
	}

	// frame-a goes out, the write on frame-b dies mid-flush.
	hub.Deliver(client.ID, []byte("payload"))

	assert.Equal(t, []string{"frame-a"}, conn.written)
	queued := client.drainQueue()
	require.Len(t, queued, 3)
	assert.Equal(t, "frame-b", string(queued[0]))
	assert.Equal(t, "frame-c", string(queued[1]))
	assert.Equal(t, "payload", string(queued[2]))
	assert.False(t, client.isOpen())
}

func TestRetryQueueKeepsOrderBelowCapacity(t *testing.T) {
	hub := NewHub(nil, 10, nopLogger{})
	client := newClient(hub, nil, "client-1")
	client.markClosed()
	hub.clients[client.ID] = client

	for i := 1; i <= 3; i++ {
		hub.Deliver(client.ID, []byte(fmt.Sprintf("frame-%d", i)))
	}

	queued := client.drainQueue()
	require.Len(t, queued, 3)
	for i, payload := range queued {
		assert.Equal(t, fmt.Sprintf("frame-%d", i+1), string(payload))
	}
	// Drained means drained.
	assert.Zero(t, client.queueLen())
}

func TestDeliverUnknownClientWithoutRedisIsDropped(t *testing.T) {
	hub := NewHub(nil, 10, nopLogger{})
	// Must not panic or queue anywhere.
	hub.Deliver("ghost", []byte("frame"))
}

func TestCheckAndResetAlive(t *testing.T) {
	client := newClient(nil, nil, "client-1")

	// Fresh connections count as alive, then the flag is armed.
	assert.True(t, client.checkAndResetAlive())
	assert.False(t, client.checkAndResetAlive())

	client.markAlive()
	assert.True(t, client.checkAndResetAlive())
}

func TestToMessageViews(t *testing.T) {
	now := time.Now()
	views := toMessageViews([]*entity.ChatMessage{
		{Direction: constant.MessageDirectionIncoming, Content: "12345678", CreatedAt: now},
		{Direction: constant.MessageDirectionOutgoing, Content: "Welcome back!", CreatedAt: now.Add(time.Millisecond)},
	})

	require.Len(t, views, 2)
	assert.Equal(t, "user", views[0].Sender)
	assert.Equal(t, "bot", views[1].Sender)
	assert.Equal(t, "Welcome back!", views[1].Content)
}
