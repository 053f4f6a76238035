package stream

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketChannel delivers the same JSON event objects as the SSE transport,
// one per text message.
type WebSocketChannel struct {
	conn *websocket.Conn
	done chan struct{}

	mu     sync.Mutex
	seq    int
	closed bool
}

// OpenWebSocket upgrades the request and starts watching for peer
// disconnection. A failed upgrade surfaces as ErrChannelUnavailable.
func OpenWebSocket(w http.ResponseWriter, r *http.Request) (*WebSocketChannel, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}

	c := &WebSocketChannel{conn: conn, done: make(chan struct{})}
	go c.watchPeer()
	return c, nil
}

// watchPeer drains inbound frames; the protocol defines none, but reading is
// what surfaces a closed connection.
func (c *WebSocketChannel) watchPeer() {
	defer close(c.done)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Emit writes one event as a JSON text message. No-op after Close or peer
// disconnection.
func (c *WebSocketChannel) Emit(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}

	event.Seq = c.seq
	if err := c.conn.WriteJSON(event); err != nil {
		log.Printf("[ws] failed to write event: %v", err)
		return
	}
	c.seq++
}

// Done exposes peer disconnection.
func (c *WebSocketChannel) Done() <-chan struct{} {
	return c.done
}

// Close terminates the connection. Idempotent.
func (c *WebSocketChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	_ = c.conn.Close()
}
