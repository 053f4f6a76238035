package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
)

// SSEChannel delivers events as Server-Sent Events over one streaming HTTP
// response. The request context doubles as the disconnect signal.
type SSEChannel struct {
	w       http.ResponseWriter
	flusher http.Flusher
	done    <-chan struct{}

	mu     sync.Mutex
	seq    int
	closed bool
}

// OpenSSE prepares the response for event streaming. It fails with
// ErrChannelUnavailable when the writer cannot flush or the client is
// already gone.
func OpenSSE(w http.ResponseWriter, r *http.Request) (*SSEChannel, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("%w: response writer does not support flushing", ErrChannelUnavailable)
	}

	select {
	case <-r.Context().Done():
		return nil, fmt.Errorf("%w: client already disconnected", ErrChannelUnavailable)
	default:
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush()

	return &SSEChannel{w: w, flusher: flusher, done: r.Context().Done()}, nil
}

// Emit writes one SSE frame carrying the event as JSON. No-op after Close or
// peer disconnection.
func (c *SSEChannel) Emit(event Event) {
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
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[sse] failed to marshal event: %v", err)
		return
	}

	if _, err := fmt.Fprintf(c.w, "id: %d\ndata: %s\n\n", event.Seq, data); err != nil {
		log.Printf("[sse] failed to write event: %v", err)
		return
	}
	c.seq++
	c.flusher.Flush()
}

// Done exposes peer disconnection.
func (c *SSEChannel) Done() <-chan struct{} {
	return c.done
}

// Close marks the channel terminated. Idempotent; the HTTP response itself
// ends when the handler returns.
func (c *SSEChannel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
