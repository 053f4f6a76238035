package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeFrames(t *testing.T, body string) []Event {
	t.Helper()
	var events []Event
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestSSEEmitOrderAndSeq(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/prompt", nil)

	ch, err := OpenSSE(recorder, req)
	if err != nil {
		t.Fatalf("OpenSSE err: %v", err)
	}

	ch.Emit(Event{Type: EventStatus, Content: "Thinking..."})
	ch.Emit(Event{Type: EventText, Content: "hello"})
	ch.Emit(Event{Type: EventDone})
	ch.Close()

	events := decodeFrames(t, recorder.Body.String())
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	wantTypes := []EventType{EventStatus, EventText, EventDone}
	for i, event := range events {
		if event.Seq != i {
			t.Fatalf("event %d seq: got %d", i, event.Seq)
		}
		if event.Type != wantTypes[i] {
			t.Fatalf("event %d type: got %s want %s", i, event.Type, wantTypes[i])
		}
	}

	if recorder.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", recorder.Header().Get("Content-Type"))
	}
}

func TestSSEEmitAfterCloseIsNoop(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/prompt", nil)

	ch, err := OpenSSE(recorder, req)
	if err != nil {
		t.Fatalf("OpenSSE err: %v", err)
	}

	ch.Emit(Event{Type: EventStatus, Content: "Thinking..."})
	ch.Close()
	ch.Close() // idempotent
	ch.Emit(Event{Type: EventText, Content: "after close"})

	events := decodeFrames(t, recorder.Body.String())
	if len(events) != 1 {
		t.Fatalf("expected 1 event after close, got %d", len(events))
	}
}

func TestSSEEmitAfterDisconnectIsNoop(t *testing.T) {
	recorder := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/chat/prompt", nil).WithContext(ctx)

	ch, err := OpenSSE(recorder, req)
	if err != nil {
		t.Fatalf("OpenSSE err: %v", err)
	}

	ch.Emit(Event{Type: EventStatus, Content: "Thinking..."})
	cancel()
	ch.Emit(Event{Type: EventText, Content: "lost"})

	events := decodeFrames(t, recorder.Body.String())
	if len(events) != 1 {
		t.Fatalf("expected only the pre-disconnect event, got %d", len(events))
	}

	select {
	case <-ch.Done():
	default:
		t.Fatal("Done not signalled after disconnect")
	}
}

func TestOpenSSEAlreadyDisconnected(t *testing.T) {
	recorder := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/prompt", nil).WithContext(ctx)

	if _, err := OpenSSE(recorder, req); !errors.Is(err, ErrChannelUnavailable) {
		t.Fatalf("got %v, want ErrChannelUnavailable", err)
	}
}

type plainWriter struct {
	http.ResponseWriter
}

func TestOpenSSENonFlushableWriter(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/prompt", nil)
	w := plainWriter{}

	if _, err := OpenSSE(w, req); !errors.Is(err, ErrChannelUnavailable) {
		t.Fatalf("got %v, want ErrChannelUnavailable", err)
	}
}
