package stream

import "errors"

// EventType tags one frame of a turn's event stream.
type EventType string

const (
	EventStatus EventType = "status"
	EventText   EventType = "text"
	EventAction EventType = "action"
	EventDone   EventType = "done"
)

// ErrChannelUnavailable reports that the underlying transport could not be
// opened or held. It is surfaced before any event is emitted; the turn never
// starts.
var ErrChannelUnavailable = errors.New("event channel unavailable")

// ActionPayload is the wire shape of a proposed action inside an action event.
type ActionPayload struct {
	ContentType string `json:"contentType"`
	ActionID    string `json:"actionId"`
	Command     string `json:"command,omitempty"`
	DiffString  string `json:"diffString,omitempty"`
	FileName    string `json:"fileName,omitempty"`
}

// Event is one frame delivered to the client. Seq is assigned by the channel
// at emit time, strictly increasing from 0.
type Event struct {
	Type      EventType      `json:"type"`
	Seq       int            `json:"seq"`
	Content   string         `json:"content,omitempty"`
	MessageID string         `json:"messageId,omitempty"`
	Action    *ActionPayload `json:"action,omitempty"`
}

// Channel delivers an ordered, monotonically-numbered sequence of events to
// exactly one client for the duration of one turn.
//
// Emit is fire-and-forget: after Close, or once the peer is gone, it is a
// silent no-op. Two emits issued in order are observed in that order. There
// is no buffering or replay; events lost to a dropped connection stay lost.
type Channel interface {
	// Emit appends one event, assigning its sequence number.
	Emit(event Event)
	// Done is closed when the peer disconnects, so the producer can stop
	// generating further events.
	Done() <-chan struct{}
	// Close terminates the channel. Idempotent.
	Close()
}
