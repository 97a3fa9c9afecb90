package agent

import (
	"encoding/json"
	"sync"

	"corkboard/pkg/logger"
)

// Event types emitted over the lifetime of one investigation run.
const (
	EventRoundStart         = "round_start"
	EventSensoQuery         = "senso_query"
	EventSearchComplete     = "search_complete"
	EventExtractionComplete = "extraction_complete"
	EventGraphUpdate        = "graph_update"
	EventImageClue          = "image_clue"
	EventNarration          = "narration"
	EventComplete           = "complete"
	EventError              = "error"
)

// Event is one tagged record in a run's event stream. Fields carry the
// phase-specific payload and are flattened next to the type tag on the wire.
type Event struct {
	Type   string
	Fields map[string]any
}

// MarshalJSON flattens the event into a single object with a "type" key.
func (e Event) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		flat[k] = v
	}
	flat["type"] = e.Type
	return json.Marshal(flat)
}

// subscriberBuffer is the per-observer channel capacity. An observer that
// falls this far behind starts losing events rather than stalling the run.
const subscriberBuffer = 256

// EventLog is an append-only event buffer with replay-then-subscribe
// semantics: an observer attaching mid-run receives the full backlog first,
// then live events, with no gap or duplication. One EventLog belongs to
// exactly one run.
type EventLog struct {
	mu     sync.Mutex
	events []Event
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{
		subs: make(map[int]chan Event),
	}
}

// Append records an event and forwards it to all live subscribers.
func (l *EventLog) Append(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.events = append(l.events, event)
	for _, ch := range l.subs {
		select {
		case ch <- event:
		default:
			logger.Warn("Dropping event for slow subscriber", "type", event.Type)
		}
	}
}

// Subscribe returns the backlog of already-emitted events plus a channel of
// live events starting immediately after the backlog. The snapshot and the
// registration happen atomically, so no event is missed or duplicated at the
// boundary. The returned cancel function detaches the subscriber; the live
// channel is closed when the subscriber detaches or the log closes.
func (l *EventLog) Subscribe() (backlog []Event, live <-chan Event, cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	backlog = make([]Event, len(l.events))
	copy(backlog, l.events)

	ch := make(chan Event, subscriberBuffer)
	if l.closed {
		close(ch)
		return backlog, ch, func() {}
	}

	id := l.nextID
	l.nextID++
	l.subs[id] = ch

	cancel = func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if sub, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(sub)
		}
	}
	return backlog, ch, cancel
}

// Events returns a copy of all events emitted so far.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Closed reports whether the log has stopped accepting events.
func (l *EventLog) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close stops accepting events and closes all live subscriber channels. The
// backlog stays readable for late observers.
func (l *EventLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}
