// Package events records the events a contract emits on committed calls.
// Events are kept in a bounded ring buffer per process and fanned out to
// subscribers, the way an indexer would observe contract logs.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType names a contract event.
type EventType string

const (
	EventInitialized          EventType = "Initialized"
	EventTransfer             EventType = "Transfer"
	EventBaseURIUpdated       EventType = "BaseURIUpdated"
	EventRoyaltyUpdated       EventType = "RoyaltyUpdated"
	EventOwnershipTransferred EventType = "OwnershipTransferred"
	EventUpgraded             EventType = "Upgraded"
	EventWithdrawn            EventType = "Withdrawn"
)

// Event is one emitted contract event. Address fields hold the printable
// account form.
type Event struct {
	ID        string    `json:"id"`
	Sequence  uint64    `json:"sequence"`
	Type      EventType `json:"type"`
	Contract  string    `json:"contract"`
	Timestamp time.Time `json:"timestamp"`

	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	TokenID uint64 `json:"token_id,omitempty"`
	Value   string `json:"value,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// String returns the JSON form.
func (e Event) String() string {
	data, _ := json.Marshal(e)
	return string(data)
}

// Handler processes events as they are emitted.
type Handler func(Event)

// Filter decides whether a handler sees an event.
type Filter func(Event) bool

// Log is the sink contracts emit into.
type Log interface {
	Emit(ctx context.Context, event Event)
	Subscribe(filter Filter, handler Handler) func()
	Recent(n int) []Event
	RecentByContract(contract string, n int) []Event
}

// RingBuffer is a thread-safe circular buffer of events.
type RingBuffer struct {
	mu       sync.RWMutex
	events   []Event
	size     int
	head     int
	count    int
	seq      uint64
	handlers []handlerEntry
	nextID   int64
}

type handlerEntry struct {
	id      int64
	filter  Filter
	handler Handler
}

// NewRingBuffer creates a buffer holding at most size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1000
	}
	return &RingBuffer{
		events: make([]Event, size),
		size:   size,
	}
}

// Emit stores the event, stamps id/sequence/time, and notifies handlers
// outside the lock.
func (rb *RingBuffer) Emit(ctx context.Context, event Event) {
	if ctx != nil {
		if v, ok := ctx.Value(requestIDKey).(string); ok {
			event.RequestID = v
		}
	}

	rb.mu.Lock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	rb.seq++
	event.Sequence = rb.seq

	rb.events[rb.head] = event
	rb.head = (rb.head + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
	}

	handlers := make([]handlerEntry, len(rb.handlers))
	copy(handlers, rb.handlers)
	rb.mu.Unlock()

	for _, h := range handlers {
		if h.filter == nil || h.filter(event) {
			h.handler(event)
		}
	}
}

// Subscribe registers a handler; a nil filter sees every event. The returned
// func unsubscribes.
func (rb *RingBuffer) Subscribe(filter Filter, handler Handler) func() {
	rb.mu.Lock()
	id := rb.nextID
	rb.nextID++
	rb.handlers = append(rb.handlers, handlerEntry{id: id, filter: filter, handler: handler})
	rb.mu.Unlock()

	return func() {
		rb.mu.Lock()
		defer rb.mu.Unlock()
		for i, h := range rb.handlers {
			if h.id == id {
				rb.handlers = append(rb.handlers[:i], rb.handlers[i+1:]...)
				return
			}
		}
	}
}

// Recent returns up to n events, most recent first.
func (rb *RingBuffer) Recent(n int) []Event {
	return rb.collect(n, nil)
}

// RecentByContract returns up to n events of one contract, most recent first.
func (rb *RingBuffer) RecentByContract(contract string, n int) []Event {
	return rb.collect(n, func(e Event) bool { return e.Contract == contract })
}

// RecentByType returns up to n events of one type, most recent first.
func (rb *RingBuffer) RecentByType(eventType EventType, n int) []Event {
	return rb.collect(n, func(e Event) bool { return e.Type == eventType })
}

func (rb *RingBuffer) collect(n int, keep Filter) []Event {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if n <= 0 || rb.count == 0 {
		return nil
	}

	var result []Event
	for i := 0; i < rb.count && len(result) < n; i++ {
		idx := (rb.head - 1 - i + rb.size) % rb.size
		if keep == nil || keep(rb.events[idx]) {
			result = append(result, rb.events[idx])
		}
	}
	return result
}

// Count returns the number of buffered events.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID tags events emitted under ctx with a request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(context.Context, Event) {}
func (Discard) Subscribe(Filter, Handler) func() { return func() {} }
func (Discard) Recent(int) []Event { return nil }
func (Discard) RecentByContract(string, int) []Event { return nil }
