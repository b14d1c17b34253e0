package eventbus

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"
)

// SubscriptionID identifies a registered handler so it can later be
// unsubscribed; Go function values aren't comparable the way the
// original's callback-list removal assumed, so Subscribe hands back a
// token instead.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

type pendingDispatch struct {
	event Event
}

// Bus is the Event Bus of §4.1: synchronous, single-threaded, ordered
// publish/subscribe with optional bounded history and replay.
type Bus struct {
	subscribers map[string][]subscription
	nextSubID   SubscriptionID

	recordHistory bool
	maxHistory    int
	history       []Event

	sequence uint64

	dispatching bool
	queue       []pendingDispatch

	now func() time.Time
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithHistory enables bounded recording of dispatched events, keeping at
// most maxHistory of the most recent ones.
func WithHistory(maxHistory int) Option {
	return func(b *Bus) {
		b.recordHistory = true
		b.maxHistory = maxHistory
	}
}

// New creates a Bus. By default history recording is disabled; pass
// WithHistory to enable it.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[string][]subscription),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for eventType. Registration order is
// preserved and is the dispatch order.
func (b *Bus) Subscribe(eventType string, handler Handler) SubscriptionID {
	b.nextSubID++
	id := b.nextSubID
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a previously registered handler. A mutation made
// during dispatch only takes effect on the next Publish, since dispatch
// iterates a snapshot taken at publish time.
func (b *Bus) Unsubscribe(eventType string, id SubscriptionID) {
	subs := b.subscribers[eventType]
	for i, sub := range subs {
		if sub.id == id {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish dispatches eventType at Gameplay priority with no source and no
// network replication, matching the original bus's default publish.
func (b *Bus) Publish(eventType string, payload map[string]any) Event {
	return b.PublishEnhanced(eventType, Gameplay, "", false, payload)
}

// PublishEnhanced dispatches eventType, stamping it with a monotonically
// increasing sequence number and a timestamp, and recording it to history
// if recording is enabled.
func (b *Bus) PublishEnhanced(eventType string, priority Priority, source string, replicate bool, payload map[string]any) Event {
	b.sequence++
	event := Event{
		Timestamp: float64(b.now().UnixNano()) / 1e9,
		Sequence:  b.sequence,
		Type:      eventType,
		Priority:  priority,
		Data:      payload,
		Source:    source,
		Replicate: replicate,
	}

	if b.recordHistory {
		b.addToHistory(event)
	}

	// Events produced while handling another event are delivered only
	// after the current handler list finishes (§5 ordering guarantee).
	if b.dispatching {
		b.queue = append(b.queue, pendingDispatch{event: event})
		return event
	}

	b.dispatching = true
	b.dispatch(event)
	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		b.dispatch(next.event)
	}
	b.dispatching = false

	return event
}

func (b *Bus) dispatch(event Event) {
	// Snapshot handlers so Subscribe/Unsubscribe calls made from within a
	// handler don't affect this dispatch.
	subs := append([]subscription(nil), b.subscribers[event.Type]...)
	for _, sub := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("eventbus: handler panic for %s: %v", event.Type, r)
				}
			}()
			if err := sub.handler(event); err != nil {
				log.Printf("eventbus: handler error for %s: %v", event.Type, err)
			}
		}()
	}
}

func (b *Bus) addToHistory(event Event) {
	b.history = append(b.history, event)
	if b.maxHistory > 0 && len(b.history) > b.maxHistory {
		excess := len(b.history) - b.maxHistory
		b.history = b.history[excess:]
	}
}

// GetEventsSince returns recorded events with sequence strictly greater
// than seq, in recorded order.
func (b *Bus) GetEventsSince(seq uint64) []Event {
	var out []Event
	for _, event := range b.history {
		if event.Sequence > seq {
			out = append(out, event)
		}
	}
	return out
}

// GetEventsByType returns recorded events of eventType, optionally
// restricted to those at or after sinceTimestamp.
func (b *Bus) GetEventsByType(eventType string, sinceTimestamp *float64) []Event {
	var out []Event
	for _, event := range b.history {
		if event.Type != eventType {
			continue
		}
		if sinceTimestamp != nil && event.Timestamp < *sinceTimestamp {
			continue
		}
		out = append(out, event)
	}
	return out
}

// Replay dispatches events in sequence order without re-recording them to
// history, for state synchronization from a snapshot or transcript.
func (b *Bus) Replay(events []Event) {
	sorted := append([]Event(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })
	for _, event := range sorted {
		b.dispatch(event)
	}
}

// CurrentSequence returns the most recently assigned sequence number.
func (b *Bus) CurrentSequence() uint64 {
	return b.sequence
}

// SerializeSince renders recorded events with sequence greater than
// sinceSequence as a JSON array, per §4.1's wire envelope.
func (b *Bus) SerializeSince(sinceSequence uint64) ([]byte, error) {
	events := b.GetEventsSince(sinceSequence)
	return json.Marshal(events)
}

// DeserializeAndReplay decodes a JSON array produced by SerializeSince and
// replays it.
func (b *Bus) DeserializeAndReplay(data []byte) error {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("eventbus: deserialize failed: %w", err)
	}
	b.Replay(events)
	return nil
}

// Stats summarizes bus activity for tests and operators.
type Stats struct {
	TotalEvents     int
	CurrentSequence uint64
	SubscriberCount int
	EventTypeCounts map[string]int
	MaxHistory      int
}

// Stats reports current bus statistics, restoring the original
// implementation's debugging surface (get_statistics).
func (b *Bus) Stats() Stats {
	counts := make(map[string]int)
	for _, event := range b.history {
		counts[event.Type]++
	}
	subCount := 0
	for _, subs := range b.subscribers {
		subCount += len(subs)
	}
	return Stats{
		TotalEvents:     len(b.history),
		CurrentSequence: b.sequence,
		SubscriberCount: subCount,
		EventTypeCounts: counts,
		MaxHistory:      b.maxHistory,
	}
}
