// Package events provides the typed event envelope and in-process bus that
// feed the dashboard's live activity panel.
package events

import (
	"slices"
	"sync"
	"time"
)

// Type categorizes workspace events.
type Type string

const (
	// Workshop lifecycle events
	EventWorkshopStepAdvanced Type = "workshop.step.advanced"
	EventWorkshopGenerated    Type = "workshop.generated"
	EventWorkshopSaved        Type = "workshop.saved"

	// Cohort events
	EventCohortCreated Type = "cohort.created"
	EventCohortDeleted Type = "cohort.deleted"

	// Unknown event type for unclassified events
	EventUnknown Type = "unknown"
)

// String returns the string representation of the Type.
func (t Type) String() string {
	return string(t)
}

// IsWorkshopEvent returns true for workshop lifecycle events.
func (t Type) IsWorkshopEvent() bool {
	switch t {
	case EventWorkshopStepAdvanced, EventWorkshopGenerated, EventWorkshopSaved:
		return true
	default:
		return false
	}
}

// Event is the envelope for all workspace events.
type Event struct {
	// Type identifies the kind of event.
	Type Type
	// Timestamp when the event occurred.
	Timestamp time.Time

	// Workflow context
	Schema string
	Step   int

	// Optional correlation IDs
	DraftGUID string
	CohortID  string

	// Event-specific payload (depends on Type)
	Payload any
}

// New creates an event with the current timestamp.
func New(eventType Type, payload any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// WithSchema adds wizard schema context to the event.
func (e Event) WithSchema(schema string, step int) Event {
	e.Schema = schema
	e.Step = step
	return e
}

// WithDraft adds draft context to the event.
func (e Event) WithDraft(guid string) Event {
	e.DraftGUID = guid
	return e
}

// WithCohort adds cohort context to the event.
func (e Event) WithCohort(id string) Event {
	e.CohortID = id
	return e
}

// Filter defines subscription criteria. All criteria are AND'd together;
// an empty filter matches every event.
type Filter struct {
	// Types limits events to these types. Empty allows all.
	Types []Type
	// Schemas limits events to these wizard schemas. Empty allows all.
	Schemas []string
}

// Matches returns true if the event passes the filter.
func (f *Filter) Matches(e Event) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
		return false
	}
	if len(f.Schemas) > 0 && !slices.Contains(f.Schemas, e.Schema) {
		return false
	}
	return true
}

// IsEmpty returns true if the filter has no criteria set.
func (f *Filter) IsEmpty() bool {
	return len(f.Types) == 0 && len(f.Schemas) == 0
}

// Bus is a non-blocking in-process publish/subscribe hub. Subscribers with
// full channels miss events rather than stalling the publisher: the feed is
// advisory UI state, not a durable log.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	filter Filter
	ch     chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscription)}
}

// Subscribe registers a filtered subscriber and returns its channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *Bus) Subscribe(filter Filter, buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 16
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscription{filter: filter, ch: make(chan Event, buffer)}
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers the event to every matching subscriber without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.filter.Matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			// Subscriber is behind; drop rather than block the publisher.
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
