// Package activity generates the dashboard's activity feed. Events come
// from two places: real wizard outcomes published on the event bus, and a
// seeded mock generator that stands in for the rest of the workspace
// (other members' workshops, signups) the way the original dashboard
// fabricated client-side data.
package activity

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/raptorflow/raptorflow/internal/events"
)

// Kind classifies a feed entry.
type Kind string

const (
	KindWorkshopCompleted Kind = "workshop.completed"
	KindCohortCreated     Kind = "cohort.created"
	KindMapSaved          Kind = "map.saved"
	KindMemberJoined      Kind = "member.joined"
)

// Event is one feed entry.
type Event struct {
	Kind    Kind      `json:"kind"`
	Actor   string    `json:"actor"`
	Subject string    `json:"subject"`
	At      time.Time `json:"at"`
}

// Describe renders the entry as a single feed line.
func (e Event) Describe() string {
	switch e.Kind {
	case KindWorkshopCompleted:
		return fmt.Sprintf("%s completed a positioning workshop for %s", e.Actor, e.Subject)
	case KindCohortCreated:
		return fmt.Sprintf("%s created cohort %s", e.Actor, e.Subject)
	case KindMapSaved:
		return fmt.Sprintf("%s saved positioning map %s", e.Actor, e.Subject)
	case KindMemberJoined:
		return fmt.Sprintf("%s joined the workspace", e.Actor)
	default:
		return fmt.Sprintf("%s did something to %s", e.Actor, e.Subject)
	}
}

// FromBusEvent converts a workspace bus event into a feed entry. The
// second return is false for event types the feed does not show, such as
// per-step navigation.
func FromBusEvent(e events.Event) (Event, bool) {
	entry := Event{Actor: "you", At: e.Timestamp}
	switch e.Type {
	case events.EventWorkshopGenerated:
		entry.Kind = KindWorkshopCompleted
		entry.Subject = e.Schema
	case events.EventWorkshopSaved:
		entry.Kind = KindMapSaved
		entry.Subject = e.Schema
	case events.EventCohortCreated:
		entry.Kind = KindCohortCreated
		entry.Subject = e.CohortID
	default:
		return Event{}, false
	}
	return entry, true
}

var mockActors = []string{
	"maya", "jordan", "sam", "priya", "alex", "casey", "dana", "kit",
}

var mockSubjects = []string{
	"Early-stage founders", "Fractional CMOs", "Agency owners",
	"Product marketers", "Solo consultants", "Q3 launch", "Pricing page",
}

var mockKinds = []Kind{
	KindWorkshopCompleted, KindCohortCreated, KindMapSaved, KindMemberJoined,
}

// Feed produces n mock events ending at the given time, newest first.
// The same seed always yields the same feed, which keeps dashboard
// snapshots and tests stable.
func Feed(seed int64, n int, now time.Time) []Event {
	rng := rand.New(rand.NewSource(seed))
	events := make([]Event, n)
	at := now
	for i := range events {
		at = at.Add(-time.Duration(5+rng.Intn(110)) * time.Minute)
		events[i] = Event{
			Kind:    mockKinds[rng.Intn(len(mockKinds))],
			Actor:   mockActors[rng.Intn(len(mockActors))],
			Subject: mockSubjects[rng.Intn(len(mockSubjects))],
			At:      at,
		}
	}
	return events
}
