package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raptorflow/raptorflow/internal/events"
)

func TestFeed_DeterministicForSeed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := Feed(42, 10, now)
	second := Feed(42, 10, now)
	assert.Equal(t, first, second)

	other := Feed(43, 10, now)
	assert.NotEqual(t, first, other)
}

func TestFeed_NewestFirst(t *testing.T) {
	now := time.Now()
	events := Feed(7, 20, now)
	require.Len(t, events, 20)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i].At.Before(events[i-1].At),
			"event %d should be older than event %d", i, i-1)
	}
	assert.True(t, events[0].At.Before(now))
}

func TestFromBusEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   events.Event
		want    Kind
		subject string
		ok      bool
	}{
		{
			name:    "workshop generated",
			event:   events.New(events.EventWorkshopGenerated, nil).WithSchema("positioning-workshop", 6),
			want:    KindWorkshopCompleted,
			subject: "positioning-workshop",
			ok:      true,
		},
		{
			name:    "workshop saved",
			event:   events.New(events.EventWorkshopSaved, nil).WithSchema("positioning-workshop", 6),
			want:    KindMapSaved,
			subject: "positioning-workshop",
			ok:      true,
		},
		{
			name:    "cohort created",
			event:   events.New(events.EventCohortCreated, nil).WithCohort("c-123"),
			want:    KindCohortCreated,
			subject: "c-123",
			ok:      true,
		},
		{
			name:  "step advance is too noisy for the feed",
			event: events.New(events.EventWorkshopStepAdvanced, nil),
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := FromBusEvent(tt.event)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.want, entry.Kind)
			assert.Equal(t, tt.subject, entry.Subject)
			assert.Equal(t, "you", entry.Actor)
			assert.Equal(t, tt.event.Timestamp, entry.At)
		})
	}
}

func TestDescribe_CoversAllKinds(t *testing.T) {
	e := Event{Actor: "maya", Subject: "Agency owners"}
	for _, kind := range mockKinds {
		e.Kind = kind
		assert.NotEmpty(t, e.Describe())
		assert.Contains(t, e.Describe(), "maya")
	}
}
