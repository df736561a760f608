package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_EmptyMatchesEverything(t *testing.T) {
	f := Filter{}
	events := []Event{
		NewRoutingEvent(RoutingPayload{Provider: "openAI"}),
		NewPerformanceEvent(PerformancePayload{Provider: "ollama"}),
		NewAuditEvent(AuditPayload{Action: "export"}),
	}
	for _, ev := range events {
		assert.True(t, f.Matches(&ev))
	}
}

func TestFilter_Conjunction(t *testing.T) {
	ev := NewRoutingEvent(RoutingPayload{
		TaskType:  "completion",
		Provider:  "openAI",
		ModelName: "gpt-4",
		IsLocal:   false,
	})

	f := Filter{Provider: "openAI", TaskType: "completion"}
	assert.True(t, f.Matches(&ev))

	// One failing predicate excludes the event even when others match.
	f.ModelName = "claude"
	assert.False(t, f.Matches(&ev))
}

func TestFilter_VariantMismatchExcludes(t *testing.T) {
	audit := NewAuditEvent(AuditPayload{Action: "export"})

	// Audit events carry no provider field, so a provider filter never
	// matches them.
	f := Filter{Provider: "openAI"}
	assert.False(t, f.Matches(&audit))

	local := true
	f = Filter{IsLocal: &local}
	assert.False(t, f.Matches(&audit))
}

func TestFilter_IsLocal(t *testing.T) {
	localEv := NewPerformanceEvent(PerformancePayload{IsLocal: true})
	remoteEv := NewPerformanceEvent(PerformancePayload{IsLocal: false})

	local := true
	f := Filter{IsLocal: &local}
	assert.True(t, f.Matches(&localEv))
	assert.False(t, f.Matches(&remoteEv))
}

func TestFilter_TimeRangeInclusive(t *testing.T) {
	ev := NewAuditEvent(AuditPayload{Action: "export"})
	ev.TimestampMillis = 5000

	assert.True(t, (&Filter{TimeRange: &TimeRange{StartMillis: 5000, EndMillis: 6000}}).Matches(&ev))
	assert.True(t, (&Filter{TimeRange: &TimeRange{StartMillis: 4000, EndMillis: 5000}}).Matches(&ev))
	assert.False(t, (&Filter{TimeRange: &TimeRange{StartMillis: 5001, EndMillis: 6000}}).Matches(&ev))
	assert.False(t, (&Filter{TimeRange: &TimeRange{StartMillis: 4000, EndMillis: 4999}}).Matches(&ev))
}

func TestFilter_PredicateFields(t *testing.T) {
	local := true
	f := Filter{
		EventType: EventRouting,
		Provider:  "openAI",
		IsLocal:   &local,
		TimeRange: &TimeRange{StartMillis: 0, EndMillis: 1},
	}
	assert.ElementsMatch(t, []string{"eventType", "provider", "isLocal", "timeRange"}, f.PredicateFields())

	empty := Filter{}
	assert.Empty(t, empty.PredicateFields())
}
