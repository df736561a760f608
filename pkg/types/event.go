// Package types defines the event model shared by all skald components.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Event types form a closed set. Each event carries exactly one payload
// matching its type.
const (
	EventRouting     = "routing"
	EventPerformance = "performance"
	EventAudit       = "audit"
)

// Event is the common envelope for all telemetry records. Events are
// immutable once flushed to a partition; the only mutation allowed is
// patching outcome fields on a routing event while it is still buffered.
type Event struct {
	EventType       string `json:"eventType"`
	EventID         string `json:"eventId"`
	TimestampMillis int64  `json:"timestampMillis"`

	Routing     *RoutingPayload     `json:"routing,omitempty"`
	Performance *PerformancePayload `json:"performance,omitempty"`
	Audit       *AuditPayload       `json:"audit,omitempty"`
}

// RoutingPayload describes a model-routing decision. The outcome fields
// (UserAccepted onward) are unknown at creation time and arrive later via
// a Patch.
type RoutingPayload struct {
	TaskType        string  `json:"taskType"`
	Provider        string  `json:"provider"`
	ModelName       string  `json:"modelName"`
	IsLocal         bool    `json:"isLocal"`
	Confidence      float64 `json:"confidence"`
	LatencyMillis   int64   `json:"latencyMillis"`
	TokensPerSecond float64 `json:"tokensPerSecond"`

	UserAccepted        *bool    `json:"userAccepted,omitempty"`
	UserModified        *bool    `json:"userModified,omitempty"`
	EditDistance        *int     `json:"editDistance,omitempty"`
	DerivedQualityScore *float64 `json:"derivedQualityScore,omitempty"`
}

// PerformancePayload describes a latency/throughput sample.
type PerformancePayload struct {
	TaskType        string  `json:"taskType"`
	Provider        string  `json:"provider"`
	ModelName       string  `json:"modelName"`
	IsLocal         bool    `json:"isLocal"`
	LatencyMillis   int64   `json:"latencyMillis"`
	TokensPerSecond float64 `json:"tokensPerSecond"`
}

// AuditPayload describes a user- or system-initiated audit action.
type AuditPayload struct {
	Action   string `json:"action"`
	Actor    string `json:"actor"`
	Resource string `json:"resource,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Patch carries the late-arriving outcome fields for a routing event.
// Nil fields are left untouched.
type Patch struct {
	UserAccepted        *bool
	UserModified        *bool
	EditDistance        *int
	DerivedQualityScore *float64
}

// NewRoutingEvent creates a routing event with a fresh id and timestamp.
func NewRoutingEvent(p RoutingPayload) Event {
	return Event{
		EventType:       EventRouting,
		EventID:         uuid.NewString(),
		TimestampMillis: time.Now().UnixMilli(),
		Routing:         &p,
	}
}

// NewPerformanceEvent creates a performance event with a fresh id and timestamp.
func NewPerformanceEvent(p PerformancePayload) Event {
	return Event{
		EventType:       EventPerformance,
		EventID:         uuid.NewString(),
		TimestampMillis: time.Now().UnixMilli(),
		Performance:     &p,
	}
}

// NewAuditEvent creates an audit event with a fresh id and timestamp.
func NewAuditEvent(p AuditPayload) Event {
	return Event{
		EventType:       EventAudit,
		EventID:         uuid.NewString(),
		TimestampMillis: time.Now().UnixMilli(),
		Audit:           &p,
	}
}

// ApplyPatch merges non-nil patch fields into a routing payload.
// Returns false for non-routing events, which carry no outcome fields.
func (e *Event) ApplyPatch(p Patch) bool {
	if e.Routing == nil {
		return false
	}
	if p.UserAccepted != nil {
		e.Routing.UserAccepted = p.UserAccepted
	}
	if p.UserModified != nil {
		e.Routing.UserModified = p.UserModified
	}
	if p.EditDistance != nil {
		e.Routing.EditDistance = p.EditDistance
	}
	if p.DerivedQualityScore != nil {
		e.Routing.DerivedQualityScore = p.DerivedQualityScore
	}
	return true
}

// TaskType returns the task type carried by the event's variant.
// The second return value is false for variants without the field.
func (e *Event) TaskType() (string, bool) {
	switch {
	case e.Routing != nil:
		return e.Routing.TaskType, true
	case e.Performance != nil:
		return e.Performance.TaskType, true
	}
	return "", false
}

// Provider returns the provider carried by the event's variant.
func (e *Event) Provider() (string, bool) {
	switch {
	case e.Routing != nil:
		return e.Routing.Provider, true
	case e.Performance != nil:
		return e.Performance.Provider, true
	}
	return "", false
}

// ModelName returns the model name carried by the event's variant.
func (e *Event) ModelName() (string, bool) {
	switch {
	case e.Routing != nil:
		return e.Routing.ModelName, true
	case e.Performance != nil:
		return e.Performance.ModelName, true
	}
	return "", false
}

// IsLocal reports whether the event's variant targeted a local model.
func (e *Event) IsLocal() (bool, bool) {
	switch {
	case e.Routing != nil:
		return e.Routing.IsLocal, true
	case e.Performance != nil:
		return e.Performance.IsLocal, true
	}
	return false, false
}

// Validate checks the envelope and that the payload matches the declared type.
func (e *Event) Validate() error {
	if e.EventID == "" {
		return ErrMissingEventID
	}
	switch e.EventType {
	case EventRouting:
		if e.Routing == nil {
			return ErrPayloadMismatch
		}
	case EventPerformance:
		if e.Performance == nil {
			return ErrPayloadMismatch
		}
	case EventAudit:
		if e.Audit == nil {
			return ErrPayloadMismatch
		}
	default:
		return ErrUnknownEventType
	}
	return nil
}
