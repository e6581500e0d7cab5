package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryIntegrity covers events about sealed results: what was stored,
	// what was rejected.
	CategoryIntegrity EventCategory = "integrity"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Subject is the suite hash, session id or result id the event is about.
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	// Run events
	EventSuiteSealed   AuditEvent = "suite_sealed"
	EventSuiteRejected AuditEvent = "suite_rejected"

	// Result record events
	EventResultRecorded AuditEvent = "result_recorded"

	// Narrative events
	EventNarrativeGenerated AuditEvent = "narrative_generated"

	// Session events
	EventSessionStarted   AuditEvent = "session_started"
	EventSessionCompleted AuditEvent = "session_completed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventSuiteSealed:        CategoryIntegrity,
	EventSuiteRejected:      CategoryIntegrity,
	EventResultRecorded:     CategoryOperations,
	EventNarrativeGenerated: CategoryOperations,
	EventSessionStarted:     CategoryOperations,
	EventSessionCompleted:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists events. Stores must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read events back.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
