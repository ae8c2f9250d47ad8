// Package audit captures reconciliation outcomes as structured events.
// Events are facts about what the pipeline decided, kept separate from the
// reconciliation reports themselves (which are user-facing text).
package audit

import (
	"context"
	"time"
)

// Action names what happened.
type Action string

const (
	ActionReconciliationCompleted Action = "reconciliation_completed"
	ActionReconciliationDegraded  Action = "reconciliation_degraded"
	ActionManualCheck             Action = "manual_check"
)

// Event is emitted from the pipeline to capture key outcomes. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Subject   string    `json:"subject"`
	VATNumber string    `json:"vat_number,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Operator  string    `json:"operator,omitempty"`
}

// Store persists audit events. Implementations: in-memory (tests, single
// process) and Kafka (durable, shared).
type Store interface {
	Append(ctx context.Context, event Event) error
}
