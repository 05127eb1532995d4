// Package audit defines the administrative audit trail: statute and
// public-body mutations are long-lived, rarely changed records, so every
// change is worth an event.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventStatuteCreated       EventKind = "statute.created"
	EventPublicBodyConfirmed  EventKind = "public_body.confirmed"
	EventPublicBodyReparented EventKind = "public_body.reparented"
)

// Event is one audit record. Details carries event-specific fields and must
// stay JSON-serializable.
type Event struct {
	Kind      EventKind      `json:"kind"`
	SubjectID uuid.UUID      `json:"subject_id"`
	At        time.Time      `json:"at"`
	Details   map[string]any `json:"details,omitempty"`
}

// Publisher delivers audit events. Delivery is best effort: publishers log
// failures but never propagate them into the mutating request.
type Publisher interface {
	Emit(ctx context.Context, e Event)
}

// Noop drops all events; the default when auditing is not configured.
type Noop struct{}

func (Noop) Emit(context.Context, Event) {}

// Log writes events to the structured log, the fallback when no broker is
// configured.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Emit(ctx context.Context, e Event) {
	l.Logger.InfoContext(ctx, "audit event",
		"kind", string(e.Kind),
		"subject_id", e.SubjectID,
		"at", e.At,
		"details", e.Details,
	)
}
