// Package events publishes registry change events so downstream consumers
// (CRM sync, notification pipelines) can react to merges and match runs
// without polling. Publishing is best-effort: services log publish failures
// and continue, the registry write is never rolled back.
package events

import (
	"context"
	"time"

	id "warmpath/pkg/domain"
)

// Event types emitted by the engine.
const (
	TypeContactCreated  = "contact.created"
	TypeContactMerged   = "contact.merged"
	TypeContactPurged   = "contact.purged"
	TypeProspectMatched = "prospect.matched"
)

// Event is one registry change notification.
type Event struct {
	Type      string      `json:"type"`
	TenantID  id.TenantID `json:"tenant_id"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	// Detail carries small event-specific facts (source kind, match counts).
	// Keep values short; this is a notification, not a data sync.
	Detail map[string]string `json:"detail,omitempty"`
}

// Publisher delivers events to a downstream transport.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards all events. Default when no transport is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
