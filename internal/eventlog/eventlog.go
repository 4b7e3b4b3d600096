// Package eventlog is the host's own record of every event it receives. Appends
// join the caller's unit of work, so a failed append rolls the unit back and
// its notifications are discarded with it.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"herald/internal/events"
	"herald/pkg/platform/sentinel"
)

// Categories stored alongside each record.
const (
	CategoryEvent      = "event"
	CategoryAdminEvent = "admin_event"
)

// Record is one persisted event.
type Record struct {
	ID         uuid.UUID
	Category   string
	Kind       string
	RealmID    string
	OccurredAt time.Time
	ReceivedAt time.Time
	Payload    json.RawMessage
}

// Store appends and lists event records.
type Store interface {
	Append(ctx context.Context, event events.Event) (Record, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// NewRecord builds the record for event received at now.
func NewRecord(event events.Event, now time.Time) (Record, error) {
	rec := Record{
		ID:         uuid.New(),
		ReceivedAt: now.UTC(),
	}

	var payload any
	switch e := event.(type) {
	case events.ActivityEvent:
		rec.Category = CategoryEvent
		rec.Kind = e.Kind.String()
		rec.RealmID = e.RealmID
		payload = e
	case events.AdminEvent:
		rec.Category = CategoryAdminEvent
		rec.Kind = e.Operation.String()
		rec.RealmID = e.RealmID
		payload = storableAdmin(e)
	default:
		return Record{}, fmt.Errorf("record %T: %w", event, sentinel.ErrMalformed)
	}
	rec.OccurredAt = time.UnixMilli(event.OccurredAt()).UTC()

	raw, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s payload: %w", rec.Category, err)
	}
	rec.Payload = raw
	return rec, nil
}

// storableAdmin keeps a representation that is not valid JSON as a JSON
// string so the event is still recorded verbatim.
func storableAdmin(e events.AdminEvent) events.AdminEvent {
	if len(e.Representation) == 0 || json.Valid(e.Representation) {
		return e
	}
	quoted, _ := json.Marshal(string(e.Representation))
	e.Representation = quoted
	return e
}
