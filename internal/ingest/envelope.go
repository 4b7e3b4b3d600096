// Package ingest turns inbound event batches into units of work: each batch
// is recorded in the event log and offered to the notifier inside one unit.
package ingest

import (
	"encoding/json"
	"fmt"

	"herald/internal/events"
	"herald/pkg/platform/sentinel"
)

// Batch is the wire form of a group of events raised by one unit of work on
// the identity platform.
type Batch struct {
	Realm string `json:"realm"`
	Host  string `json:"host,omitempty"`
	Items []Item `json:"events"`
}

// Item carries exactly one of Event or AdminEvent.
type Item struct {
	Event                 *events.ActivityEvent `json:"event,omitempty"`
	AdminEvent            *AdminEvent           `json:"adminEvent,omitempty"`
	IncludeRepresentation *bool                 `json:"includeRepresentation,omitempty"`
}

// AdminEvent is the wire form of events.AdminEvent. The platform serializes
// the representation to a string before sending it.
type AdminEvent struct {
	Time           int64               `json:"time"`
	RealmID        string              `json:"realmId,omitempty"`
	AuthDetails    *events.AuthDetails `json:"authDetails,omitempty"`
	Operation      string              `json:"operationType"`
	ResourceType   string              `json:"resourceType,omitempty"`
	ResourcePath   string              `json:"resourcePath,omitempty"`
	Representation string              `json:"representation,omitempty"`
	Error          string              `json:"error,omitempty"`
}

// Entry is one decoded event in batch order.
type Entry struct {
	Event                 events.Event
	IncludeRepresentation bool
}

// Decode parses and validates a batch.
func Decode(raw []byte) (Batch, []Entry, error) {
	var batch Batch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return Batch{}, nil, fmt.Errorf("decode batch: %w: %w", sentinel.ErrMalformed, err)
	}
	entries, err := batch.Entries()
	if err != nil {
		return Batch{}, nil, err
	}
	return batch, entries, nil
}

// Entries converts the batch items into events, preserving order. An admin
// event without an explicit includeRepresentation flag defaults to true.
func (b Batch) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(b.Items))
	for i, item := range b.Items {
		switch {
		case item.Event != nil && item.AdminEvent != nil:
			return nil, fmt.Errorf("item %d carries both event kinds: %w", i, sentinel.ErrMalformed)
		case item.Event != nil:
			if item.Event.Kind == "" {
				return nil, fmt.Errorf("item %d: event type is required: %w", i, sentinel.ErrMalformed)
			}
			entries = append(entries, Entry{Event: *item.Event})
		case item.AdminEvent != nil:
			if item.AdminEvent.Operation == "" {
				return nil, fmt.Errorf("item %d: operation type is required: %w", i, sentinel.ErrMalformed)
			}
			include := true
			if item.IncludeRepresentation != nil {
				include = *item.IncludeRepresentation
			}
			entries = append(entries, Entry{Event: item.AdminEvent.toEvent(), IncludeRepresentation: include})
		default:
			return nil, fmt.Errorf("item %d carries no event: %w", i, sentinel.ErrMalformed)
		}
	}
	return entries, nil
}

// toEvent passes the representation through unchecked; a malformed one fails
// at render time for that event alone.
func (a AdminEvent) toEvent() events.AdminEvent {
	e := events.AdminEvent{
		Time:         a.Time,
		RealmID:      a.RealmID,
		AuthDetails:  a.AuthDetails,
		Operation:    events.OperationKind(a.Operation),
		ResourceType: a.ResourceType,
		ResourcePath: a.ResourcePath,
		Error:        a.Error,
	}
	if a.Representation != "" {
		e.Representation = json.RawMessage(a.Representation)
	}
	return e
}
