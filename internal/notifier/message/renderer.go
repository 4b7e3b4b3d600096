package message

import (
	"encoding/json"
	"fmt"
	"time"

	"herald/internal/events"
	"herald/pkg/platform/sentinel"
)

const (
	labelEventType = "Event type"
	labelWhen      = "When"
	labelRealm     = "Realm"
	labelClient    = "Client"
	labelResource  = "Resource"

	codeFence = "```"

	// TimeLayout is RFC 3339 with millisecond precision and an explicit offset.
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// EventTitle is the title of an activity event message.
func EventTitle(host string) string {
	return "New event has just occurred in Keycloak at " + host
}

// AdminEventTitle is the title of an admin event message.
func AdminEventTitle(host string) string {
	return "New admin event has just occurred in Keycloak at " + host
}

// Renderer turns events into messages. Times are shown in a fixed zone so the
// output never depends on the zone of the running process.
type Renderer struct {
	loc *time.Location
}

// NewRenderer creates a renderer showing times in loc; nil means UTC.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{loc: loc}
}

// ParseOffset turns "+02:00", "-0530" or "Z" into a fixed zone.
func ParseOffset(offset string) (*time.Location, error) {
	if offset == "" || offset == "Z" || offset == "UTC" {
		return time.UTC, nil
	}
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		t, err := time.Parse(layout, offset)
		if err != nil {
			continue
		}
		_, secs := t.Zone()
		return time.FixedZone(offset, secs), nil
	}
	return nil, fmt.Errorf("parse time offset %q: %w", offset, sentinel.ErrMalformed)
}

// FormatTime renders an epoch-millisecond timestamp in the renderer's zone.
func (r *Renderer) FormatTime(epochMillis int64) string {
	return time.UnixMilli(epochMillis).In(r.loc).Format(TimeLayout)
}

// RenderEvent builds the message for an activity event. It returns three
// segments, or four when includeRepresentation is set.
func (r *Renderer) RenderEvent(e events.ActivityEvent, realm, host string, includeRepresentation bool) (Message, error) {
	segments := []Segment{
		header(EventTitle(host)),
		fields(Field{labelEventType, e.Kind.String()}, Field{labelWhen, r.FormatTime(e.Time)}),
		fields(Field{labelRealm, realm}, Field{labelClient, e.ClientID}),
	}
	if includeRepresentation {
		rep, err := representation(e)
		if err != nil {
			return Message{}, fmt.Errorf("render %s event: %w", e.Kind, err)
		}
		segments = append(segments, rep)
	}
	return Message{Title: EventTitle(host), Segments: segments}, nil
}

// RenderAdminEvent builds the message for an admin event with the same shape
// as RenderEvent, showing the resource type where events show the client.
func (r *Renderer) RenderAdminEvent(e events.AdminEvent, realm, host string, includeRepresentation bool) (Message, error) {
	segments := []Segment{
		header(AdminEventTitle(host)),
		fields(Field{labelEventType, e.Operation.String()}, Field{labelWhen, r.FormatTime(e.Time)}),
		fields(Field{labelRealm, realm}, Field{labelResource, e.ResourceType}),
	}
	if includeRepresentation {
		rep, err := representation(e)
		if err != nil {
			return Message{}, fmt.Errorf("render %s admin event: %w", e.Operation, err)
		}
		segments = append(segments, rep)
	}
	return Message{Title: AdminEventTitle(host), Segments: segments}, nil
}

func header(title string) Segment {
	return Segment{Type: SegmentHeader, Text: title}
}

func fields(left, right Field) Segment {
	return Segment{Type: SegmentFields, Fields: []Field{left, right}}
}

func representation(v any) (Segment, error) {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Segment{}, fmt.Errorf("serialize representation: %w: %w", sentinel.ErrMalformed, err)
	}
	return Segment{Type: SegmentRepresentation, Text: codeFence + string(pretty) + codeFence}, nil
}
