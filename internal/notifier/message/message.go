// Package message renders events into chat messages. Rendering is pure: the
// same event, context and flag always produce the same Message.
package message

import (
	"fmt"
	"strings"
)

// SegmentType identifies how a segment is laid out by a delivery sink.
type SegmentType string

const (
	// SegmentHeader is a single markdown line carrying the title.
	SegmentHeader SegmentType = "header"
	// SegmentFields is a pair of labelled values shown side by side.
	SegmentFields SegmentType = "fields"
	// SegmentRepresentation is a code block with the serialized event.
	SegmentRepresentation SegmentType = "representation"
)

// Field is one labelled value of a fields segment.
type Field struct {
	Label string
	Value string
}

// Markdown renders the field as a bold label followed by the value.
func (f Field) Markdown() string {
	return fmt.Sprintf("*%s:*\n%s", f.Label, f.Value)
}

// Segment is one block of a rendered message.
type Segment struct {
	Type   SegmentType
	Text   string
	Fields []Field
}

// Message is a title plus ordered segments.
type Message struct {
	Title    string
	Segments []Segment
}

// String is a plain-text rendering, used in logs and tests.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Title)
	for _, seg := range m.Segments {
		b.WriteString("\n")
		switch seg.Type {
		case SegmentFields:
			parts := make([]string, 0, len(seg.Fields))
			for _, f := range seg.Fields {
				parts = append(parts, f.Label+": "+f.Value)
			}
			b.WriteString(strings.Join(parts, " | "))
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
