package policy

import "herald/internal/events"

// ShouldAdmit reports whether event warrants a notification under p.
// It is a pure set-membership test.
func ShouldAdmit(event events.Event, p Policy) bool {
	switch e := event.(type) {
	case events.ActivityEvent:
		return p.SupportsEvent(e.Kind)
	case *events.ActivityEvent:
		return e != nil && p.SupportsEvent(e.Kind)
	case events.AdminEvent:
		return p.SupportsAdminOperation(e.Operation)
	case *events.AdminEvent:
		return e != nil && p.SupportsAdminOperation(e.Operation)
	default:
		return false
	}
}

// Admits is ShouldAdmit with the policy as receiver.
func (p Policy) Admits(event events.Event) bool {
	return ShouldAdmit(event, p)
}
