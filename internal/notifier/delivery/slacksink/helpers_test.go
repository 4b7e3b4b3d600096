package slacksink

import "herald/internal/events"

func testEvent() events.ActivityEvent {
	return events.ActivityEvent{
		Time:     1614852930123,
		Kind:     events.EventLogin,
		ClientID: "account-console",
	}
}
