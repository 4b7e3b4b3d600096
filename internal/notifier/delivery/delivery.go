// Package delivery defines the contract between the notifier and the chat
// service that receives rendered messages.
package delivery

import (
	"context"
	"fmt"

	"herald/internal/notifier/message"
	"herald/pkg/platform/sentinel"
)

// Request addresses one rendered message to a channel.
type Request struct {
	Channel  string
	Token    string
	Title    string
	Segments []message.Segment
}

// NewRequest addresses msg to channel using token.
func NewRequest(channel, token string, msg message.Message) Request {
	return Request{
		Channel:  channel,
		Token:    token,
		Title:    msg.Title,
		Segments: msg.Segments,
	}
}

// Sink delivers a request. A nil error means the chat service accepted it.
// Implementations must not retry; the notifier is best-effort.
type Sink interface {
	Deliver(ctx context.Context, req Request) error
}

// ResponseError is returned when the chat service answered but refused the
// message. Code is the service's own error identifier.
type ResponseError struct {
	Code string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("chat service rejected message: %s", e.Code)
}

func (e *ResponseError) Unwrap() error {
	return sentinel.ErrRejected
}
