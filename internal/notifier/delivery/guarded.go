package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"herald/pkg/platform/circuit"
	"herald/pkg/platform/sentinel"
)

// GuardedSink stops calling next while the chat service is unreachable.
// Only ErrUnavailable failures trip the breaker. Success or a refusal proves
// the service is up; any other error says nothing about it and is not
// recorded.
type GuardedSink struct {
	next    Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewGuardedSink wraps next with breaker. A nil logger discards output.
func NewGuardedSink(next Sink, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GuardedSink{next: next, breaker: breaker, logger: logger}
}

func (g *GuardedSink) Deliver(ctx context.Context, req Request) error {
	if !g.breaker.Allow() {
		return fmt.Errorf("%s circuit open: %w", g.breaker.Name(), sentinel.ErrUnavailable)
	}

	err := g.next.Deliver(ctx, req)
	switch {
	case err == nil, errors.Is(err, sentinel.ErrRejected):
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "chat service reachable again, resuming deliveries",
				"breaker", g.breaker.Name(),
			)
		}
	case errors.Is(err, sentinel.ErrUnavailable):
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "chat service unreachable, pausing deliveries",
				"breaker", g.breaker.Name(),
				"error", err,
			)
		}
	}
	return err
}
