package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"herald/internal/events"
	"herald/internal/platform/metrics"
	"herald/pkg/platform/sentinel"
)

// State is the lifecycle position of a Buffer.
type State int

const (
	StateOpen State = iota
	StateFlushed
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateFlushed:
		return "flushed"
	case StateDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type entry struct {
	event                 events.Event
	includeRepresentation bool
}

// Buffer holds the admitted events of one unit of work until the unit
// completes. It is owned by that unit and must not be shared.
type Buffer struct {
	unit    UnitContext
	sender  *Sender
	logger  *slog.Logger
	metrics *metrics.Metrics

	state   State
	entries []entry
}

// NewBuffer opens an empty buffer for unit.
func NewBuffer(unit UnitContext, sender *Sender, opts ...Option) *Buffer {
	o := newOptions(opts)
	return &Buffer{
		unit:    unit,
		sender:  sender,
		logger:  o.logger,
		metrics: o.metrics,
		state:   StateOpen,
	}
}

// State reports the buffer's lifecycle position.
func (b *Buffer) State() State { return b.state }

// Len reports how many events are waiting.
func (b *Buffer) Len() int { return len(b.entries) }

// AddEvent queues an activity event. It panics once the buffer has completed.
func (b *Buffer) AddEvent(e events.ActivityEvent) {
	b.add(entry{event: e})
}

// AddAdminEvent queues an admin event together with the representation flag
// supplied at admission. It panics once the buffer has completed.
func (b *Buffer) AddAdminEvent(e events.AdminEvent, includeRepresentation bool) {
	b.add(entry{event: e, includeRepresentation: includeRepresentation})
}

func (b *Buffer) add(en entry) {
	if b.state != StateOpen {
		panic(fmt.Errorf("add to %s buffer: %w", b.state, sentinel.ErrInvalidState))
	}
	b.entries = append(b.entries, en)
}

// OnSuccess delivers every queued event in admission order. A failed
// delivery is logged and the remaining events are still sent.
func (b *Buffer) OnSuccess(ctx context.Context) {
	if !b.complete(ctx, StateFlushed) {
		return
	}
	entries := b.entries
	b.entries = nil

	ctx, span := b.sender.tracer.Start(ctx, "notifier.flush",
		trace.WithAttributes(attribute.Int("herald.batch.size", len(entries))))
	defer span.End()

	failed := 0
	for _, en := range entries {
		var err error
		switch e := en.event.(type) {
		case events.ActivityEvent:
			err = b.sender.SendEvent(ctx, b.unit, e)
		case events.AdminEvent:
			err = b.sender.SendAdminEvent(ctx, b.unit, e, en.includeRepresentation)
		}
		if err != nil {
			failed++
		}
	}

	b.metrics.IncBatch(metrics.OutcomeFlushed)
	b.logger.InfoContext(ctx, "notification batch flushed",
		"realm", b.unit.Realm,
		"events", len(entries),
		"failed", failed,
	)
}

// OnFailure drops every queued event without delivering any of them.
func (b *Buffer) OnFailure(ctx context.Context) {
	if !b.complete(ctx, StateDiscarded) {
		return
	}
	discarded := len(b.entries)
	b.entries = nil

	b.metrics.IncBatch(metrics.OutcomeDiscarded)
	b.logger.InfoContext(ctx, "notification batch discarded",
		"realm", b.unit.Realm,
		"events", discarded,
	)
}

// complete moves the buffer to a terminal state. It reports false when the
// buffer already completed, in which case nothing else happens.
func (b *Buffer) complete(ctx context.Context, to State) bool {
	if b.state != StateOpen {
		b.logger.WarnContext(ctx, "buffer completion ignored",
			"state", b.state.String(),
			"requested", to.String(),
		)
		return false
	}
	b.state = to
	return true
}
