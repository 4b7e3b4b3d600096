package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"herald/internal/events"
	"herald/internal/notifier/delivery"
	"herald/internal/notifier/message"
	"herald/internal/platform/metrics"
	"herald/internal/policy"
	"herald/pkg/platform/sentinel"
)

const (
	tracerName             = "herald/notifier"
	defaultDeliveryTimeout = 10 * time.Second
)

// errSinkPanicked marks a delivery whose sink panicked. The panic is contained
// so the remaining notifications of the unit still go out.
var errSinkPanicked = errors.New("delivery sink panicked")

// UnitContext carries what a unit of work knows about where its events came
// from. Realm is the display name shown in messages; Host is the server
// address shown in titles.
type UnitContext struct {
	Realm string
	Host  string
}

// Sender renders single events and hands them to the delivery sink. Send
// failures are logged and counted, never propagated into the host's work.
type Sender struct {
	policy   policy.Policy
	sink     delivery.Sink
	renderer *message.Renderer
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// NewSender creates a Sender for p that delivers through sink.
func NewSender(p policy.Policy, sink delivery.Sink, opts ...Option) *Sender {
	o := newOptions(opts)
	return &Sender{
		policy:   p,
		sink:     sink,
		renderer: o.renderer,
		timeout:  o.deliveryTimeout,
		logger:   o.logger,
		metrics:  o.metrics,
		tracer:   otel.Tracer(tracerName),
	}
}

// AdminRepresentation decides whether an admin event's serialized form is
// attached. Both the policy's admin flag and the flag recorded when the
// event was admitted must allow it.
func AdminRepresentation(p policy.Policy, admitted bool) bool {
	return p.IncludeAdminRepresentation() && admitted
}

// SendEvent renders and delivers one activity event.
func (s *Sender) SendEvent(ctx context.Context, unit UnitContext, e events.ActivityEvent) error {
	msg, err := s.renderer.RenderEvent(e, unit.Realm, unit.Host, s.policy.IncludeEventRepresentation())
	return s.send(ctx, metrics.TypeEvent, e.Kind.String(), msg, err)
}

// SendAdminEvent renders and delivers one admin event. includeRepresentation
// is the flag supplied when the event was admitted.
func (s *Sender) SendAdminEvent(ctx context.Context, unit UnitContext, e events.AdminEvent, includeRepresentation bool) error {
	msg, err := s.renderer.RenderAdminEvent(e, unit.Realm, unit.Host, AdminRepresentation(s.policy, includeRepresentation))
	return s.send(ctx, metrics.TypeAdminEvent, e.Operation.String(), msg, err)
}

func (s *Sender) send(ctx context.Context, eventType, kind string, msg message.Message, renderErr error) error {
	ctx, span := s.tracer.Start(ctx, "notifier.deliver",
		trace.WithAttributes(
			attribute.String("herald.event.type", eventType),
			attribute.String("herald.event.kind", kind),
		),
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if renderErr != nil {
		s.fail(ctx, span, eventType, kind, renderErr)
		return renderErr
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.deliver(ctx, delivery.NewRequest(s.policy.Channel(), s.policy.Token(), msg))
	s.metrics.ObserveDelivery(start)
	if err != nil {
		err = fmt.Errorf("deliver %s notification: %w", kind, err)
		s.fail(ctx, span, eventType, kind, err)
		return err
	}

	s.metrics.IncDelivered(eventType)
	s.logger.DebugContext(ctx, "notification delivered",
		"event_type", eventType,
		"kind", kind,
		"channel", s.policy.Channel(),
	)
	return nil
}

func (s *Sender) deliver(ctx context.Context, req delivery.Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errSinkPanicked, r)
		}
	}()
	return s.sink.Deliver(ctx, req)
}

func (s *Sender) fail(ctx context.Context, span trace.Span, eventType, kind string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.IncFailed(eventType, failureReason(err))
	s.logger.ErrorContext(ctx, "failed to send notification",
		"event_type", eventType,
		"kind", kind,
		"error", err,
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errSinkPanicked):
		return "panic"
	case errors.Is(err, sentinel.ErrMalformed):
		return "render"
	case errors.Is(err, sentinel.ErrRejected):
		return "rejected"
	case errors.Is(err, sentinel.ErrMisconfigured):
		return "misconfigured"
	case errors.Is(err, sentinel.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "other"
	}
}
