package notifier

import (
	"herald/internal/events"
	"herald/internal/notifier/delivery"
	"herald/internal/platform/metrics"
	"herald/internal/policy"
	"herald/internal/unitofwork"
)

// Listener receives the events raised inside one unit of work and queues
// those the policy admits.
type Listener struct {
	policy  policy.Policy
	buffer  *Buffer
	metrics *metrics.Metrics

	admitted int
}

// OnEvent queues e when its kind is supported.
func (l *Listener) OnEvent(e events.ActivityEvent) {
	ok := l.policy.Admits(e)
	l.metrics.IncFiltered(metrics.TypeEvent, ok)
	if !ok {
		return
	}
	l.admitted++
	l.buffer.AddEvent(e)
}

// OnAdminEvent queues e when its operation is supported. includeRepresentation
// travels with the event to delivery time.
func (l *Listener) OnAdminEvent(e events.AdminEvent, includeRepresentation bool) {
	ok := l.policy.Admits(e)
	l.metrics.IncFiltered(metrics.TypeAdminEvent, ok)
	if !ok {
		return
	}
	l.admitted++
	l.buffer.AddAdminEvent(e, includeRepresentation)
}

// Admitted reports how many events this listener queued.
func (l *Listener) Admitted() int { return l.admitted }

// Factory builds one Listener per unit of work. It is safe for concurrent use;
// the listeners it returns are not.
type Factory struct {
	policy  policy.Policy
	sender  *Sender
	opts    []Option
	metrics *metrics.Metrics
}

// NewFactory creates a Factory delivering through sink under p.
func NewFactory(p policy.Policy, sink delivery.Sink, opts ...Option) *Factory {
	o := newOptions(opts)
	return &Factory{
		policy:  p,
		sender:  NewSender(p, sink, opts...),
		opts:    opts,
		metrics: o.metrics,
	}
}

// Create opens a buffer for uow and ties its fate to the unit's completion.
func (f *Factory) Create(uow unitofwork.UnitOfWork, unit UnitContext) *Listener {
	buffer := NewBuffer(unit, f.sender, f.opts...)
	uow.OnSuccess(buffer.OnSuccess)
	uow.OnFailure(buffer.OnFailure)
	return &Listener{
		policy:  f.policy,
		buffer:  buffer,
		metrics: f.metrics,
	}
}
