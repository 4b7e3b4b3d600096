package notifier

import (
	"log/slog"
	"time"

	"herald/internal/notifier/message"
	"herald/internal/platform/metrics"
)

// Option configures the notifier components built by a Factory.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	metrics         *metrics.Metrics
	renderer        *message.Renderer
	deliveryTimeout time.Duration
}

func newOptions(opts []Option) options {
	o := options{deliveryTimeout: defaultDeliveryTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.renderer == nil {
		o.renderer = message.NewRenderer(nil)
	}
	return o
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRenderer sets the message renderer, typically one bound to the
// operator's time offset.
func WithRenderer(r *message.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithDeliveryTimeout bounds each sink call. Zero disables the bound.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(o *options) {
		o.deliveryTimeout = d
	}
}
