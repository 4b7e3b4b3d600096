package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"herald/internal/eventlog"
	"herald/internal/events"
	"herald/internal/notifier"
	"herald/internal/unitofwork"
)

// Result summarizes one processed batch.
type Result struct {
	Received int `json:"received"`
	Admitted int `json:"admitted"`
}

// Processor runs each batch as one unit of work.
type Processor struct {
	runner      unitofwork.Runner
	store       eventlog.Store
	factory     *notifier.Factory
	defaultHost string
	logger      *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithDefaultHost sets the host shown in titles when a batch names none.
func WithDefaultHost(host string) Option {
	return func(p *Processor) {
		p.defaultHost = host
	}
}

func NewProcessor(runner unitofwork.Runner, store eventlog.Store, factory *notifier.Factory, opts ...Option) *Processor {
	p := &Processor{
		runner:  runner,
		store:   store,
		factory: factory,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process records every entry and offers it to the notifier inside a single
// unit of work. Notifications go out only if the unit commits.
func (p *Processor) Process(ctx context.Context, batch Batch, entries []Entry) (Result, error) {
	unit := notifier.UnitContext{Realm: batch.Realm, Host: batch.Host}
	if unit.Host == "" {
		unit.Host = p.defaultHost
	}

	result := Result{Received: len(entries)}
	err := p.runner.Run(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		listener := p.factory.Create(uow, unit)
		for _, en := range entries {
			if _, err := p.store.Append(ctx, en.Event); err != nil {
				return fmt.Errorf("record event: %w", err)
			}
			switch e := en.Event.(type) {
			case events.ActivityEvent:
				listener.OnEvent(e)
			case events.AdminEvent:
				listener.OnAdminEvent(e, en.IncludeRepresentation)
			}
		}
		result.Admitted = listener.Admitted()
		return nil
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "event batch rolled back",
			"realm", batch.Realm,
			"events", len(entries),
			"error", err,
		)
		return Result{Received: len(entries)}, err
	}

	p.logger.InfoContext(ctx, "event batch processed",
		"realm", batch.Realm,
		"received", result.Received,
		"admitted", result.Admitted,
	)
	return result, nil
}
