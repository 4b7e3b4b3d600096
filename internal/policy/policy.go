// Package policy resolves notification directives into an immutable Policy and
// decides which incoming events warrant a notification.
package policy

import (
	"log/slog"

	"herald/internal/events"
)

// Policy is the resolved notification policy. It is never mutated after
// construction, so a single value can be shared by any number of goroutines.
type Policy struct {
	token                      string
	channel                    string
	supportedEvents            Set[events.EventKind]
	includeEventRepresentation bool
	supportedAdminOps          Set[events.OperationKind]
	includeAdminRepresentation bool
}

// Settings describes a Policy explicitly. Resolve derives one from directives;
// hosts with their own configuration source can build one directly.
type Settings struct {
	Token                      string
	Channel                    string
	Events                     []events.EventKind
	IncludeEventRepresentation bool
	AdminOperations            []events.OperationKind
	IncludeAdminRepresentation bool
}

// New builds a Policy from explicit settings.
func New(s Settings) Policy {
	return Policy{
		token:                      s.Token,
		channel:                    s.Channel,
		supportedEvents:            NewSet(s.Events...),
		includeEventRepresentation: s.IncludeEventRepresentation,
		supportedAdminOps:          NewSet(s.AdminOperations...),
		includeAdminRepresentation: s.IncludeAdminRepresentation,
	}
}

func (p Policy) Token() string   { return p.token }
func (p Policy) Channel() string { return p.channel }

// SupportedEvents returns the admitted activity kinds in lexical order.
func (p Policy) SupportedEvents() []events.EventKind { return p.supportedEvents.Sorted() }

// SupportedAdminOperations returns the admitted operation kinds in lexical order.
func (p Policy) SupportedAdminOperations() []events.OperationKind {
	return p.supportedAdminOps.Sorted()
}

func (p Policy) IncludeEventRepresentation() bool { return p.includeEventRepresentation }
func (p Policy) IncludeAdminRepresentation() bool { return p.includeAdminRepresentation }

// SupportsEvent reports whether activity events of kind k are admitted.
func (p Policy) SupportsEvent(k events.EventKind) bool { return p.supportedEvents.Has(k) }

// SupportsAdminOperation reports whether admin events of kind k are admitted.
func (p Policy) SupportsAdminOperation(k events.OperationKind) bool {
	return p.supportedAdminOps.Has(k)
}

// Option configures resolution.
type Option func(*resolver)

// WithLogger sets the logger that receives configuration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *resolver) {
		r.logger = logger
	}
}

type resolver struct {
	lookup Lookup
	logger *slog.Logger
}

// Resolve reads every directive through lookup and combines them into a Policy.
// It never fails: malformed values degrade to empty sets or defaults and
// unrecognized kinds are dropped with a warning.
func Resolve(lookup Lookup, opts ...Option) Policy {
	if lookup == nil {
		lookup = EnvLookup
	}
	r := &resolver{lookup: lookup}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	token, _ := r.lookup(EnvToken)
	channel, _ := r.lookup(EnvChannel)

	p := Policy{
		token:                      token,
		channel:                    channel,
		supportedEvents:            r.supportedEvents(),
		includeEventRepresentation: r.flag(EnvIncludeEventRepresentation, defaultIncludeRepresentation),
		supportedAdminOps:          r.supportedAdminOps(),
		includeAdminRepresentation: r.flag(EnvIncludeAdminEventRepresentation, defaultIncludeRepresentation),
	}

	r.logger.Info("notification policy resolved",
		"supported_events", len(p.supportedEvents),
		"supported_admin_operations", len(p.supportedAdminOps),
		"include_event_representation", p.includeEventRepresentation,
		"include_admin_event_representation", p.includeAdminRepresentation,
		"token_configured", token != "",
		"channel_configured", channel != "",
	)
	return p
}

func (r *resolver) supportedEvents() Set[events.EventKind] {
	universe := NewSet(events.AllEventKinds()...)
	if r.flag(EnvIncludeAllEvents, false) {
		return universe
	}
	return r.baseEvents(universe).Union(r.errorEvents())
}

func (r *resolver) baseEvents(universe Set[events.EventKind]) Set[events.EventKind] {
	if included := parseDirective(r, EnvIncludeEvents, universe); len(included) > 0 {
		return included
	}
	if excluded := parseDirective(r, EnvIncludeAllEventsExcept, universe); len(excluded) > 0 {
		return universe.Without(excluded)
	}
	return Set[events.EventKind]{}
}

func (r *resolver) errorEvents() Set[events.EventKind] {
	errorKinds := NewSet(events.ErrorEventKinds()...)
	if r.flag(EnvIncludeAllErrors, false) {
		return errorKinds
	}
	// Exclusions are matched against the whole universe so that naming a
	// non-error kind is accepted silently and simply has no effect.
	excluded := parseDirective(r, EnvIncludeAllErrorsExcept, NewSet(events.AllEventKinds()...))
	if len(excluded) > 0 {
		return errorKinds.Without(excluded)
	}
	return Set[events.EventKind]{}
}

func (r *resolver) supportedAdminOps() Set[events.OperationKind] {
	universe := NewSet(events.AllOperationKinds()...)
	if r.flag(EnvIncludeAllAdminEvents, false) {
		return universe
	}
	if included := parseDirective(r, EnvIncludeAdminEvents, universe); len(included) > 0 {
		return included
	}
	return Set[events.OperationKind]{}
}

func (r *resolver) flag(name string, def bool) bool {
	raw, present := r.lookup(name)
	return ParseBool(raw, present, def)
}

func parseDirective[K ~string](r *resolver, name string, known Set[K]) Set[K] {
	raw, _ := r.lookup(name)
	return ParseList(raw, known, func(token string) {
		r.logger.Warn("not recognized event type in notification configuration",
			"directive", name,
			"value", token,
		)
	})
}
