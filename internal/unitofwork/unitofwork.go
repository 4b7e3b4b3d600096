// Package unitofwork models the host's transactional scope: a group of work
// that ends exactly once, either committed or rolled back, and notifies
// interested parties after the fact.
package unitofwork

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// UnitOfWork accepts completion callbacks. Success callbacks run after the
// work commits; failure callbacks run after it rolls back.
type UnitOfWork interface {
	OnSuccess(fn func(ctx context.Context))
	OnFailure(fn func(ctx context.Context))
}

// Runner executes fn inside a fresh unit of work and completes it with the
// outcome of fn.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}

var errPanicked = errors.New("unit of work panicked")

// Scope is the in-process UnitOfWork implementation used by every Runner.
type Scope struct {
	id     uuid.UUID
	logger *slog.Logger

	mu        sync.Mutex
	success   []func(context.Context)
	failure   []func(context.Context)
	completed bool
}

// NewScope opens a scope. A nil logger discards output.
func NewScope(logger *slog.Logger) *Scope {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scope{id: uuid.New(), logger: logger}
}

// ID identifies the scope in logs.
func (s *Scope) ID() uuid.UUID {
	return s.id
}

func (s *Scope) OnSuccess(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.success = append(s.success, fn)
}

func (s *Scope) OnFailure(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = append(s.failure, fn)
}

// Complete runs the success callbacks when err is nil and the failure
// callbacks otherwise, in registration order. Only the first call has any
// effect. Callbacks receive a context detached from ctx's cancellation so a
// departed caller cannot abort post-commit work.
func (s *Scope) Complete(ctx context.Context, err error) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "unit of work already completed", "unit_id", s.id.String())
		return
	}
	s.completed = true
	callbacks := s.success
	if err != nil {
		callbacks = s.failure
	}
	s.success, s.failure = nil, nil
	s.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	for _, fn := range callbacks {
		fn(detached)
	}
}

// MemoryRunner runs units of work with no backing transaction. The unit
// commits when fn returns nil.
type MemoryRunner struct {
	logger *slog.Logger
}

// NewMemoryRunner creates a runner; a nil logger discards output.
func NewMemoryRunner(logger *slog.Logger) *MemoryRunner {
	return &MemoryRunner{logger: logger}
}

func (r *MemoryRunner) Run(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) (err error) {
	scope := NewScope(r.logger)
	defer completeOnPanic(ctx, scope)

	err = fn(ctx, scope)
	scope.Complete(ctx, err)
	return err
}

// completeOnPanic fails the scope before letting a panic continue.
func completeOnPanic(ctx context.Context, scope *Scope) {
	if rec := recover(); rec != nil {
		scope.Complete(ctx, errPanicked)
		panic(rec)
	}
}
