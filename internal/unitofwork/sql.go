package unitofwork

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"herald/pkg/platform/sentinel"
	txcontext "herald/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// SQLRunner binds each unit of work to a database transaction. The
// transaction travels in the context so stores can join it.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// SQLOption configures an SQLRunner.
type SQLOption func(*SQLRunner)

// WithTimeout bounds transactions started without a caller deadline.
func WithTimeout(d time.Duration) SQLOption {
	return func(r *SQLRunner) {
		r.timeout = d
	}
}

// WithLogger sets the logger handed to each scope.
func WithLogger(logger *slog.Logger) SQLOption {
	return func(r *SQLRunner) {
		r.logger = logger
	}
}

func NewSQLRunner(db *sql.DB, opts ...SQLOption) *SQLRunner {
	r := &SQLRunner{db: db, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run begins a transaction, invokes fn and commits when fn succeeds. The
// scope completes after commit or rollback, never before.
func (r *SQLRunner) Run(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	scope := NewScope(r.logger)
	outer := ctx

	txCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(txCtx, nil)
	if err != nil {
		err = fmt.Errorf("begin transaction: %w: %w", sentinel.ErrUnavailable, err)
		scope.Complete(outer, err)
		return err
	}
	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			scope.Complete(outer, errPanicked)
			panic(rec)
		}
	}()

	if err = fn(txcontext.WithTx(txCtx, tx), scope); err != nil {
		_ = tx.Rollback()
		scope.Complete(outer, err)
		return err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit transaction: %w", err)
		scope.Complete(outer, err)
		return err
	}
	scope.Complete(outer, nil)
	return nil
}
