package unitofwork

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ScopeSuite struct {
	suite.Suite
	scope *Scope
	calls []string
}

func TestScopeSuite(t *testing.T) {
	suite.Run(t, new(ScopeSuite))
}

func (s *ScopeSuite) SetupTest() {
	s.scope = NewScope(nil)
	s.calls = nil
}

func (s *ScopeSuite) record(name string) func(context.Context) {
	return func(context.Context) { s.calls = append(s.calls, name) }
}

// =============================================================================
// Completion
// =============================================================================

func (s *ScopeSuite) TestCompleteSuccessRunsSuccessCallbacksInOrder() {
	s.scope.OnSuccess(s.record("first"))
	s.scope.OnFailure(s.record("failure"))
	s.scope.OnSuccess(s.record("second"))

	s.scope.Complete(context.Background(), nil)

	s.Equal([]string{"first", "second"}, s.calls)
}

func (s *ScopeSuite) TestCompleteFailureRunsFailureCallbacks() {
	s.scope.OnSuccess(s.record("success"))
	s.scope.OnFailure(s.record("failure"))

	s.scope.Complete(context.Background(), errors.New("rollback"))

	s.Equal([]string{"failure"}, s.calls)
}

func (s *ScopeSuite) TestSecondCompletionIsIgnored() {
	s.scope.OnSuccess(s.record("success"))
	s.scope.OnFailure(s.record("failure"))

	s.scope.Complete(context.Background(), nil)
	s.scope.Complete(context.Background(), errors.New("late"))
	s.scope.Complete(context.Background(), nil)

	s.Equal([]string{"success"}, s.calls)
}

func (s *ScopeSuite) TestCallbacksOutliveCancelledContext() {
	var seen error
	s.scope.OnSuccess(func(ctx context.Context) { seen = ctx.Err() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.scope.Complete(ctx, nil)

	s.NoError(seen)
}

func (s *ScopeSuite) TestIDsAreUnique() {
	s.NotEqual(NewScope(nil).ID(), NewScope(nil).ID())
}

// =============================================================================
// MemoryRunner
// =============================================================================

func TestMemoryRunner(t *testing.T) {
	runner := NewMemoryRunner(nil)

	t.Run("commits when the work succeeds", func(t *testing.T) {
		var outcome string
		err := runner.Run(context.Background(), func(_ context.Context, uow UnitOfWork) error {
			uow.OnSuccess(func(context.Context) { outcome = "committed" })
			uow.OnFailure(func(context.Context) { outcome = "rolled back" })
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "committed", outcome)
	})

	t.Run("rolls back and returns the work error", func(t *testing.T) {
		boom := errors.New("boom")
		var outcome string
		err := runner.Run(context.Background(), func(_ context.Context, uow UnitOfWork) error {
			uow.OnSuccess(func(context.Context) { outcome = "committed" })
			uow.OnFailure(func(context.Context) { outcome = "rolled back" })
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "rolled back", outcome)
	})

	t.Run("rolls back before propagating a panic", func(t *testing.T) {
		var outcome string
		assert.PanicsWithValue(t, "kaboom", func() {
			_ = runner.Run(context.Background(), func(_ context.Context, uow UnitOfWork) error {
				uow.OnFailure(func(context.Context) { outcome = "rolled back" })
				panic("kaboom")
			})
		})
		assert.Equal(t, "rolled back", outcome)
	})
}
