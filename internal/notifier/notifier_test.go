package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"herald/internal/events"
	"herald/internal/notifier/delivery"
	"herald/internal/notifier/delivery/mocks"
	"herald/internal/notifier/message"
	"herald/internal/platform/metrics"
	"herald/internal/policy"
	"herald/internal/unitofwork"
	"herald/pkg/platform/sentinel"
	"herald/pkg/testutil"
)

const (
	testHost  = "https://sso.example.com"
	testRealm = "acme"
	// 2021-03-04T10:15:30.123Z
	testTime int64 = 1614852930123
)

var testUnit = UnitContext{Realm: testRealm, Host: testHost}

func activity(kind events.EventKind) events.ActivityEvent {
	return events.ActivityEvent{
		Time:     testTime,
		Kind:     kind,
		RealmID:  "realm-id",
		ClientID: "account-console",
		UserID:   "user-1",
	}
}

func admin(op events.OperationKind) events.AdminEvent {
	return events.AdminEvent{
		Time:           testTime,
		RealmID:        "realm-id",
		Operation:      op,
		ResourceType:   "USER",
		ResourcePath:   "users/1",
		Representation: json.RawMessage(`{"username":"jdoe"}`),
	}
}

func resolve(env map[string]string) policy.Policy {
	base := map[string]string{
		policy.EnvToken:   "xoxb-test",
		policy.EnvChannel: "#alerts",
	}
	for k, v := range env {
		base[k] = v
	}
	return policy.Resolve(policy.MapLookup(base))
}

// capture records every request the sink receives and answers with the
// next queued error (nil when the queue is exhausted).
func capture(sink *mocks.MockSink, errs ...error) *[]delivery.Request {
	var got []delivery.Request
	sink.EXPECT().Deliver(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req delivery.Request) error {
			got = append(got, req)
			if len(errs) == 0 {
				return nil
			}
			err := errs[0]
			errs = errs[1:]
			return err
		}).AnyTimes()
	return &got
}

type BufferSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	sink *mocks.MockSink
}

func TestBufferSuite(t *testing.T) {
	suite.Run(t, new(BufferSuite))
}

func (s *BufferSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sink = mocks.NewMockSink(s.ctrl)
}

func (s *BufferSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BufferSuite) newBuffer(p policy.Policy) *Buffer {
	return NewBuffer(testUnit, NewSender(p, s.sink))
}

// =============================================================================
// Flush
// =============================================================================

func (s *BufferSuite) TestFlushDeliversInAdmissionOrder() {
	got := capture(s.sink)
	b := s.newBuffer(resolve(nil))

	b.AddEvent(activity(events.EventLogin))
	b.AddAdminEvent(admin(events.OperationDelete), true)
	b.AddEvent(activity(events.EventLogout))
	b.OnSuccess(context.Background())

	s.Require().Len(*got, 3)
	s.Equal(message.EventTitle(testHost), (*got)[0].Title)
	s.Equal("LOGIN", (*got)[0].Segments[1].Fields[0].Value)
	s.Equal(message.AdminEventTitle(testHost), (*got)[1].Title)
	s.Equal("DELETE", (*got)[1].Segments[1].Fields[0].Value)
	s.Equal("LOGOUT", (*got)[2].Segments[1].Fields[0].Value)
	s.Equal(StateFlushed, b.State())
	s.Zero(b.Len())
}

func (s *BufferSuite) TestFlushAddressesPolicyCredentials() {
	got := capture(s.sink)
	b := s.newBuffer(resolve(nil))

	b.AddEvent(activity(events.EventLogin))
	b.OnSuccess(context.Background())

	s.Require().Len(*got, 1)
	s.Equal("#alerts", (*got)[0].Channel)
	s.Equal("xoxb-test", (*got)[0].Token)
}

func (s *BufferSuite) TestFailedDeliveryDoesNotBlockTheRest() {
	got := capture(s.sink,
		&delivery.ResponseError{Code: "channel_not_found"},
		errors.New("connection reset"),
	)
	b := s.newBuffer(resolve(nil))

	b.AddEvent(activity(events.EventLogin))
	b.AddEvent(activity(events.EventLogout))
	b.AddEvent(activity(events.EventRegister))
	s.NotPanics(func() { b.OnSuccess(context.Background()) })

	s.Len(*got, 3)
}

func (s *BufferSuite) TestPanickingSinkDoesNotAbortTheFlush() {
	var calls int
	s.sink.EXPECT().Deliver(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, delivery.Request) error {
			calls++
			if calls == 1 {
				panic("nil client")
			}
			return nil
		}).Times(2)
	m := metrics.New(prometheus.NewRegistry())
	b := NewBuffer(testUnit, NewSender(resolve(nil), s.sink, WithMetrics(m)))

	b.AddEvent(activity(events.EventLogin))
	b.AddEvent(activity(events.EventLogout))
	s.NotPanics(func() { b.OnSuccess(context.Background()) })

	s.Equal(2, calls)
	s.Equal(StateFlushed, b.State())
	s.Equal(1.0, promtestutil.ToFloat64(m.NotificationsFailed.WithLabelValues(metrics.TypeEvent, "panic")))
	s.Equal(1.0, promtestutil.ToFloat64(m.NotificationsDelivered.WithLabelValues(metrics.TypeEvent)))
}

func (s *BufferSuite) TestEmptyFlushMakesNoCalls() {
	s.sink.EXPECT().Deliver(gomock.Any(), gomock.Any()).Times(0)
	b := s.newBuffer(resolve(nil))

	b.OnSuccess(context.Background())

	s.Equal(StateFlushed, b.State())
}

// =============================================================================
// Discard and completion
// =============================================================================

func (s *BufferSuite) TestDiscardDeliversNothing() {
	s.sink.EXPECT().Deliver(gomock.Any(), gomock.Any()).Times(0)
	b := s.newBuffer(resolve(nil))

	b.AddEvent(activity(events.EventLogin))
	b.AddAdminEvent(admin(events.OperationCreate), true)
	b.OnFailure(context.Background())

	s.Equal(StateDiscarded, b.State())
	s.Zero(b.Len())
}

func (s *BufferSuite) TestSecondCompletionIsNoOp() {
	got := capture(s.sink)
	b := s.newBuffer(resolve(nil))

	b.AddEvent(activity(events.EventLogin))
	b.OnSuccess(context.Background())
	b.OnSuccess(context.Background())
	b.OnFailure(context.Background())

	s.Len(*got, 1)
	s.Equal(StateFlushed, b.State())
}

func (s *BufferSuite) TestAddAfterCompletionPanics() {
	b := s.newBuffer(resolve(nil))
	b.OnFailure(context.Background())

	err := recoverError(func() { b.AddEvent(activity(events.EventLogin)) })
	s.ErrorIs(err, sentinel.ErrInvalidState)

	err = recoverError(func() { b.AddAdminEvent(admin(events.OperationCreate), false) })
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func recoverError(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err, _ = rec.(error)
		}
	}()
	fn()
	return nil
}

// =============================================================================
// Representation flags
// =============================================================================

func (s *BufferSuite) TestAdminRepresentationNeedsBothFlags() {
	cases := []struct {
		name      string
		policyVal string
		admitted  bool
		segments  int
	}{
		{"policy and admission allow", "true", true, 4},
		{"admission withholds", "true", false, 3},
		{"policy withholds", "false", true, 3},
		{"both withhold", "false", false, 3},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			got := capture(s.sink)
			b := s.newBuffer(resolve(map[string]string{
				policy.EnvIncludeAdminEventRepresentation: tc.policyVal,
			}))

			b.AddAdminEvent(admin(events.OperationUpdate), tc.admitted)
			b.OnSuccess(context.Background())

			s.Require().Len(*got, 1)
			s.Len((*got)[0].Segments, tc.segments)
		})
	}
}

func (s *BufferSuite) TestActivityFlagNeverGovernsAdminEvents() {
	got := capture(s.sink)
	b := s.newBuffer(resolve(map[string]string{
		policy.EnvIncludeEventRepresentation:      "false",
		policy.EnvIncludeAdminEventRepresentation: "true",
	}))

	b.AddEvent(activity(events.EventLogin))
	b.AddAdminEvent(admin(events.OperationCreate), true)
	b.OnSuccess(context.Background())

	s.Require().Len(*got, 2)
	s.Len((*got)[0].Segments, 3)
	s.Len((*got)[1].Segments, 4)
	s.Equal(message.SegmentRepresentation, (*got)[1].Segments[3].Type)
}

func (s *BufferSuite) TestInvalidRepresentationSkipsOnlyThatEvent() {
	got := capture(s.sink)
	b := s.newBuffer(resolve(nil))

	broken := admin(events.OperationCreate)
	broken.Representation = json.RawMessage(`{not json`)
	b.AddAdminEvent(broken, true)
	b.AddEvent(activity(events.EventLogin))
	b.OnSuccess(context.Background())

	s.Require().Len(*got, 1)
	s.Equal(message.EventTitle(testHost), (*got)[0].Title)
}

// =============================================================================
// Listener and factory
// =============================================================================

func TestListener_FiltersBeforeBuffering(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	got := capture(sink)

	factory := NewFactory(resolve(map[string]string{
		policy.EnvIncludeEvents:      "LOGIN",
		policy.EnvIncludeAdminEvents: "DELETE",
	}), sink)
	scope := unitofwork.NewScope(nil)
	listener := factory.Create(scope, testUnit)

	listener.OnEvent(activity(events.EventLogin))
	listener.OnEvent(activity(events.EventLogout))
	listener.OnAdminEvent(admin(events.OperationCreate), true)
	listener.OnAdminEvent(admin(events.OperationDelete), false)
	assert.Equal(t, 2, listener.Admitted())
	assert.Empty(t, *got, "nothing is delivered before the unit completes")

	scope.Complete(context.Background(), nil)

	require.Len(t, *got, 2)
	assert.Equal(t, "LOGIN", (*got)[0].Segments[1].Fields[0].Value)
	assert.Equal(t, "DELETE", (*got)[1].Segments[1].Fields[0].Value)
}

func TestFactory_EachUnitGetsItsOwnBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	got := capture(sink)
	factory := NewFactory(resolve(map[string]string{policy.EnvIncludeAllEvents: "true"}), sink)

	committed := unitofwork.NewScope(nil)
	rolledBack := unitofwork.NewScope(nil)
	factory.Create(committed, testUnit).OnEvent(activity(events.EventLogin))
	factory.Create(rolledBack, testUnit).OnEvent(activity(events.EventLogout))

	rolledBack.Complete(context.Background(), errors.New("rollback"))
	committed.Complete(context.Background(), nil)

	require.Len(t, *got, 1)
	assert.Equal(t, "LOGIN", (*got)[0].Segments[1].Fields[0].Value)
}

func TestSender_FailureReasons(t *testing.T) {
	assert.Equal(t, "rejected", failureReason(&delivery.ResponseError{Code: "invalid_auth"}))
	assert.Equal(t, "render", failureReason(sentinel.ErrMalformed))
	assert.Equal(t, "misconfigured", failureReason(sentinel.ErrMisconfigured))
	assert.Equal(t, "unavailable", failureReason(sentinel.ErrUnavailable))
	assert.Equal(t, "timeout", failureReason(context.DeadlineExceeded))
	assert.Equal(t, "other", failureReason(errors.New("x")))
	assert.Equal(t, "panic", failureReason(fmt.Errorf("%w: boom", errSinkPanicked)))
}

func TestEndToEnd_LoginNotifiedLogoutDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	got := capture(sink)

	testutil.Given(t, "a policy admitting LOGIN and every admin operation", func(t *testing.T) {
		p := resolve(map[string]string{
			policy.EnvIncludeEvents:         "LOGIN",
			policy.EnvIncludeAllAdminEvents: "true",
		})
		factory := NewFactory(p, sink)
		runner := unitofwork.NewMemoryRunner(nil)

		testutil.When(t, "a committed unit raises LOGIN then LOGOUT", func(t *testing.T) {
			err := runner.Run(context.Background(), func(_ context.Context, uow unitofwork.UnitOfWork) error {
				l := factory.Create(uow, testUnit)
				l.OnEvent(activity(events.EventLogin))
				l.OnEvent(activity(events.EventLogout))
				return nil
			})
			require.NoError(t, err)

			testutil.Then(t, "exactly one notification with four segments is sent", func(t *testing.T) {
				require.Len(t, *got, 1)
				assert.Equal(t, "New event has just occurred in Keycloak at "+testHost, (*got)[0].Title)
				assert.Len(t, (*got)[0].Segments, 4)
			})
			testutil.And(t, "the notification is the LOGIN", func(t *testing.T) {
				require.Len(t, *got, 1)
				assert.Equal(t, "LOGIN", (*got)[0].Segments[1].Fields[0].Value)
			})
		})
	})
}
