package policy

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"herald/internal/events"
)

// =============================================================================
// Resolver Test Suite
// =============================================================================

type ResolveSuite struct {
	suite.Suite
	logs   *bytes.Buffer
	logger *slog.Logger
}

func TestResolveSuite(t *testing.T) {
	suite.Run(t, new(ResolveSuite))
}

func (s *ResolveSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	s.logger = slog.New(slog.NewTextHandler(s.logs, nil))
}

func (s *ResolveSuite) resolve(env map[string]string) Policy {
	return Resolve(MapLookup(env), WithLogger(s.logger))
}

func allErrors() []events.EventKind {
	return events.ErrorEventKinds()
}

func without[K ~string](all []K, drop ...K) []K {
	return NewSet(all...).Without(NewSet(drop...)).Sorted()
}

// =============================================================================
// Credentials
// =============================================================================

func (s *ResolveSuite) TestCredentials() {
	s.Run("token and channel are read from the environment", func() {
		p := s.resolve(map[string]string{EnvToken: "slack-token", EnvChannel: "slack-channel"})
		s.Equal("slack-token", p.Token())
		s.Equal("slack-channel", p.Channel())
	})

	s.Run("absent credentials resolve to empty strings", func() {
		p := s.resolve(nil)
		s.Empty(p.Token())
		s.Empty(p.Channel())
	})
}

// =============================================================================
// Activity Events
// =============================================================================

func (s *ResolveSuite) TestIncludeEvents() {
	s.Run("list with whitespace is parsed", func() {
		p := s.resolve(map[string]string{
			EnvIncludeEvents: "LOGIN, LOGIN_ERROR,CODE_TO_TOKEN,REFRESH_TOKEN,    RESET_PASSWORD, SEND_IDENTITY_PROVIDER_LINK",
		})
		s.ElementsMatch([]events.EventKind{
			events.EventLogin,
			events.EventLoginError,
			events.EventCodeToToken,
			events.EventRefreshToken,
			events.EventResetPassword,
			events.EventSendIdentityProviderLink,
		}, p.SupportedEvents())
	})

	s.Run("single kind", func() {
		p := s.resolve(map[string]string{EnvIncludeEvents: "LOGIN"})
		s.Equal([]events.EventKind{events.EventLogin}, p.SupportedEvents())
	})

	s.Run("unknown token is dropped with a warning", func() {
		p := s.resolve(map[string]string{EnvIncludeEvents: "LOGIN, not-existing-event-type :(   , LOGIN_ERROR"})
		s.ElementsMatch([]events.EventKind{events.EventLogin, events.EventLoginError}, p.SupportedEvents())
		s.Contains(s.logs.String(), "level=WARN")
		s.Contains(s.logs.String(), "not-existing-event-type:(")
	})

	s.Run("matching is case sensitive", func() {
		p := s.resolve(map[string]string{EnvIncludeEvents: "login"})
		s.Empty(p.SupportedEvents())
	})
}

func (s *ResolveSuite) TestIncludeAllEvents() {
	s.Run("true selects the whole universe", func() {
		p := s.resolve(map[string]string{EnvIncludeAllEvents: "true"})
		s.ElementsMatch(events.AllEventKinds(), p.SupportedEvents())
	})

	s.Run("true wins over every other directive", func() {
		p := s.resolve(map[string]string{
			EnvIncludeAllEvents:       "TRUE",
			EnvIncludeEvents:          "LOGIN",
			EnvIncludeAllEventsExcept: "LOGOUT",
			EnvIncludeAllErrorsExcept: "LOGIN_ERROR",
		})
		s.ElementsMatch(events.AllEventKinds(), p.SupportedEvents())
	})

	s.Run("newer platform kinds are part of the universe", func() {
		p := s.resolve(map[string]string{EnvIncludeAllEvents: "true"})
		for _, k := range []events.EventKind{
			events.EventValidateAccessToken,
			events.EventValidateAccessTokenError,
			events.EventUpdateCredential,
			events.EventUserDisabledByPermanentLockout,
		} {
			s.True(p.Admits(events.ActivityEvent{Kind: k}), "%s admitted", k)
		}
	})

	s.Run("newer platform kinds are recognized by name", func() {
		p := s.resolve(map[string]string{EnvIncludeEvents: "VALIDATE_ACCESS_TOKEN,UPDATE_CREDENTIAL"})
		s.Equal([]events.EventKind{events.EventUpdateCredential, events.EventValidateAccessToken}, p.SupportedEvents())
		s.NotContains(s.logs.String(), "not recognized")
	})

	s.Run("garbage value evaluates to false", func() {
		p := s.resolve(map[string]string{EnvIncludeAllEvents: ",,,for sure not boolean value :("})
		s.Empty(p.SupportedEvents())
	})
}

func (s *ResolveSuite) TestIncludeAllEventsExcept() {
	s.Run("excluded kinds are removed from the universe", func() {
		p := s.resolve(map[string]string{
			EnvIncludeAllEventsExcept: "LOGIN, LOGIN_ERROR,CODE_TO_TOKEN,REFRESH_TOKEN,    RESET_PASSWORD, SEND_IDENTITY_PROVIDER_LINK",
		})
		expected := without(events.AllEventKinds(),
			events.EventLogin,
			events.EventLoginError,
			events.EventCodeToToken,
			events.EventRefreshToken,
			events.EventResetPassword,
			events.EventSendIdentityProviderLink,
		)
		s.Equal(expected, p.SupportedEvents())
	})

	s.Run("include list wins when both are set", func() {
		p := s.resolve(map[string]string{
			EnvIncludeEvents:          "LOGIN,LOGOUT",
			EnvIncludeAllEventsExcept: "LOGIN",
		})
		s.ElementsMatch([]events.EventKind{events.EventLogin, events.EventLogout}, p.SupportedEvents())
	})

	s.Run("include list made only of unknown tokens falls through to the exclude list", func() {
		p := s.resolve(map[string]string{
			EnvIncludeEvents:          "nope",
			EnvIncludeAllEventsExcept: "LOGIN",
		})
		s.Equal(without(events.AllEventKinds(), events.EventLogin), p.SupportedEvents())
	})
}

// =============================================================================
// Error Events
// =============================================================================

func (s *ResolveSuite) TestErrors() {
	s.Run("include all errors selects every error kind", func() {
		p := s.resolve(map[string]string{EnvIncludeAllErrors: "true"})
		s.ElementsMatch(allErrors(), p.SupportedEvents())
		for _, k := range p.SupportedEvents() {
			s.Contains(string(k), "_ERROR")
		}
	})

	s.Run("all errors except removes the listed kinds", func() {
		p := s.resolve(map[string]string{EnvIncludeAllErrorsExcept: "LOGIN_ERROR, UPDATE_PASSWORD_ERROR"})
		s.Equal(without(allErrors(), events.EventLoginError, events.EventUpdatePasswordError), p.SupportedEvents())
	})

	s.Run("all errors except tolerates junk tokens", func() {
		p := s.resolve(map[string]string{
			EnvIncludeAllErrorsExcept: "LOGIN_ERROR, UPDATE_PASSWORD_ERROR ,, ,,.,.,.,.,.,,    blah-blah 123 :/",
		})
		s.Equal(without(allErrors(), events.EventLoginError, events.EventUpdatePasswordError), p.SupportedEvents())
	})

	s.Run("excluding a non-error kind has no effect on the error component", func() {
		p := s.resolve(map[string]string{EnvIncludeAllErrorsExcept: "LOGIN"})
		s.ElementsMatch(allErrors(), p.SupportedEvents())
	})

	s.Run("include all errors wins over all errors except", func() {
		p := s.resolve(map[string]string{
			EnvIncludeAllErrors:       "true",
			EnvIncludeAllErrorsExcept: "LOGIN_ERROR",
		})
		s.ElementsMatch(allErrors(), p.SupportedEvents())
	})
}

func (s *ResolveSuite) TestBaseAndErrorsAreUnioned() {
	s.Run("events and errors are additive", func() {
		p := s.resolve(map[string]string{
			EnvIncludeEvents:    "LOGIN,LOGOUT",
			EnvIncludeAllErrors: "true",
		})
		expected := NewSet(allErrors()...).Union(NewSet(events.EventLogin, events.EventLogout)).Sorted()
		s.Equal(expected, p.SupportedEvents())
	})

	s.Run("overlapping members collapse", func() {
		p := s.resolve(map[string]string{
			EnvIncludeEvents:    "LOGIN_ERROR,LOGIN",
			EnvIncludeAllErrors: "true",
		})
		s.Len(p.SupportedEvents(), len(allErrors())+1)
	})

	s.Run("no directives admit nothing", func() {
		p := s.resolve(nil)
		s.Empty(p.SupportedEvents())
		s.Empty(p.SupportedAdminOperations())
	})
}

// =============================================================================
// Admin Events
// =============================================================================

func (s *ResolveSuite) TestAdminOperations() {
	s.Run("include list is parsed", func() {
		p := s.resolve(map[string]string{EnvIncludeAdminEvents: "CREATE, DELETE, nonsense"})
		s.Equal([]events.OperationKind{events.OperationCreate, events.OperationDelete}, p.SupportedAdminOperations())
	})

	s.Run("include all selects every operation", func() {
		p := s.resolve(map[string]string{
			EnvIncludeAllAdminEvents: "true",
			EnvIncludeAdminEvents:    "CREATE",
		})
		s.ElementsMatch(events.AllOperationKinds(), p.SupportedAdminOperations())
	})

	s.Run("garbage include all falls back to the list", func() {
		p := s.resolve(map[string]string{
			EnvIncludeAllAdminEvents: "yes",
			EnvIncludeAdminEvents:    "ACTION",
		})
		s.Equal([]events.OperationKind{events.OperationAction}, p.SupportedAdminOperations())
	})

	s.Run("admin directives do not leak into activity kinds", func() {
		p := s.resolve(map[string]string{EnvIncludeAllAdminEvents: "true"})
		s.Empty(p.SupportedEvents())
	})
}

// =============================================================================
// Representation Flags
// =============================================================================

func (s *ResolveSuite) TestRepresentationFlags() {
	cases := []struct {
		name     string
		value    *string
		expected bool
	}{
		{name: "absent defaults to true", value: nil, expected: true},
		{name: "true", value: ptr("true"), expected: true},
		{name: "mixed case true", value: ptr("True"), expected: true},
		{name: "false", value: ptr("false"), expected: false},
		{name: "upper case false", value: ptr("FALSE"), expected: false},
		{name: "garbage is false", value: ptr("definitely"), expected: false},
		{name: "empty is false", value: ptr(""), expected: false},
	}

	for _, tc := range cases {
		s.Run("event "+tc.name, func() {
			env := map[string]string{}
			if tc.value != nil {
				env[EnvIncludeEventRepresentation] = *tc.value
			}
			p := s.resolve(env)
			s.Equal(tc.expected, p.IncludeEventRepresentation())
			s.True(p.IncludeAdminRepresentation())
		})

		s.Run("admin "+tc.name, func() {
			env := map[string]string{}
			if tc.value != nil {
				env[EnvIncludeAdminEventRepresentation] = *tc.value
			}
			p := s.resolve(env)
			s.Equal(tc.expected, p.IncludeAdminRepresentation())
			s.True(p.IncludeEventRepresentation())
		})
	}
}

func ptr(s string) *string { return &s }

// =============================================================================
// Determinism
// =============================================================================

func TestResolve_IsDeterministic(t *testing.T) {
	env := map[string]string{
		EnvIncludeAllEventsExcept: "LOGIN,LOGOUT,REGISTER",
		EnvIncludeAllErrorsExcept: "LOGIN_ERROR",
		EnvIncludeAdminEvents:     "UPDATE,CREATE",
	}
	first := Resolve(MapLookup(env))
	for range 20 {
		next := Resolve(MapLookup(env))
		require.Equal(t, first.SupportedEvents(), next.SupportedEvents())
		require.Equal(t, first.SupportedAdminOperations(), next.SupportedAdminOperations())
	}
}

func TestResolve_FromProcessEnvironment(t *testing.T) {
	t.Setenv(EnvIncludeEvents, "LOGIN")
	t.Setenv(EnvIncludeAllAdminEvents, "true")

	p := Resolve(nil)
	assert.Equal(t, []events.EventKind{events.EventLogin}, p.SupportedEvents())
	assert.ElementsMatch(t, events.AllOperationKinds(), p.SupportedAdminOperations())
	assert.True(t, p.IncludeEventRepresentation())
}

func TestSet_UnionIsIdempotentAndOrderIndependent(t *testing.T) {
	a := NewSet(events.EventLogin, events.EventLogout)
	b := NewSet(events.EventLogout, events.EventLoginError)

	assert.Equal(t, a.Union(b).Sorted(), b.Union(a).Sorted())
	assert.Equal(t, a.Sorted(), a.Union(a).Sorted())
	assert.Equal(t, a.Union(b).Sorted(), a.Union(b).Union(b).Sorted())
}
