package policy

import (
	"os"
	"strings"

	hstrings "herald/pkg/platform/strings"
)

// Directive names read from the process environment.
const (
	EnvToken                           = "SLACK_TOKEN"
	EnvChannel                         = "SLACK_CHANNEL"
	EnvIncludeEvents                   = "SLACK_INCLUDE_EVENTS"
	EnvIncludeAllEvents                = "SLACK_INCLUDE_ALL_EVENTS"
	EnvIncludeAllEventsExcept          = "SLACK_INCLUDE_ALL_EVENTS_EXCEPT"
	EnvIncludeAllErrors                = "SLACK_INCLUDE_ALL_ERRORS"
	EnvIncludeAllErrorsExcept          = "SLACK_INCLUDE_ALL_ERRORS_EXCEPT"
	EnvIncludeEventRepresentation      = "SLACK_INCLUDE_EVENT_REPRESENTATION"
	EnvIncludeAdminEvents              = "SLACK_INCLUDE_ADMIN_EVENTS"
	EnvIncludeAllAdminEvents           = "SLACK_INCLUDE_ALL_ADMIN_EVENTS"
	EnvIncludeAdminEventRepresentation = "SLACK_INCLUDE_ADMIN_EVENT_REPRESENTATION"
)

const (
	listSeparator                = ","
	defaultIncludeRepresentation = true
)

// Lookup returns a directive value and whether it was set at all.
// os.LookupEnv satisfies it.
type Lookup func(name string) (string, bool)

// EnvLookup reads directives from the process environment.
var EnvLookup Lookup = os.LookupEnv

// MapLookup serves directives from a fixed map. Handy in tests and for hosts
// that carry configuration outside the environment.
func MapLookup(values map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

// ParseList splits raw on commas, deletes whitespace from each token and keeps
// the tokens that exactly match a member of known. Every other token is passed
// to onUnknown (may be nil) and dropped. Empty input yields an empty set.
func ParseList[K ~string](raw string, known Set[K], onUnknown func(token string)) Set[K] {
	out := Set[K]{}
	for _, token := range hstrings.SplitStripped(raw, listSeparator) {
		k := K(token)
		if !known.Has(k) {
			if onUnknown != nil {
				onUnknown(token)
			}
			continue
		}
		out[k] = struct{}{}
	}
	return out
}

// ParseBool returns def when the directive is absent. A present value is true
// only when it equals "true" ignoring case; anything else, including garbage,
// is false.
func ParseBool(raw string, present, def bool) bool {
	if !present {
		return def
	}
	return strings.EqualFold(raw, "true")
}
