package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Components return these (optionally
// wrapped) so callers can classify failures with errors.Is:
// - ErrInvalidState: component used in the wrong lifecycle state
// - ErrMisconfigured: required setting (token, channel, secret) is missing
// - ErrUnavailable: downstream service could not be reached
// - ErrRejected: downstream service answered but refused the request
// - ErrMalformed: payload could not be decoded or encoded
// - ErrUnauthorized: caller credentials are missing or invalid
var (
	ErrInvalidState  = errors.New("invalid state")
	ErrMisconfigured = errors.New("misconfigured")
	ErrUnavailable   = errors.New("unavailable")
	ErrRejected      = errors.New("rejected")
	ErrMalformed     = errors.New("malformed")
	ErrUnauthorized  = errors.New("unauthorized")
)
