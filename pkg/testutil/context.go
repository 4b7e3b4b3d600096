package testutil

import (
	"context"
	"net/http"

	"herald/internal/platform/middleware"
)

// WithSource adds an authenticated publisher to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithSource(req *http.Request, source string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeySource, source)
	return req.WithContext(ctx)
}
