package httpserver

import (
	"net/http"
	"time"
)

// Option adjusts the server before it starts.
type Option func(*http.Server)

// WithWriteTimeout bounds the whole response. Ingest requests deliver their
// notifications before answering, so this must exceed the delivery timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		s.WriteTimeout = d
	}
}

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
