package testutil

import (
	"net/http"
	"time"

	"casegate/pkg/requestcontext"
)

// WithActor attaches an actor identity to the request context, simulating
// what the actor middleware would do.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestTime pins the request-scoped clock, simulating the request time
// middleware with a fixed instant.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID attaches a request id to the request context for log
// correlation assertions.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
