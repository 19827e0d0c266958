package testutil

import (
	"net/http"
	"time"

	"birthregistry/pkg/requestcontext"
)

// WithAdminID adds an admin ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithAdminID(req *http.Request, adminID string) *http.Request {
	return req.WithContext(requestcontext.WithAdminID(req.Context(), adminID))
}

// WithRequestTime pins the request-scoped clock, so tests can assert exact
// submission and decision timestamps.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
