package transport

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthRequired signals that the backend no longer recognises the
	// session; callers redirect to the login flow.
	ErrAuthRequired = errors.New("authentication required")

	// ErrForbidden signals a role check failure (admin-only resource).
	ErrForbidden = errors.New("access denied")

	// ErrMissingToken signals that the anti-forgery cookie is absent, so a
	// mutating request was refused before it was sent.
	ErrMissingToken = errors.New("missing anti-forgery token")
)

// ValidationError marks a request rejected client-side before transmission
// (oversize upload, blank rename and the like).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// RemoteError carries a non-2xx response with the message extracted from
// the response body when one was present.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Unwrap maps the auth statuses back to their sentinels so callers can
// keep matching with errors.Is regardless of whether the server attached
// a message.
func (e *RemoteError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthRequired
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// TransportError wraps a network-level failure (DNS, refused connection,
// timeout) behind a uniform "connection" message.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "connection failed: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
