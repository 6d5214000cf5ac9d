package auth

import (
	"errors"
	"fmt"
)

// TransportError is a failed call to the authorization server, either a
// network failure or a grant rejection. It is propagated unchanged and never
// retried inside this package.
type TransportError struct {
	// Op is the grant type being exchanged.
	Op string
	// StatusCode is zero when the request never reached the server.
	StatusCode int
	// Code is the oauth error code from the response body, e.g.
	// invalid_grant or invalid_credentials.
	Code string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s grant failed: %s (status %d)", e.Op, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s grant failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Rejected reports whether the authorization server actively refused the
// grant, as opposed to the request failing in transit.
func (e *TransportError) Rejected() bool {
	return e.Code != "" || (e.StatusCode >= 400 && e.StatusCode < 500)
}

// RefreshError marks a rejected refresh_token grant, typically a refresh
// token that was revoked or already rotated by a concurrent refresh. It
// unwraps to the underlying TransportError. Recovery means re-authenticating
// the user; no fallback is attempted here.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh token rejected: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// IsRefreshFailure reports whether err stems from a rejected refresh token.
func IsRefreshFailure(err error) bool {
	var refreshErr *RefreshError
	return errors.As(err, &refreshErr)
}
