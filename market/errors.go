package market

import (
	"errors"
	"fmt"
)

// AuthenticationRejectedError is an HTTP 401 from the Market API itself (not
// the token endpoint). The boundary layer decides what it means: with a
// principal attached the session must be invalidated and the user sent back
// to login; without one the client's own credentials are bad, which is a
// fatal configuration problem needing operator intervention.
type AuthenticationRejectedError struct {
	Op string
}

func (e *AuthenticationRejectedError) Error() string {
	return fmt.Sprintf("%s: market rejected the request authentication", e.Op)
}

// IsAuthenticationRejected reports whether err is a Market 401.
func IsAuthenticationRejected(err error) bool {
	var rejected *AuthenticationRejectedError
	return errors.As(err, &rejected)
}

// ResponseError is a non-auth failure reported by the Market API, either a
// non-2xx status or an error field embedded in the reply body.
type ResponseError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
}
