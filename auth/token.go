package auth

import (
	"time"
)

// GrantType identifies the OAuth2 mechanism a token was obtained with.
type GrantType string

const (
	GrantClientCredentials GrantType = "client_credentials"
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantPassword          GrantType = "password"
	GrantRefreshToken      GrantType = "refresh_token"
)

// expirySkew is subtracted from the server-reported TTL so a token is never
// presented moments before the authorization server considers it expired.
const expirySkew = 5 * time.Second

// Token is the result of one grant exchange. AccessToken is stored
// pre-formatted as "<type> <token>" so it can be used directly as an
// Authorization header value.
type Token struct {
	GrantType    GrantType `json:"grant_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used.
func (t *Token) Valid() bool {
	return t.ValidAt(time.Now())
}

// ValidAt reports whether the token is usable at the given instant. A token
// with no expiry is never valid.
func (t *Token) ValidAt(now time.Time) bool {
	if t == nil || t.AccessToken == "" || t.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(t.ExpiresAt)
}

// tokenResponse is the token endpoint wire format. refresh_token is absent on
// client_credentials grants; error is populated instead of the token fields
// when the grant was rejected.
type tokenResponse struct {
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// newToken stamps the absolute expiry and formats the bearer string.
func newToken(resp *tokenResponse, grant GrantType, issued time.Time) *Token {
	return &Token{
		GrantType:    grant,
		AccessToken:  resp.TokenType + " " + resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    issued.Add(time.Duration(resp.ExpiresIn)*time.Second - expirySkew),
	}
}
