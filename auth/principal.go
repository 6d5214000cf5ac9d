package auth

import (
	"context"
	"time"
)

// Principal is the authenticated end-user on whose behalf user-scoped Market
// calls are made, together with the token state persisted for them. ServiceID
// is the Market-side identity key.
type Principal struct {
	ServiceID      string    `json:"service_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	GrantType      GrantType `json:"grant_type"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}

// TokenValidAt reports whether the stored access token is usable at now.
func (p *Principal) TokenValidAt(now time.Time) bool {
	if p == nil || p.AccessToken == "" || p.TokenExpiresAt.IsZero() {
		return false
	}
	return now.Before(p.TokenExpiresAt)
}

// ApplyToken overwrites the token fields from a grant result. The grant type
// is preserved from the token so a refreshed password-grant principal keeps
// refreshing against the password client.
func (p *Principal) ApplyToken(token *Token) {
	p.GrantType = token.GrantType
	p.AccessToken = token.AccessToken
	p.RefreshToken = token.RefreshToken
	p.TokenExpiresAt = token.ExpiresAt
}

// PrincipalResolver reports the principal attached to a request context, if
// any. The zero ContextResolver is the default implementation.
type PrincipalResolver interface {
	Principal(ctx context.Context) (*Principal, bool)
}

type principalKey struct{}

// WithPrincipal attaches an authenticated principal to the context.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the principal previously attached with
// WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*Principal)
	return principal, ok && principal != nil
}

// ContextResolver resolves the principal from the request context.
type ContextResolver struct{}

func (ContextResolver) Principal(ctx context.Context) (*Principal, bool) {
	return PrincipalFromContext(ctx)
}
