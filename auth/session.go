package auth

import (
	"context"
)

type sessionIDKey struct{}

// WithSessionID scopes the context to a web session. Session-aware
// SessionStore implementations use it to key the cached client token, making
// the cache's sharing boundary an explicit parameter instead of ambient
// state.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// SessionIDFromContext returns the session id attached with WithSessionID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey{}).(string)
	return sessionID, ok && sessionID != ""
}
