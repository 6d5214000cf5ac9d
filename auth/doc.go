// Package auth implements the OAuth2 token lifecycle for the Market API:
// obtaining, caching and refreshing bearer tokens across the
// client_credentials, authorization_code, password and refresh_token grants.
//
// The Manager is the single policy decision point for outbound calls: system
// level calls share a session-cached client-credentials token, user-scoped
// calls use the authenticated principal's own token, refreshed lazily on
// expiry. Persistence is delegated to pluggable SessionStore and UserStore
// implementations (see the store sub-package).
package auth
