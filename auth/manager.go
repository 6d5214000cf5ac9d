package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SessionStore caches the shared client-credentials token for the lifetime of
// a session. Absent is reported as (nil, nil). Implementations are not shared
// across sessions; concurrent writers within one session are last-write-wins.
type SessionStore interface {
	ClientToken(ctx context.Context) (*Token, error)
	StoreClientToken(ctx context.Context, token *Token) error
}

// UserStore persists per-principal token state, keyed by the Market service
// id. UpdateToken must overwrite access token, refresh token and expiry
// together or not at all.
type UserStore interface {
	Lookup(ctx context.Context, serviceID string) (*Principal, error)
	Upsert(ctx context.Context, principal *Principal) error
	UpdateToken(ctx context.Context, serviceID string, token *Token) error
}

// Manager obtains, caches and refreshes Market OAuth2 tokens. It never
// retries: transport failures and grant rejections propagate to the caller
// unchanged, and recovery (re-login, credential rotation) is owned by the
// boundary.
type Manager struct {
	config   *Config
	session  SessionStore
	users    UserStore
	resolver PrincipalResolver
	client   *http.Client
	now      func() time.Time

	mu         sync.Mutex
	refreshing map[string]*sync.Mutex
}

type Option func(*Manager)

// WithHTTPClient sets the client used against the token endpoint. Timeouts
// are the caller's responsibility; the manager adds none of its own.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

// WithPrincipalResolver sets the resolver consulted by ResolveAccessToken.
func WithPrincipalResolver(resolver PrincipalResolver) Option {
	return func(m *Manager) {
		m.resolver = resolver
	}
}

// WithClock sets the time source, used by tests to pin expiry arithmetic.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a Manager backed by the given stores.
func New(config *Config, session SessionStore, users UserStore, options ...Option) *Manager {
	ret := &Manager{
		config:     config,
		session:    session,
		users:      users,
		resolver:   ContextResolver{},
		client:     http.DefaultClient,
		now:        time.Now,
		refreshing: map[string]*sync.Mutex{},
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// AuthorizationURL builds the consent redirect for the authorization code
// grant.
func (m *Manager) AuthorizationURL(state string) string {
	return m.config.AuthorizationURL(state)
}

// ResolveAccessToken picks the bearer for an outbound Market call: the
// authenticated principal's own token when one is attached to the context,
// the shared client-credentials token otherwise.
func (m *Manager) ResolveAccessToken(ctx context.Context) (string, error) {
	if principal, ok := m.resolver.Principal(ctx); ok {
		return m.UserToken(ctx, principal)
	}
	return m.ClientToken(ctx)
}

// ClientToken returns the session-cached client-credentials bearer, fetching
// a new one only when the cache is empty or expired.
func (m *Manager) ClientToken(ctx context.Context) (string, error) {
	if cached, err := m.session.ClientToken(ctx); err == nil && cached.ValidAt(m.now()) {
		return cached.AccessToken, nil
	}
	resp, err := m.exchange(ctx, GrantClientCredentials, url.Values{
		"grant_type":    {string(GrantClientCredentials)},
		"client_id":     {m.config.Client.ID},
		"client_secret": {m.config.Client.Secret},
	})
	if err != nil {
		return "", err
	}
	token := newToken(resp, GrantClientCredentials, m.now())
	if err := m.session.StoreClientToken(ctx, token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// UserToken returns the principal's stored bearer while it is valid,
// refreshing it otherwise.
func (m *Manager) UserToken(ctx context.Context, principal *Principal) (string, error) {
	if principal.TokenValidAt(m.now()) {
		return principal.AccessToken, nil
	}
	return m.RefreshUserToken(ctx, principal)
}

// RefreshUserToken exchanges the principal's refresh token for a new token
// set and persists all three token fields. Refresh tokens are scoped to the
// client that issued them, so password-grant principals refresh against the
// password client and everyone else against the default client.
//
// Refreshes for the same principal are serialized in-process: concurrent
// callers wait, re-read the record and reuse the winner's token instead of
// burning the freshly rotated refresh token. A rotation conflict from another
// process still surfaces as a RefreshError; the user has to log in again.
func (m *Manager) RefreshUserToken(ctx context.Context, principal *Principal) (string, error) {
	lock := m.refreshLock(principal.ServiceID)
	lock.Lock()
	defer lock.Unlock()

	if fresh, err := m.users.Lookup(ctx, principal.ServiceID); err == nil && fresh.TokenValidAt(m.now()) {
		*principal = *fresh
		return principal.AccessToken, nil
	}

	creds := m.config.clientFor(principal.GrantType)
	resp, err := m.exchange(ctx, GrantRefreshToken, url.Values{
		"grant_type":    {string(GrantRefreshToken)},
		"client_id":     {creds.ID},
		"client_secret": {creds.Secret},
		"refresh_token": {principal.RefreshToken},
	})
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) && transportErr.Rejected() {
			return "", &RefreshError{Err: err}
		}
		return "", err
	}
	token := newToken(resp, principal.GrantType, m.now())
	if err := m.users.UpdateToken(ctx, principal.ServiceID, token); err != nil {
		return "", err
	}
	principal.ApplyToken(token)
	return token.AccessToken, nil
}

// ExchangeAuthorizationCode performs the one-shot code exchange at
// login-via-redirect time. The redirect URI sent must be the exact one the
// code was obtained with.
func (m *Manager) ExchangeAuthorizationCode(ctx context.Context, code string) (*Token, error) {
	resp, err := m.exchange(ctx, GrantAuthorizationCode, url.Values{
		"grant_type":    {string(GrantAuthorizationCode)},
		"client_id":     {m.config.Client.ID},
		"client_secret": {m.config.Client.Secret},
		"redirect_uri":  {m.config.RedirectURL},
		"code":          {code},
	})
	if err != nil {
		return nil, err
	}
	return newToken(resp, GrantAuthorizationCode, m.now()), nil
}

// ExchangePassword performs the resource-owner-password exchange backing
// first-party login forms, always against the password client pair.
func (m *Manager) ExchangePassword(ctx context.Context, username, password string) (*Token, error) {
	resp, err := m.exchange(ctx, GrantPassword, url.Values{
		"grant_type":    {string(GrantPassword)},
		"client_id":     {m.config.PasswordClient.ID},
		"client_secret": {m.config.PasswordClient.Secret},
		"username":      {username},
		"password":      {password},
		"scope":         {strings.Join(m.config.Scopes, " ")},
	})
	if err != nil {
		return nil, err
	}
	return newToken(resp, GrantPassword, m.now()), nil
}

func (m *Manager) refreshLock(serviceID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.refreshing[serviceID]
	if !ok {
		lock = &sync.Mutex{}
		m.refreshing[serviceID] = lock
	}
	return lock
}
