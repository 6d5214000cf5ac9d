package store

import (
	"context"
	"errors"
	"sync"

	"marketfront/auth"
)

// ErrPrincipalNotFound is returned when no record exists for a service id.
var ErrPrincipalNotFound = errors.New("principal not found")

// Memory implements both auth.SessionStore and auth.UserStore in process
// memory. Client tokens are scoped per session id like the Redis store, with
// a shared slot for contexts carrying none. Sufficient for tests and
// single-process CLI scenarios.
type Memory struct {
	mu           sync.RWMutex
	clientTokens map[string]*auth.Token
	users        map[string]*auth.Principal
}

func NewMemory() *Memory {
	return &Memory{
		clientTokens: map[string]*auth.Token{},
		users:        map[string]*auth.Principal{},
	}
}

func sessionID(ctx context.Context) string {
	if id, ok := auth.SessionIDFromContext(ctx); ok {
		return id
	}
	return "global"
}

func (m *Memory) ClientToken(ctx context.Context) (*auth.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.clientTokens[sessionID(ctx)]
	if !ok {
		return nil, nil
	}
	clone := *token
	return &clone, nil
}

func (m *Memory) StoreClientToken(ctx context.Context, token *auth.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *token
	m.clientTokens[sessionID(ctx)] = &clone
	return nil
}

// Invalidate drops the context session's cached client token.
func (m *Memory) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clientTokens, sessionID(ctx))
	return nil
}

func (m *Memory) Lookup(ctx context.Context, serviceID string) (*auth.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	principal, ok := m.users[serviceID]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	clone := *principal
	return &clone, nil
}

func (m *Memory) Upsert(ctx context.Context, principal *auth.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *principal
	m.users[principal.ServiceID] = &clone
	return nil
}

func (m *Memory) UpdateToken(ctx context.Context, serviceID string, token *auth.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	principal, ok := m.users[serviceID]
	if !ok {
		return ErrPrincipalNotFound
	}
	principal.ApplyToken(token)
	return nil
}
