package mock

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// authorizeHandler approves the consent request and redirects back with a
// one-time code. The approving user is taken from the approve_as query
// parameter, falling back to any registered user.
func (m *AuthorizationService) authorizeHandler(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID != m.ClientID {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		http.Error(w, "Missing redirect URI", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	serviceID := r.URL.Query().Get("approve_as")
	if serviceID == "" {
		for id := range m.users {
			serviceID = id
			break
		}
	}
	code := uuid.New().String()
	m.codes[code] = serviceID
	m.mu.Unlock()

	state := r.URL.Query().Get("state")
	http.Redirect(w, r, fmt.Sprintf("%s?code=%s&state=%s", redirectURI, code, state), http.StatusFound)
}

// IssueCode mints an authorization code directly, bypassing the redirect
// dance, for tests that only exercise the exchange.
func (m *AuthorizationService) IssueCode(serviceID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	code := uuid.New().String()
	m.codes[code] = serviceID
	return code
}
