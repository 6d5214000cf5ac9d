package mock

import (
	"encoding/json"
	"net/http"
	"strings"
)

// userInfoHandler serves the users/me resource the storefront fetches right
// after a login exchange. It requires a Bearer token minted by this service.
func (m *AuthorizationService) userInfoHandler(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" || raw == header {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	subject, err := m.parseJWT(raw)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	user, ok := m.users[subject]
	m.mu.Unlock()
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	// identifiers are numeric on the wire
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{
			"identifier": json.Number(user.ServiceID),
			"name":       user.Name,
			"email":      user.Email,
		},
	})
}
