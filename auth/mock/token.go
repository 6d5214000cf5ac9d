package mock

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type tokenReply struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// tokenHandler serves /oauth/token for all four grant types.
func (m *AuthorizationService) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "invalid form data")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	grantType := r.FormValue("grant_type")
	m.requests[grantType]++
	clientID := r.FormValue("client_id")
	clientSecret := r.FormValue("client_secret")

	switch grantType {
	case "client_credentials":
		if clientID != m.ClientID || clientSecret != m.ClientSecret {
			oauthError(w, http.StatusUnauthorized, "invalid_client", "invalid client credentials")
			return
		}
		m.reply(w, clientID, "")

	case "authorization_code":
		if clientID != m.ClientID || clientSecret != m.ClientSecret {
			oauthError(w, http.StatusUnauthorized, "invalid_client", "invalid client credentials")
			return
		}
		if m.RedirectURI != "" && r.FormValue("redirect_uri") != m.RedirectURI {
			oauthError(w, http.StatusUnauthorized, "invalid_grant", "redirect_uri mismatch")
			return
		}
		serviceID, ok := m.codes[r.FormValue("code")]
		if !ok {
			oauthError(w, http.StatusUnauthorized, "invalid_grant", "unknown authorization code")
			return
		}
		delete(m.codes, r.FormValue("code"))
		m.reply(w, clientID, serviceID)

	case "password":
		if clientID != m.PasswordClientID || clientSecret != m.PasswordClientSecret {
			oauthError(w, http.StatusUnauthorized, "invalid_client", "password grant requires the password client")
			return
		}
		user := m.userByEmail(r.FormValue("username"))
		if user == nil || user.Password != r.FormValue("password") {
			oauthError(w, http.StatusUnauthorized, "invalid_credentials", "unknown user or wrong password")
			return
		}
		m.reply(w, clientID, user.ServiceID)

	case "refresh_token":
		grant, ok := m.refresh[r.FormValue("refresh_token")]
		if !ok {
			oauthError(w, http.StatusUnauthorized, "invalid_grant", "refresh token revoked or already rotated")
			return
		}
		if grant.clientID != clientID {
			oauthError(w, http.StatusUnauthorized, "invalid_client", "refresh token is scoped to another client")
			return
		}
		if clientID == m.PasswordClientID && clientSecret != m.PasswordClientSecret ||
			clientID == m.ClientID && clientSecret != m.ClientSecret {
			oauthError(w, http.StatusUnauthorized, "invalid_client", "invalid client credentials")
			return
		}
		// single use: rotate on every refresh
		delete(m.refresh, r.FormValue("refresh_token"))
		m.reply(w, clientID, grant.serviceID)

	default:
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type", fmt.Sprintf("unsupported grant type %q", grantType))
	}
}

// reply mints an access token and, unless serving client_credentials, a fresh
// single-use refresh token. Callers hold m.mu.
func (m *AuthorizationService) reply(w http.ResponseWriter, clientID, serviceID string) {
	subject := serviceID
	if subject == "" {
		subject = clientID
	}
	accessToken, err := m.createJWT(clientID, subject, m.TokenTTL)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	response := tokenReply{
		TokenType:   "Bearer",
		ExpiresIn:   m.TokenTTL,
		AccessToken: accessToken,
	}
	if serviceID != "" {
		refreshToken := uuid.New().String()
		m.refresh[refreshToken] = refreshGrant{serviceID: serviceID, clientID: clientID}
		response.RefreshToken = refreshToken
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func oauthError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}
