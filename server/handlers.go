package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketfront/auth"
)

// handleShowLogin returns the consent URL for login-via-redirect, stashing
// the anti-forgery state in the session.
func (s *Server) handleShowLogin(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	session.State = uuid.New().String()
	if err := s.sessions.Write(w, session); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"authorization_url": s.manager.AuthorizationURL(session.State),
	})
}

// handleLogin performs the first-party password login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "email and password are required"})
		return
	}

	token, err := s.manager.ExchangePassword(r.Context(), email, password)
	if err != nil {
		var transportErr *auth.TransportError
		if errors.As(err, &transportErr) && transportErr.Code == "invalid_credentials" {
			s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "These credentials do not match our records."})
			return
		}
		s.respondError(w, r, err)
		return
	}
	s.finishLogin(w, r, token)
}

// handleAuthorization is the redirect target of the authorization code
// grant.
func (s *Server) handleAuthorization(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		// the user cancelled the consent prompt
		http.Redirect(w, r, "/login?error=authorization_cancelled", http.StatusFound)
		return
	}
	session := sessionFrom(r.Context())
	if session.State != "" && r.URL.Query().Get("state") != session.State {
		s.respondJSON(w, http.StatusForbidden, map[string]string{"error": "state mismatch"})
		return
	}

	token, err := s.manager.ExchangeAuthorizationCode(r.Context(), code)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.finishLogin(w, r, token)
}

// finishLogin resolves the account behind a freshly issued token, records it
// and regenerates the session around it.
func (s *Server) finishLogin(w http.ResponseWriter, r *http.Request, token *auth.Token) {
	// authorize users/me with the new token before any record exists
	ctx := auth.WithPrincipal(r.Context(), &auth.Principal{
		GrantType:      token.GrantType,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: token.ExpiresAt,
	})
	info, err := s.market.UserInformation(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	principal := &auth.Principal{
		ServiceID: info.Identifier.String(),
		Name:      info.Name,
		Email:     info.Email,
	}
	principal.ApplyToken(token)
	if err := s.users.Upsert(ctx, principal); err != nil {
		s.respondError(w, r, err)
		return
	}

	// fresh session id on privilege change
	session := &Session{ID: uuid.New().String(), ServiceID: principal.ServiceID}
	if err := s.sessions.Write(w, session); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.logger.Info("user logged in",
		zap.String("service_id", principal.ServiceID),
		zap.String("grant_type", string(principal.GrantType)))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service_id": principal.ServiceID,
		"name":       principal.Name,
		"email":      principal.Email,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Invalidate(w)
	w.WriteHeader(http.StatusNoContent)
}
