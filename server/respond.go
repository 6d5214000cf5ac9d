package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"marketfront/auth"
	"marketfront/market"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondError classifies failures from the token and market layers. An
// authentication rejection or a dead refresh token always invalidates the
// session; with a user attached that means re-login, without one the client
// credentials themselves are bad and only the operator can fix it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if market.IsAuthenticationRejected(err) || auth.IsRefreshFailure(err) {
		s.sessions.Invalidate(w)
		if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
			s.logger.Warn("authentication failed, forcing re-login",
				zap.String("service_id", principal.ServiceID), zap.Error(err))
			s.respondJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "The authentication failed. Please login again.",
			})
			return
		}
		s.logger.Error("market rejected the client credentials; rotate them and redeploy", zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Error authenticating the request. Try again later.",
		})
		return
	}

	var responseErr *market.ResponseError
	if errors.As(err, &responseErr) {
		status := responseErr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		s.respondJSON(w, status, map[string]string{"error": responseErr.Message})
		return
	}

	var transportErr *auth.TransportError
	if errors.As(err, &transportErr) {
		s.logger.Error("authorization server unreachable", zap.Error(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]string{"error": "authorization service unavailable"})
		return
	}

	s.logger.Error("request failed", zap.Error(err))
	s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
