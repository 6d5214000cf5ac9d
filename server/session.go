package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionCookie = "marketfront_session"

// Session is the per-browser state carried in a signed cookie: a session id
// scoping the client-token cache, the service id of the logged-in principal
// (empty while anonymous) and the pending authorization state nonce.
type Session struct {
	ID        string
	ServiceID string
	State     string
}

// Sessions signs sessions into HS256 JWT cookies and reads them back.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret []byte) *Sessions {
	return &Sessions{secret: secret, ttl: 24 * time.Hour}
}

// Read returns the request's session and whether it came from a valid cookie;
// when the cookie is missing, expired or fails verification it mints a fresh
// anonymous session instead.
func (s *Sessions) Read(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return s.fresh(), false
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return s.fresh(), false
	}
	session := &Session{}
	session.ID, _ = claims["sid"].(string)
	session.ServiceID, _ = claims["svc"].(string)
	session.State, _ = claims["state"].(string)
	if session.ID == "" {
		return s.fresh(), false
	}
	return session, true
}

func (s *Sessions) fresh() *Session {
	return &Session{ID: uuid.New().String()}
}

// Write signs the session into the response cookie.
func (s *Sessions) Write(w http.ResponseWriter, session *Session) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid":   session.ID,
		"svc":   session.ServiceID,
		"state": session.State,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(s.ttl),
	})
	return nil
}

// Invalidate expires the cookie; the next request starts anonymous.
func (s *Sessions) Invalidate(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
