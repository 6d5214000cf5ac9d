package mock

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// createJWT mints a signed access token for the given subject. Callers hold
// m.mu where counters or maps are touched; signing itself needs no lock.
func (m *AuthorizationService) createJWT(clientID, subject string, ttl int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.Issuer,
		"sub": subject,
		"aud": clientID,
		"exp": now.Add(time.Duration(ttl) * time.Second).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(m.PrivateKey)
}

// parseJWT validates a minted token and returns its subject.
func (m *AuthorizationService) parseJWT(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return &m.PrivateKey.PublicKey, nil
	})
	if err != nil {
		return "", err
	}
	return parsed.Claims.GetSubject()
}
