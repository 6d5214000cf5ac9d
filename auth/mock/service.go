package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"sync"
)

// User is an account registered with the mock server.
type User struct {
	ServiceID string
	Name      string
	Email     string
	Password  string
}

type refreshGrant struct {
	serviceID string
	clientID  string
}

// AuthorizationService is a mock Market authorization server. It validates
// the default client pair for client_credentials and authorization_code
// grants and the password client pair for password grants; refresh tokens are
// single-use and bound to the client that issued them, so a second refresh
// with a rotated token fails with invalid_grant.
type AuthorizationService struct {
	Issuer               string
	ClientID             string
	ClientSecret         string
	PasswordClientID     string
	PasswordClientSecret string
	// TokenTTL is the expires_in reported on every grant, seconds.
	TokenTTL int64
	// RedirectURI, when set, must be echoed exactly on authorization_code
	// exchanges.
	RedirectURI string
	// PrivateKey signs the minted access tokens.
	PrivateKey *rsa.PrivateKey

	mu       sync.Mutex
	users    map[string]*User
	codes    map[string]string
	refresh  map[string]refreshGrant
	requests map[string]int
	sequence int
}

// NewAuthorizationService creates a mock service with generated signing keys
// and the conventional test client pairs.
func NewAuthorizationService() (*AuthorizationService, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &AuthorizationService{
		ClientID:             "test_client_id",
		ClientSecret:         "test_client_secret",
		PasswordClientID:     "test_password_client_id",
		PasswordClientSecret: "test_password_client_secret",
		TokenTTL:             3600,
		PrivateKey:           key,
		users:                map[string]*User{},
		codes:                map[string]string{},
		refresh:              map[string]refreshGrant{},
		requests:             map[string]int{},
	}, nil
}

// RegisterUser adds an account that can log in via password grant or approve
// an authorization code.
func (m *AuthorizationService) RegisterUser(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ServiceID] = user
}

// GrantCount returns how many token requests were served for the grant type.
func (m *AuthorizationService) GrantCount(grant string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[grant]
}

func (m *AuthorizationService) userByEmail(email string) *User {
	for _, user := range m.users {
		if user.Email == email {
			return user
		}
	}
	return nil
}

// ServeHTTP routes requests to the token, authorize and resource endpoints.
func (m *AuthorizationService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/oauth/token":
		m.tokenHandler(w, r)
	case "/oauth/authorize":
		m.authorizeHandler(w, r)
	case "/users/me":
		m.userInfoHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}

// NewHTTPTestServer starts the mock service on an httptest server and stamps
// its issuer URL.
func NewHTTPTestServer() (*AuthorizationService, *httptest.Server, error) {
	service, err := NewAuthorizationService()
	if err != nil {
		return nil, nil, err
	}
	server := httptest.NewServer(service)
	service.Issuer = server.URL
	return service, server, nil
}
