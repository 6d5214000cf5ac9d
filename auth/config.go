package auth

import (
	"github.com/viant/afs/url"
	"golang.org/x/oauth2"
)

// Credentials is a registered OAuth2 client id/secret pair.
type Credentials struct {
	ID     string
	Secret string
}

// Config describes the Market authorization server and the two client pairs
// registered with it. PasswordClient backs first-party login forms only;
// every other grant uses Client. Refresh requests reuse the pair that issued
// the original token.
type Config struct {
	// BaseURL is the Market API root, e.g. https://market.example.com.
	BaseURL        string
	Client         Credentials
	PasswordClient Credentials
	// RedirectURL must match the redirect URI registered for the
	// authorization code grant exactly; the server rejects mismatches.
	RedirectURL string
	Scopes      []string
}

// TokenURL returns the token endpoint.
func (c *Config) TokenURL() string {
	return url.Join(c.BaseURL, "oauth/token")
}

// AuthorizeURL returns the user consent endpoint.
func (c *Config) AuthorizeURL() string {
	return url.Join(c.BaseURL, "oauth/authorize")
}

// AuthorizationURL builds the consent redirect for the authorization code
// grant with the given anti-forgery state.
func (c *Config) AuthorizationURL(state string) string {
	cfg := oauth2.Config{
		ClientID: c.Client.ID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthorizeURL(),
			TokenURL:  c.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: c.RedirectURL,
		Scopes:      c.Scopes,
	}
	return cfg.AuthCodeURL(state)
}

// clientFor selects the credential pair a principal's tokens are scoped to.
func (c *Config) clientFor(grant GrantType) Credentials {
	if grant == GrantPassword {
		return c.PasswordClient
	}
	return c.Client
}
