package market

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// TokenResolver yields the Authorization header value for a request context.
// auth.Manager satisfies it: user token when a principal is attached, shared
// client token otherwise.
type TokenResolver interface {
	ResolveAccessToken(ctx context.Context) (string, error)
}

// RoundTripper authorizes every outbound Market request up-front. The bearer
// string arrives pre-formatted from the token manager, so it is set verbatim.
type RoundTripper struct {
	resolver  TokenResolver
	transport http.RoundTripper
}

func NewRoundTripper(resolver TokenResolver, transport http.RoundTripper) *RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &RoundTripper{resolver: resolver, transport: transport}
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := r.resolver.ResolveAccessToken(req.Context())
	if err != nil {
		return nil, err
	}
	next := clone(req)
	next.Header.Set("Authorization", token)
	return r.transport.RoundTrip(next)
}

func clone(r *http.Request) *http.Request {
	cloned := r.Clone(r.Context())
	if r.Body != nil {
		buf, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewBuffer(buf))
		cloned.Body = io.NopCloser(bytes.NewBuffer(buf))
	}
	return cloned
}
