// Package server is the storefront's HTTP boundary: login and authorization
// callback endpoints, session handling and typed passthrough routes to the
// Market API. It owns the recovery policy the token layer deliberately does
// not have: a rejected authentication with a user attached invalidates the
// session and forces re-login, while a rejected client credential is treated
// as a fatal configuration error.
package server
