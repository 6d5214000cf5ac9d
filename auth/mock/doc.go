// Package mock provides an httptest-backed Market authorization server
// implementing all four token grants with rotating single-use refresh tokens,
// plus the users/me resource, for exercising the auth and market packages
// without a real Market deployment.
package mock
