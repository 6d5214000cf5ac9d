// Package market is a typed client for the Market REST API. It is a pure
// passthrough: every call is authorized through the auth token manager via an
// injecting RoundTripper, responses are decoded from their data envelopes
// into typed structs, and an HTTP 401 surfaces as AuthenticationRejectedError
// for the web boundary to classify.
package market
