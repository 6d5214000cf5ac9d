// Package store provides SessionStore and UserStore implementations for the
// auth package: an in-memory default for tests and CLI use, a Redis-backed
// session cache, a SQL-backed user record store and a JSON-file session cache
// that survives process restarts.
package store
