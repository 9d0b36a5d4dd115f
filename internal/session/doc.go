// Package session owns the authentication lifecycle: restoring a persisted
// session at startup, login, logout, profile replacement, and token refresh.
//
// A Manager is the single source of truth for whether a usable session
// exists. It keeps the persisted authToken/userData entries and its
// in-memory Session in step on every transition and publishes each new
// snapshot to subscribers synchronously. Construct one per process and pass
// it to the code that needs it.
package session
