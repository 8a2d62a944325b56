// Package session provides the server-side session store backing the
// cariella_session cookie. Sessions are keyed by an opaque UUID; the
// browser only ever sees the identifier.
package session

import (
	"context"
	"errors"
	"time"
)

// CookieName is the name of the session cookie set at login.
const CookieName = "cariella_session"

// ErrNotFound is returned when no session exists for an id, either
// because it never existed or because it expired.
var ErrNotFound = errors.New("session not found")

// Data is the per-session state established at login.
type Data struct {
	UserID   uint   `json:"user_id"`
	UserType string `json:"user_type"`
	LoggedIn bool   `json:"logged_in"`
}

// Store is a pluggable session backend. MemoryStore serves tests and
// single-process development; RedisStore serves production.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
}

var (
	store    Store
	lifetime time.Duration
)

// Initialize sets the process-wide store and session lifetime.
func Initialize(s Store, ttl time.Duration) {
	store = s
	lifetime = ttl
}

// GetStore returns the configured store, falling back to an in-memory
// store so the package is usable before Initialize is called.
func GetStore() Store {
	if store == nil {
		store = NewMemoryStore(DefaultLifetime)
		lifetime = DefaultLifetime
	}
	return store
}

// Lifetime returns the configured session lifetime, used as the cookie
// max-age at login.
func Lifetime() time.Duration {
	if lifetime == 0 {
		return DefaultLifetime
	}
	return lifetime
}

// DefaultLifetime applies when no lifetime has been configured.
const DefaultLifetime = 24 * time.Hour
