// Package store holds the authoritative session records, keyed by the opaque
// session key carried in the browser cookie.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/saas-webapp/web/internal/model"
)

// ErrNotFound is returned when no session exists for a key.
var ErrNotFound = errors.New("session not found")

// Store defines the interface for session persistence. Writes are last-write-wins.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, sess *model.Session) error

	// Load retrieves a session by key. Returns ErrNotFound if absent.
	Load(ctx context.Context, key string) (*model.Session, error)

	// Delete removes a session. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Purger is implemented by stores that do not expire records on their own.
type Purger interface {
	// PurgeExpired removes every session older than the store's TTL and
	// returns how many were removed.
	PurgeExpired(ctx context.Context) (int, error)
}

// Expired reports whether a session created at sess.CreatedAt has outlived ttl.
// A zero ttl or a zero CreatedAt never expires.
func Expired(sess *model.Session, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 || sess.CreatedAt.IsZero() {
		return false
	}
	return !now.Before(sess.CreatedAt.Add(ttl))
}
