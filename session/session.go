// Package session replaces the browser's persisted token, admin flag and user id with an
// explicit session object. A session is created at login, destroyed at logout and read-only
// everywhere else.
package session

import (
	"context"
	"errors"
	"time"

	"agroadmin/globals"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is what an admin's requests carry to the store API.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"` // upstream bearer token
	IsAdmin   bool      `json:"isAdmin"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists sessions between requests.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// WithContext attaches s to ctx.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, globals.SessionKey, s)
}

// FromContext returns the session attached by the auth middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(globals.SessionKey).(*Session)
	return s
}
