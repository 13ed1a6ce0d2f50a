// Package session implements the login gate: a stub login that accepts any
// non-empty credentials, server-side session records and signed cookies.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyCredentials = errors.New("Please provide email and password")
	ErrNotFound         = errors.New("session not found")
	ErrInvalidToken     = errors.New("invalid session token")
)

// User is the identity attached to a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the per-browser login state held server-side.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Token     string    `json:"token,omitempty"` // bearer for the backend; empty for stub logins
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsAuthenticated reports whether s is a live session.
func (s Session) IsAuthenticated() bool {
	return s.ID != "" && s.User.Email != ""
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, s Session) error
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type ctxKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.IsAuthenticated()
}
