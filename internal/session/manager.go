package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finweb/internal/log"
)

// Manager is the session gate. Login never contacts the backend; any
// non-empty email and password pair is accepted.
type Manager struct {
	store  Store
	codec  *Codec
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

func NewManager(store Store, codec *Codec, ttl time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		store:  store,
		codec:  codec,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentSession),
	}
}

// Login creates a session for email. It returns the session and its signed cookie value.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return Session{}, "", ErrEmptyCredentials
	}

	now := m.now().UTC()
	s := Session{
		ID:        uuid.NewString(),
		User:      User{ID: uuid.NewString(), Email: email},
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return Session{}, "", fmt.Errorf("save session: %w", err)
	}
	token, err := m.codec.Encode(s)
	if err != nil {
		return Session{}, "", err
	}
	m.logger.InfoContext(ctx, "User logged in", log.FieldSessionID, s.ID, log.FieldOperation, log.OpLogin)
	return s, token, nil
}

// Logout removes the session; unknown ids are not an error.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.InfoContext(ctx, "User logged out", log.FieldSessionID, id, log.FieldOperation, log.OpLogout)
	return nil
}

// Resolve verifies a cookie value and loads the live session it names.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNotFound
	}
	claims, err := m.codec.Decode(token)
	if err != nil {
		return Session{}, err
	}
	s, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return Session{}, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, s.ID)
		return Session{}, ErrNotFound
	}
	return s, nil
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// TTL is the lifetime of new sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }
