// Package auth keeps the signed-in user's identity and bearer token. The
// Manager is passed explicitly to whatever needs credentials; there is no
// package-level session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSignedOut is returned when an operation needs credentials and nobody is signed in.
var ErrSignedOut = errors.New("not signed in")

const (
	keyUID        = "uid"
	keyToken      = "token"
	keySignedInAt = "signed_in_at"
)

// Session is the signed-in identity issued by the identity provider.
type Session struct {
	UID        string    `json:"uid"`
	Token      string    `json:"-"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// KV is the persistence the Manager needs. *Store satisfies it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Manager owns the session lifecycle: restored from the store on start,
// written on SignIn, cleared on SignOut. Safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	kv      KV
	current *Session
	now     func() time.Time
}

// NewManager restores any persisted session from kv.
func NewManager(ctx context.Context, kv KV) (*Manager, error) {
	m := &Manager{kv: kv, now: time.Now}

	uid, okUID, err := kv.Get(ctx, keyUID)
	if err != nil {
		return nil, fmt.Errorf("restoring session: %w", err)
	}
	token, okToken, err := kv.Get(ctx, keyToken)
	if err != nil {
		return nil, fmt.Errorf("restoring session: %w", err)
	}
	if okUID && okToken {
		s := &Session{UID: uid, Token: token}
		at, ok, err := kv.Get(ctx, keySignedInAt)
		if err != nil {
			return nil, fmt.Errorf("restoring session: %w", err)
		}
		if ok {
			if s.SignedInAt, err = time.Parse(time.RFC3339, at); err != nil {
				return nil, fmt.Errorf("restoring session: parsing %s: %w", keySignedInAt, err)
			}
		}
		m.current = s
	}
	return m, nil
}

// SignIn persists and activates a session.
func (m *Manager) SignIn(ctx context.Context, uid, token string) (Session, error) {
	if uid == "" || token == "" {
		return Session{}, errors.New("uid and token are required")
	}
	s := Session{UID: uid, Token: token, SignedInAt: m.now().UTC()}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Set(ctx, keyUID, s.UID); err != nil {
		return Session{}, err
	}
	if err := m.kv.Set(ctx, keyToken, s.Token); err != nil {
		return Session{}, err
	}
	if err := m.kv.Set(ctx, keySignedInAt, s.SignedInAt.Format(time.RFC3339)); err != nil {
		return Session{}, err
	}
	m.current = &s
	return s, nil
}

// SignOut clears the session from memory and storage.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return m.kv.Delete(ctx, keyUID, keyToken, keySignedInAt)
}

// Current returns the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Token returns the bearer token or ErrSignedOut.
func (m *Manager) Token(context.Context) (string, error) {
	s, ok := m.Current()
	if !ok {
		return "", ErrSignedOut
	}
	return s.Token, nil
}

// UID returns the signed-in user id or ErrSignedOut.
func (m *Manager) UID() (string, error) {
	s, ok := m.Current()
	if !ok {
		return "", ErrSignedOut
	}
	return s.UID, nil
}
