// Package session owns the single login session and its optional persistence
// across restarts.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/storage"
)

// Session is the authenticated identity. It is also the persisted shape of
// the rememberedUser slot.
type Session struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Manager is the {anonymous, authenticated} state machine. At most one
// session is active.
type Manager struct {
	mu      sync.RWMutex
	current *Session

	verifier       CredentialVerifier
	rememberedUser *storage.Slot[Session]
	rememberedName *storage.Slot[string]
	logger         *slog.Logger
}

func NewManager(kv storage.KV, verifier CredentialVerifier, logger *slog.Logger) *Manager {
	if verifier == nil {
		verifier = DefaultVerifier()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		verifier:       verifier,
		rememberedUser: storage.NewJSONSlot[Session](kv, storage.KeyRememberedUser),
		rememberedName: storage.NewSlot[string](kv, storage.KeyRememberedUsername, storage.StringCodec{}),
		logger:         logger,
	}
}

// AttemptLogin establishes a session when the verifier accepts the
// credentials. A rejected attempt returns false and touches nothing. The
// error is reserved for store failures.
func (m *Manager) AttemptLogin(ctx context.Context, username, password string, remember bool) (bool, error) {
	name, ok := m.verifier.Verify(ctx, username, password)
	if !ok {
		m.logger.Warn("login rejected", "username", username)
		return false, nil
	}

	s := Session{Username: username, Name: name}

	m.mu.Lock()
	defer m.mu.Unlock()

	if remember {
		if err := m.rememberedUser.Set(ctx, s); err != nil {
			return false, err
		}
		if err := m.rememberedName.Set(ctx, username); err != nil {
			return false, err
		}
	} else {
		if err := m.rememberedUser.Remove(ctx); err != nil {
			return false, err
		}
		if err := m.rememberedName.Remove(ctx); err != nil {
			return false, err
		}
	}

	m.current = &s
	m.logger.Info("user logged in", "username", username, "remember", remember)
	return true, nil
}

// RestoreSession adopts a remembered session if one is stored. Unreadable
// data is logged and treated as absent.
func (m *Manager) RestoreSession(ctx context.Context) (*Session, bool) {
	s, ok, err := m.rememberedUser.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			m.logger.Warn("ignoring malformed remembered session", "error", err)
		} else {
			m.logger.Warn("failed to read remembered session", "error", err)
		}
		return nil, false
	}
	if !ok || s.Username == "" {
		return nil, false
	}

	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()

	m.logger.Info("session restored", "username", s.Username)
	restored := s
	return &restored, true
}

// Logout ends the session and forgets the remembered session. The remembered
// username is kept to pre-fill the next login.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	var username string
	if m.current != nil {
		username = m.current.Username
	}
	m.current = nil
	m.mu.Unlock()

	if err := m.rememberedUser.Remove(ctx); err != nil {
		m.logger.Error("failed to clear remembered session", "error", err)
		return err
	}
	m.logger.Info("user logged out", "username", username)
	return nil
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// RememberedUsername is the last username saved with "remember me", or "".
func (m *Manager) RememberedUsername(ctx context.Context) string {
	name, ok, err := m.rememberedName.Get(ctx)
	if err != nil || !ok {
		return ""
	}
	return name
}

// Authorize confirms that username holds the active session.
func (m *Manager) Authorize(username string) (Session, error) {
	s, ok := m.Current()
	if !ok || s.Username != username {
		return Session{}, internal.ErrUnauthenticated
	}
	return s, nil
}
