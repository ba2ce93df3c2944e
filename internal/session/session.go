// Package session holds the signed-in user as immutable snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/rs/zerolog/log"
)

// Snapshot is one immutable view of the session. Operations on Manager
// return a new Snapshot; existing snapshots never change.
type Snapshot struct {
	Token         string       `json:"-"`
	User          *domain.User `json:"user,omitempty"`
	Authenticated bool         `json:"authenticated"`
}

func (s Snapshot) IsCompany() bool     { return s.User != nil && s.User.IsCompany() }
func (s Snapshot) IsDistributor() bool { return s.User != nil && s.User.IsDistributor() }

// Manager is constructed explicitly and passed to whatever needs the session.
type Manager struct {
	accounts repository.AccountRepository
	tokens   TokenStore

	mu      sync.Mutex // serializes operations; readers use current
	current atomic.Pointer[Snapshot]
}

func NewManager(accounts repository.AccountRepository, tokens TokenStore) *Manager {
	m := &Manager{accounts: accounts, tokens: tokens}
	m.current.Store(&Snapshot{})
	return m
}

// Current returns the latest snapshot.
func (m *Manager) Current() Snapshot {
	return *m.current.Load()
}

func (m *Manager) publish(s Snapshot) Snapshot {
	m.current.Store(&s)
	return s
}

// Restore picks up a persisted token and loads its user. A token the remote
// API no longer accepts is discarded.
func (m *Manager) Restore(ctx context.Context) (Snapshot, error) {
	token, err := m.tokens.Load(ctx)
	if err != nil {
		return m.Current(), err
	}
	if token == "" {
		return m.Current(), nil
	}

	m.mu.Lock()
	m.publish(Snapshot{Token: token})
	m.mu.Unlock()

	return m.RefreshUser(ctx)
}

func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (Snapshot, error) {
	if creds.Email == "" || creds.Password == "" {
		return m.Current(), domain.NewValidationError("email and password are required")
	}
	token, err := m.accounts.Login(ctx, creds)
	if err != nil {
		return m.Current(), fmt.Errorf("login: %w", err)
	}
	return m.establish(ctx, token)
}

func (m *Manager) RegisterCompany(ctx context.Context, form domain.Registration) (Snapshot, error) {
	token, err := m.accounts.RegisterCompany(ctx, form)
	if err != nil {
		return m.Current(), fmt.Errorf("register company: %w", err)
	}
	return m.establish(ctx, token)
}

func (m *Manager) RegisterDistributor(ctx context.Context, form domain.Registration) (Snapshot, error) {
	token, err := m.accounts.RegisterDistributor(ctx, form)
	if err != nil {
		return m.Current(), fmt.Errorf("register distributor: %w", err)
	}
	return m.establish(ctx, token)
}

func (m *Manager) establish(ctx context.Context, token string) (Snapshot, error) {
	if token == "" {
		return m.Current(), errors.New("remote API returned no token")
	}
	if err := m.tokens.Save(ctx, token); err != nil {
		return m.Current(), err
	}

	m.mu.Lock()
	m.publish(Snapshot{Token: token, Authenticated: true})
	m.mu.Unlock()

	return m.RefreshUser(ctx)
}

// RefreshUser reloads the profile behind the current token. If the remote
// API rejects the token the session is logged out.
func (m *Manager) RefreshUser(ctx context.Context) (Snapshot, error) {
	cur := m.Current()
	if cur.Token == "" {
		return cur, domain.ErrNotAuthenticated
	}

	user, err := m.accounts.Me(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteRejected) {
			log.Warn().Err(err).Msg("stored session rejected, logging out")
			out, logoutErr := m.Logout(ctx)
			return out, errors.Join(err, logoutErr)
		}
		return cur, fmt.Errorf("load user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Current().Token != cur.Token {
		// a login or logout happened meanwhile; this result is stale
		return m.Current(), nil
	}
	return m.publish(Snapshot{Token: cur.Token, User: user, Authenticated: true}), nil
}

func (m *Manager) Logout(ctx context.Context) (Snapshot, error) {
	err := m.tokens.Clear(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.publish(Snapshot{}), err
}

// UpdateUser merges locally known profile fields into a new snapshot.
func (m *Manager) UpdateUser(patch domain.User) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.Current()
	base := domain.User{}
	if cur.User != nil {
		base = *cur.User
	}
	merged := base.Merge(patch)
	cur.User = &merged
	return m.publish(cur)
}

// UpdateProfile saves profile changes remotely and publishes the result.
func (m *Manager) UpdateProfile(ctx context.Context, patch domain.User) (Snapshot, error) {
	user, err := m.accounts.UpdateProfile(ctx, patch)
	if err != nil {
		return m.Current(), fmt.Errorf("update profile: %w", err)
	}
	return m.UpdateUser(*user), nil
}
