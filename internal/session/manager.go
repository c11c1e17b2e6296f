// internal/session/manager.go

// Package session holds the client's view of who is signed in.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

// IdentityClient is the part of the API the session needs
type IdentityClient interface {
	Current(ctx context.Context) (*user.Profile, error)
	Logout(ctx context.Context, refreshToken string) error
}

// State is a snapshot of the session
type State struct {
	Authenticated bool
	Loading       bool
	User          *user.Profile
}

// Manager owns the session state. Identity always comes from the server;
// stored tokens only say whom to ask about.
type Manager struct {
	store    TokenStore
	identity IdentityClient
	log      logrus.FieldLogger

	mu    sync.RWMutex
	state State
}

// NewManager creates an anonymous session. Call Bootstrap to restore one.
func NewManager(store TokenStore, identity IdentityClient, log logrus.FieldLogger) *Manager {
	return &Manager{store: store, identity: identity, log: log}
}

// State returns the current snapshot
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Loading reports whether a bootstrap is in flight
func (m *Manager) Loading() bool {
	return m.State().Loading
}

// AccessToken is the token to send with API calls, "" when there is none.
// It has the shape of client.TokenSource.
func (m *Manager) AccessToken() string {
	t, err := m.store.Tokens()
	if err != nil {
		m.log.WithError(err).Warn("failed to read stored tokens")
		return ""
	}
	return t.AccessToken
}

// Bootstrap resolves the stored access token into a user. Without a token no
// call is made. Any failure leaves the session anonymous but keeps the stored
// tokens; it is never reported as an error.
func (m *Manager) Bootstrap(ctx context.Context) State {
	tokens, err := m.store.Tokens()
	if err != nil {
		m.log.WithError(err).Warn("failed to read stored tokens")
	}
	if tokens.AccessToken == "" {
		m.set(State{})
		return m.State()
	}

	m.mu.Lock()
	m.state.Loading = true
	m.mu.Unlock()

	profile, err := m.identity.Current(ctx)
	if err != nil {
		m.log.WithError(err).Debug("stored token not accepted, continuing anonymously")
		m.set(State{})
		return m.State()
	}

	m.set(State{Authenticated: true, User: profile})
	return m.State()
}

// Login stores a freshly issued pair and asks the server who it belongs to
func (m *Manager) Login(ctx context.Context, accessToken, refreshToken string) (State, error) {
	if err := m.store.SaveTokens(Tokens{AccessToken: accessToken, RefreshToken: refreshToken}); err != nil {
		return m.State(), fmt.Errorf("failed to store tokens: %w", err)
	}
	return m.Bootstrap(ctx), nil
}

// Logout revokes the session on the server. Local tokens are cleared only
// once the server confirmed; on failure nothing changes locally.
func (m *Manager) Logout(ctx context.Context) error {
	tokens, err := m.store.Tokens()
	if err != nil {
		return fmt.Errorf("failed to read stored tokens: %w", err)
	}
	if err := m.identity.Logout(ctx, tokens.RefreshToken); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if err := m.store.ClearTokens(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	m.set(State{})
	return nil
}

// PageSize is the listing page size preference
func (m *Manager) PageSize() int {
	d, err := m.store.ConfigData()
	if err != nil || d.PageSize < 1 {
		return pagination.DefaultPageSize
	}
	return d.PageSize
}

// SetPageSize stores the listing page size preference
func (m *Manager) SetPageSize(n int) error {
	if n < 1 || n > pagination.MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d", pagination.MaxPageSize)
	}
	d, err := m.store.ConfigData()
	if err != nil {
		return err
	}
	d.PageSize = n
	return m.store.SaveConfigData(d)
}

func (m *Manager) set(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
