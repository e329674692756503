package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"

	"github.com/vantai/console/internal/api"
	"github.com/vantai/console/internal/credential"
	"github.com/vantai/console/internal/model"
)

// Keyring keys for the persisted session. These are the only durable
// session state; nothing else survives a restart.
const (
	tokenKey = "api-token"
	userKey  = "user"
)

// API is the subset of the backend client the session manager needs.
type API interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	CurrentUser(ctx context.Context) (*model.User, error)
	SetToken(token string)
}

// Manager owns the authenticated session: the token, the resolved user,
// and their persistence in the system keyring. It is safe for use from
// multiple goroutines.
type Manager struct {
	api   API
	creds credential.Store

	mu            sync.Mutex
	user          *model.User
	authenticated bool
	restored      bool
	loading       bool
}

// NewManager creates a session manager over the given API client and
// credential store.
func NewManager(api API, creds credential.Store) *Manager {
	return &Manager{
		api:     api,
		creds:   creds,
		loading: true,
	}
}

// Restore validates a previously persisted token against the backend.
// It runs at most once per process; later calls are no-ops. On any
// failure the persisted token and user are cleared and the session is
// left unauthenticated. Loading reports true until the first call
// resolves.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return nil
	}
	m.restored = true
	m.mu.Unlock()

	defer m.setLoading(false)

	token, err := m.creds.Get(tokenKey)
	if err != nil || token == "" {
		m.clear()
		if err == nil || errors.Is(err, keyring.ErrKeyNotFound) {
			return nil
		}
		return err
	}

	m.api.SetToken(token)

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.clear()
		return fmt.Errorf("validating persisted session: %w", err)
	}

	m.mu.Lock()
	m.user = user
	m.authenticated = true
	m.mu.Unlock()

	// Re-persist the resolved user so a stale cached record is refreshed.
	m.persistUser(user)
	return nil
}

// Login authenticates with the backend, persists the session, and marks
// it authenticated. The server's error message is propagated unchanged
// to the caller, which is responsible for display.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	result, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	m.api.SetToken(result.Token)

	m.mu.Lock()
	user := result.User
	m.user = &user
	m.authenticated = true
	m.mu.Unlock()

	if err := m.creds.Set(tokenKey, result.Token); err != nil {
		return fmt.Errorf("persisting session token: %w", err)
	}
	m.persistUser(&user)
	return nil
}

// Logout clears the persisted token and user and marks the session
// unauthenticated.
func (m *Manager) Logout() error {
	m.clear()
	return nil
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// IsAuthenticated reports whether a valid session is established.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// Loading reports whether the initial restore is still in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// CustomerID returns the user's ID when their role is customer, and an
// empty string otherwise. Order searches use it to scope customers to
// their own orders.
func (m *Manager) CustomerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user != nil && m.user.Role == model.RoleCustomer {
		return m.user.ID
	}
	return ""
}

// clear wipes the persisted and in-memory session state.
func (m *Manager) clear() {
	_ = m.creds.Delete(tokenKey)
	_ = m.creds.Delete(userKey)
	m.api.SetToken("")

	m.mu.Lock()
	m.user = nil
	m.authenticated = false
	m.mu.Unlock()
}

// persistUser stores the serialized user record alongside the token.
func (m *Manager) persistUser(user *model.User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	_ = m.creds.Set(userKey, string(data))
}

// setLoading updates the loading flag.
func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
}
