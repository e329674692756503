package session

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantai/console/internal/api"
	"github.com/vantai/console/internal/model"
)

// fakeCreds is an in-memory credential.Store.
type fakeCreds struct {
	values map[string]string
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{values: map[string]string{}}
}

func (f *fakeCreds) Get(key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", keyring.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeCreds) Set(key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeCreds) Delete(key string) error {
	delete(f.values, key)
	return nil
}

// fakeBackend is a scriptable session.API.
type fakeBackend struct {
	token string

	loginResult *api.LoginResult
	loginErr    error

	currentUser    *model.User
	currentUserErr error
	currentCalls   int
}

func (f *fakeBackend) Login(
	ctx context.Context, email, password string,
) (*api.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (*model.User, error) {
	f.currentCalls++
	return f.currentUser, f.currentUserErr
}

func (f *fakeBackend) SetToken(token string) {
	f.token = token
}

func TestRestore(t *testing.T) {
	t.Run("no stored token leaves session signed out", func(t *testing.T) {
		backend := &fakeBackend{}
		m := NewManager(backend, newFakeCreds())

		require.NoError(t, m.Restore(context.Background()))
		assert.False(t, m.IsAuthenticated())
		assert.False(t, m.Loading())
		assert.Nil(t, m.User())
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		backend := &fakeBackend{
			currentUser: &model.User{ID: "u1", Role: model.RoleCustomer, Name: "Lan"},
		}
		creds := newFakeCreds()
		creds.values["api-token"] = "tok-123"
		m := NewManager(backend, creds)

		require.NoError(t, m.Restore(context.Background()))
		assert.True(t, m.IsAuthenticated())
		assert.False(t, m.Loading())
		assert.Equal(t, "tok-123", backend.token)
		require.NotNil(t, m.User())
		assert.Equal(t, "u1", m.User().ID)
	})

	t.Run("rejected token clears the stored session", func(t *testing.T) {
		backend := &fakeBackend{
			currentUserErr: &api.AuthError{Message: "token expired"},
		}
		creds := newFakeCreds()
		creds.values["api-token"] = "stale"
		creds.values["user"] = `{"id":"u1"}`
		m := NewManager(backend, creds)

		err := m.Restore(context.Background())
		require.Error(t, err)
		assert.False(t, m.IsAuthenticated())
		assert.False(t, m.Loading())

		_, getErr := creds.Get("api-token")
		assert.True(t, errors.Is(getErr, keyring.ErrKeyNotFound))
		assert.Empty(t, backend.token)
	})

	t.Run("runs at most once", func(t *testing.T) {
		backend := &fakeBackend{
			currentUser: &model.User{ID: "u1", Role: model.RoleStaff},
		}
		creds := newFakeCreds()
		creds.values["api-token"] = "tok-123"
		m := NewManager(backend, creds)

		require.NoError(t, m.Restore(context.Background()))
		require.NoError(t, m.Restore(context.Background()))
		assert.Equal(t, 1, backend.currentCalls)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success persists the session", func(t *testing.T) {
		backend := &fakeBackend{
			loginResult: &api.LoginResult{
				Token: "tok-456",
				User:  model.User{ID: "u2", Role: model.RoleStaff, Name: "Minh"},
			},
		}
		creds := newFakeCreds()
		m := NewManager(backend, creds)

		require.NoError(t, m.Login(context.Background(), "minh@vantai.vn", "pw"))
		assert.True(t, m.IsAuthenticated())
		assert.Equal(t, "tok-456", backend.token)

		stored, err := creds.Get("api-token")
		require.NoError(t, err)
		assert.Equal(t, "tok-456", stored)
	})

	t.Run("failure propagates the server error unchanged", func(t *testing.T) {
		backend := &fakeBackend{
			loginErr: &api.AuthError{Message: "incorrect email or password"},
		}
		m := NewManager(backend, newFakeCreds())

		err := m.Login(context.Background(), "x@y.z", "bad")
		require.Error(t, err)
		assert.Equal(t, "incorrect email or password", err.Error())
		assert.False(t, m.IsAuthenticated())
	})
}

func TestLogout(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{
			Token: "tok-789",
			User:  model.User{ID: "u3", Role: model.RoleCustomer},
		},
	}
	creds := newFakeCreds()
	m := NewManager(backend, creds)
	require.NoError(t, m.Login(context.Background(), "a@b.c", "pw"))

	require.NoError(t, m.Logout())
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.User())
	assert.Empty(t, backend.token)

	_, err := creds.Get("api-token")
	assert.True(t, errors.Is(err, keyring.ErrKeyNotFound))
}

func TestCustomerID(t *testing.T) {
	t.Run("customer role scopes searches", func(t *testing.T) {
		backend := &fakeBackend{
			currentUser: &model.User{ID: "cust-1", Role: model.RoleCustomer},
		}
		creds := newFakeCreds()
		creds.values["api-token"] = "tok"
		m := NewManager(backend, creds)
		require.NoError(t, m.Restore(context.Background()))

		assert.Equal(t, "cust-1", m.CustomerID())
	})

	t.Run("staff role searches globally", func(t *testing.T) {
		backend := &fakeBackend{
			currentUser: &model.User{ID: "staff-1", Role: model.RoleStaff},
		}
		creds := newFakeCreds()
		creds.values["api-token"] = "tok"
		m := NewManager(backend, creds)
		require.NoError(t, m.Restore(context.Background()))

		assert.Empty(t, m.CustomerID())
	})
}
