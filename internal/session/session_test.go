package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccounts implements repository.AccountRepository for the calls the
// session makes; the rest are unused.
type fakeAccounts struct {
	token    string
	loginErr error
	user     *domain.User
	meErr    error
	meCalls  int
}

func (f *fakeAccounts) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	return f.token, f.loginErr
}
func (f *fakeAccounts) RegisterCompany(ctx context.Context, form domain.Registration) (string, error) {
	return f.token, nil
}
func (f *fakeAccounts) RegisterDistributor(ctx context.Context, form domain.Registration) (string, error) {
	return f.token, nil
}
func (f *fakeAccounts) Me(ctx context.Context) (*domain.User, error) {
	f.meCalls++
	return f.user, f.meErr
}
func (f *fakeAccounts) UpdateProfile(ctx context.Context, patch domain.User) (*domain.User, error) {
	merged := f.user.Merge(patch)
	return &merged, nil
}
func (f *fakeAccounts) ListEmployees(ctx context.Context) ([]domain.Employee, error) { return nil, nil }
func (f *fakeAccounts) AddEmployee(ctx context.Context, e domain.Employee) error     { return nil }
func (f *fakeAccounts) ListDistributors(ctx context.Context) ([]domain.Distributor, error) {
	return nil, nil
}
func (f *fakeAccounts) UpdateDistributorStatus(ctx context.Context, id string, s domain.DistributorStatus) error {
	return nil
}
func (f *fakeAccounts) OnboardShop(ctx context.Context, shop domain.Shop) error { return nil }

func TestManager_LoginPersistsTokenAndLoadsUser(t *testing.T) {
	accounts := &fakeAccounts{token: "jwt", user: &domain.User{ID: "u1", Name: "Ops", EntityType: domain.EntityCompany}}
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "b2b", "token"))
	m := NewManager(accounts, tokens)

	before := m.Current()
	snap, err := m.Login(context.Background(), domain.Credentials{Email: "ops@acme.test", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, snap.Authenticated)
	assert.True(t, snap.IsCompany())
	assert.Equal(t, "jwt", snap.Token)
	assert.False(t, before.Authenticated, "earlier snapshot must not change")

	stored, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt", stored)
}

func TestManager_LoginRequiresCredentials(t *testing.T) {
	m := NewManager(&fakeAccounts{}, &MemoryTokenStore{})

	_, err := m.Login(context.Background(), domain.Credentials{Email: "ops@acme.test"})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestManager_RestoreWithRejectedTokenLogsOut(t *testing.T) {
	accounts := &fakeAccounts{meErr: &domain.RemoteError{Status: 401, Message: "Token is not valid"}}
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save(context.Background(), "expired"))
	m := NewManager(accounts, tokens)

	snap, err := m.Restore(context.Background())
	require.Error(t, err)
	assert.False(t, snap.Authenticated)
	assert.Empty(t, snap.Token)

	stored, _ := tokens.Load(context.Background())
	assert.Empty(t, stored)
}

func TestManager_RestoreWithoutTokenIsAnonymous(t *testing.T) {
	accounts := &fakeAccounts{}
	m := NewManager(accounts, &MemoryTokenStore{})

	snap, err := m.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Authenticated)
	assert.Zero(t, accounts.meCalls)
}

func TestManager_LogoutClearsToken(t *testing.T) {
	accounts := &fakeAccounts{token: "jwt", user: &domain.User{ID: "u1"}}
	tokens := &MemoryTokenStore{}
	m := NewManager(accounts, tokens)
	_, err := m.Login(context.Background(), domain.Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)

	snap, err := m.Logout(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Authenticated)
	assert.Nil(t, snap.User)

	stored, _ := tokens.Load(context.Background())
	assert.Empty(t, stored)
}

func TestManager_UpdateUserReturnsNewSnapshot(t *testing.T) {
	accounts := &fakeAccounts{token: "jwt", user: &domain.User{ID: "u1", Name: "Ops"}}
	m := NewManager(accounts, &MemoryTokenStore{})
	first, err := m.Login(context.Background(), domain.Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)

	second := m.UpdateUser(domain.User{Name: "Ops Team"})

	assert.Equal(t, "Ops", first.User.Name)
	assert.Equal(t, "Ops Team", second.User.Name)
	assert.Equal(t, "u1", second.User.ID)
	assert.Equal(t, second, m.Current())
}
