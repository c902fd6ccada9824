package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	"github.com/noah-isme/ncc-attendance-api/pkg/config"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.Username] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	f.users[user.Username] = user
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour}
}

func TestAuthServiceLoginSuperAdmin(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u1", Username: "alice", PasswordHash: hashOf(t, "password123")})
	svc := NewAuthService(repo, NewAllowlist([]string{"alice", "bob"}), jwtTestConfig(), nil, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.AccessSuperAdmin, resp.User.AccessLevel)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u1", Username: "alice", PasswordHash: hashOf(t, "password123")})
	svc := NewAuthService(repo, NewAllowlist([]string{"alice"}), jwtTestConfig(), nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginUnknownUserSameError(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, NewAllowlist([]string{"alice"}), jwtTestConfig(), nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginNotAuthorized(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u2", Username: "mallory", PasswordHash: hashOf(t, "password123")})
	svc := NewAuthService(repo, NewAllowlist([]string{"alice"}), jwtTestConfig(), nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mallory", Password: "password123"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAuthorized))
}

func TestAuthServiceRegisterStartsUnauthorized(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, NewAllowlist(nil), jwtTestConfig(), nil, nil)

	user, err := svc.Register(context.Background(), models.RegisterRequest{Username: "dave", Password: "longenough", FullName: "Dave"})
	require.NoError(t, err)
	assert.Equal(t, models.AccessViewer, user.AccessLevel)
	assert.False(t, user.IsAuthorized)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthServiceRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u1", Username: "dave"})
	svc := NewAuthService(repo, NewAllowlist(nil), jwtTestConfig(), nil, nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "dave", Password: "longenough", FullName: "Dave"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateKey))
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: "u1", Username: "bob", PasswordHash: hashOf(t, "password123")}
	repo := newFakeUserRepo(user)
	svc := NewAuthService(repo, NewAllowlist([]string{"alice", "bob"}), jwtTestConfig(), nil, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "bob", Password: "password123"})
	require.NoError(t, err)

	principal, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.UserID)
	assert.Equal(t, models.AccessAdmin, principal.AccessLevel)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), NewAllowlist(nil), jwtTestConfig(), nil, nil)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
