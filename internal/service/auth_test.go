package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/pkg/logger"
)

type fakeUserStore struct {
	byEmail map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*model.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, fullName, passwordHash string) (*model.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, ErrDuplicateEmail
	}
	u := &model.User{
		ID:           "user-" + email,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func newAuthFixture() (*AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	return NewAuthService(users, "test-secret", time.Hour, logger.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, &model.RegisterRequest{
		Email:    "a@example.com",
		FullName: "Ada",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "a@example.com", user.Email)

	// Password is stored hashed, never verbatim.
	stored := users.byEmail["a@example.com"]
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)

	logged, token, err := svc.Login(ctx, &model.LoginRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID, claims["sub"])
	assert.Equal(t, "a@example.com", claims["email"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	req := &model.RegisterRequest{Email: "a@example.com", FullName: "Ada", Password: "correct horse"}
	_, _, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, &model.RegisterRequest{
		Email: "a@example.com", FullName: "Ada", Password: "correct horse",
	})
	require.NoError(t, err)

	_, _, unknownErr := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)

	_, _, wrongErr := svc.Login(ctx, &model.LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)

	// Same typed error either way; nothing leaks which part failed.
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestCurrentUser(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, &model.RegisterRequest{
		Email: "a@example.com", FullName: "Ada", Password: "correct horse",
	})
	require.NoError(t, err)

	got, err := svc.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.CurrentUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
