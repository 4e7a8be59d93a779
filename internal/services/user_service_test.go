package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/logger"
	"task-manager-api/internal/models"
	"task-manager-api/internal/repositories"
	"task-manager-api/internal/services"
	"task-manager-api/testutil"
)

func newUserService() (*services.UserService, *testutil.MemoryUserStore) {
	store := testutil.NewMemoryUserStore(time.Now)
	return services.NewUserService(store, logger.Discard()), store
}

func TestRegisterUser_HashesPassword(t *testing.T) {
	s, store := newUserService()
	ctx := context.Background()

	u, err := s.RegisterUser(ctx, models.UserRegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash, "hash is not returned")

	stored, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, repositories.VerifyPassword(stored.PasswordHash, "password123"))
}

func TestRegisterUser_Duplicate(t *testing.T) {
	s, _ := newUserService()
	ctx := context.Background()
	req := models.UserRegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"}

	_, err := s.RegisterUser(ctx, req)
	require.NoError(t, err)

	_, err = s.RegisterUser(ctx, req)
	assert.Equal(t, apperror.KindUniqueViolation, apperror.KindOf(err))
}

func TestAuthenticateUser(t *testing.T) {
	s, _ := newUserService()
	ctx := context.Background()
	_, err := s.RegisterUser(ctx, models.UserRegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	u, err := s.AuthenticateUser(ctx, models.UserLoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Empty(t, u.PasswordHash)

	_, err = s.AuthenticateUser(ctx, models.UserLoginRequest{Email: "alice@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = s.AuthenticateUser(ctx, models.UserLoginRequest{Email: "bob@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
