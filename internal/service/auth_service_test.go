package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-api/internal/model"
	"github.com/d60-Lab/blog-api/internal/repository"
)

func setupAuthService(t *testing.T, tokenTTL time.Duration) (AuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return NewAuthService(repository.NewUserRepository(db), "test-secret", tokenTTL), db
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := setupAuthService(t, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "pw", user.HashedPassword, "plaintext is never persisted")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "a@x.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticateAndVerify(t *testing.T) {
	svc, _ := setupAuthService(t, time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	token, err := svc.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc, _ := setupAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@x.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsGarbageAndExpiry(t *testing.T) {
	svc, _ := setupAuthService(t, -time.Minute) // 签出即过期
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := svc.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsVanishedUser(t *testing.T) {
	svc, db := setupAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	token, err := svc.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, db.Where("email = ?", "a@x.com").Delete(&model.User{}).Error)

	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
