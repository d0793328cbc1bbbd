package services

import (
	"context"
	"testing"
	"time"

	"questlog/backend/internal/models"
	"questlog/backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T, allowMakeAdmin bool) (*AuthService, *jwt.Manager) {
	t.Helper()
	tokens := jwt.NewManager("test-secret", time.Hour)
	return NewAuthService(setupTestDB(t), tokens, allowMakeAdmin), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newTestAuthService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "kai", "kai@x.com", "pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", user.PasswordHash)
	assert.False(t, user.IsAdmin)

	for _, login := range []string{"kai", "kai@x.com"} {
		res, err := svc.Login(ctx, login, "pw123")
		require.NoError(t, err)

		claims, err := tokens.ParseToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "kai", claims.Username)
		assert.Equal(t, "kai@x.com", claims.Email)
		assert.False(t, claims.IsAdmin)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "kai", "", "pw")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "kai", "kai@x.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "kai", "other@x.com", "pw")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Username already taken or invalid data")

	_, err = svc.Register(ctx, "other", "kai@x.com", "pw")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogin_WrongPasswordIssuesNoToken(t *testing.T) {
	svc, _ := newTestAuthService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "kai", "kai@x.com", "pw123")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "kai@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, res)

	res, err = svc.Login(ctx, "nobody", "pw123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, res)
}

func TestCheckUser(t *testing.T) {
	svc, _ := newTestAuthService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "kai", "kai@x.com", "pw123")
	require.NoError(t, err)

	user, err := svc.CheckUser(ctx, "kai@x.com")
	require.NoError(t, err)
	assert.Equal(t, "kai", user.Username)

	_, err = svc.CheckUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CheckUser(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMakeAdmin(t *testing.T) {
	svc, _ := newTestAuthService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "kai", "kai@x.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, svc.MakeAdmin(ctx, user.ID))

	var reloaded models.User
	require.NoError(t, svc.db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.IsAdmin)

	res, err := svc.Login(ctx, "kai", "pw123")
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin)

	assert.ErrorIs(t, svc.MakeAdmin(ctx, 999), ErrNotFound)
}

func TestMakeAdmin_DisabledInProduction(t *testing.T) {
	svc, _ := newTestAuthService(t, false)

	err := svc.MakeAdmin(context.Background(), 1)
	assert.ErrorIs(t, err, ErrForbidden)
}
