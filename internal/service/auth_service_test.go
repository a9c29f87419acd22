package service

import (
	"context"
	"testing"
	"time"

	"postboard/internal/auth"
	"postboard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	registry, err := auth.NewStaticRegistry(auth.DefaultIdentities())
	require.NoError(t, err)
	return NewAuthService(registry, auth.NewTokenManager("test-secret", time.Hour, rdb)), mr
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		secret   string
		code     string
		role     models.Role
	}{
		{name: "student", username: "student1", secret: "ASMstudent2024!", role: models.RoleStudent},
		{name: "admin", username: "admin", secret: "ASMadmin2024!", role: models.RoleAdmin},
		{name: "wrong secret", username: "admin", secret: "ASMstudent2024!", code: models.CodeUnauthorized},
		{name: "username is case sensitive", username: "Admin", secret: "ASMadmin2024!", code: models.CodeUnauthorized},
		{name: "missing fields", username: "", secret: "", code: models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.Login(ctx, tt.username, tt.secret)
			if tt.code != "" {
				assertAppErrorCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.Token)
			assert.Equal(t, tt.role, session.Identity.Role)
			assert.Empty(t, session.Identity.Secret)
			assert.Equal(t, auth.Capabilities(tt.role), session.Capabilities)
		})
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "student2", "ASMstudent2024!")
	require.NoError(t, err)

	claims, err := svc.Tokens().Parse(ctx, session.Token)
	require.NoError(t, err)

	identity, err := svc.Resolve(claims)
	require.NoError(t, err)
	assert.Equal(t, "Sofia Chen", identity.DisplayName)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.Tokens().Parse(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)
}

func TestAuthService_ResolveUnknownIdentity(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAuthService(t)
	_, err := svc.Resolve(&auth.Claims{})
	assertAppErrorCode(t, err, models.CodeUnauthorized)
	_, err = svc.Resolve(nil)
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}
