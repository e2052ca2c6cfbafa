package service

import (
	"context"
	"testing"

	"gymkeeper/gym-app/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alex", "alex@gym.test", "hunter22", domain.RoleParticipant)
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.True(t, user.Active)
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")

	token, loggedIn, err := svc.Login(ctx, "alex@gym.test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)

	// The token carries the user's identity and role.
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleParticipant, claims.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alex", "alex@gym.test", "hunter22", domain.RoleParticipant)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alex", "alex@gym.test", "different", domain.RoleTrainer)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTSecret, 0)

	_, err := svc.Register(context.Background(), "Alex", "alex@gym.test", "hunter22", domain.Role("admin"))
	assert.Error(t, err)
}

func TestLogin_BadCredentials(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTSecret, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alex", "alex@gym.test", "hunter22", domain.RoleParticipant)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alex@gym.test", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@gym.test", "hunter22")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
