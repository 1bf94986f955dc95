package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebase/backend/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret", nil)

	user, token, err := svc.Register(ctx(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)

	loggedIn, loginToken, err := svc.Login(ctx(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret", nil)

	_, _, err := svc.Register(ctx(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx(), "someone", "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = svc.Register(ctx(), "alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret", nil)

	_, _, err := svc.Register(ctx(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx(), "alice@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret", nil)

	user, token, err := svc.Register(ctx(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	db := newTestDB(t)
	issuer := NewAuthService(db, "test-secret", nil)
	verifier := NewAuthService(db, "other-secret", nil)

	_, token, err := issuer.Register(ctx(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestRevokeTokenWithoutRedis(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret", nil)

	_, token, err := svc.Register(ctx(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	// Without a denylist backend revocation is a no-op and the token
	// stays valid until expiry.
	require.NoError(t, svc.RevokeToken(ctx(), token))
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)
}

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret", nil)

	user, _, err := svc.Register(ctx(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	found, err := svc.GetUserByID(ctx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)
}
