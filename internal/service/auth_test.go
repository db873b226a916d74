package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	loggedIn, loginToken, err := svc.Login(context.Background(), "alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "supersecret",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")
	user := createUser(t, db)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	other := NewAuthService(db, "different-secret")
	user := createUser(t, db)
	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
