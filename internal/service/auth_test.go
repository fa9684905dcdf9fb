package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.auth.CreateUser(ctx, CreateUserParams{
		Username:  "jorge",
		Password:  "s3cret-pass",
		FirstName: "Jorge",
		LastName:  "Perez",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	t.Run("Should create an empty buyer on first login", func(t *testing.T) {
		profile, err := env.auth.Login(ctx, LoginParams{Username: "jorge", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, profile.User.ID)
		assert.Equal(t, user.ID, profile.Buyer.UserID)
		assert.True(t, profile.Buyer.Credit.IsZero())
	})

	t.Run("Should keep the existing buyer on later logins", func(t *testing.T) {
		env.store.addBuyer(user.ID, "3.50")

		profile, err := env.auth.Login(ctx, LoginParams{Username: "jorge", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, "3.50", profile.Buyer.Credit.StringFixed(2))
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, LoginParams{Username: "jorge", Password: "wrong-pass"})
		assert.ErrorIs(t, err, apperr.AuthenticationFailedErr)
	})

	t.Run("Should reject an unknown user", func(t *testing.T) {
		_, err := env.auth.Login(ctx, LoginParams{Username: "nobody", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, apperr.AuthenticationFailedErr)
	})

	t.Run("Should reject missing credentials", func(t *testing.T) {
		_, err := env.auth.Login(ctx, LoginParams{Username: "jorge"})
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.store.addUser("jorge")
	env.store.addBuyer(user.ID, "1.25")

	t.Run("Should return the buyer profile", func(t *testing.T) {
		profile, err := env.auth.Profile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jorge", profile.User.FirstName)
		assert.Equal(t, "1.25", profile.Buyer.Credit.StringFixed(2))
	})

	t.Run("Should report unauthenticated for unknown user", func(t *testing.T) {
		_, err := env.auth.Profile(ctx, uuid.New())
		assert.ErrorIs(t, err, apperr.UnauthenticatedErr)
	})
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.CreateUser(ctx, CreateUserParams{Username: "jorge", Password: "s3cret-pass"})
	require.NoError(t, err)

	t.Run("Should reject a taken username", func(t *testing.T) {
		_, err := env.auth.CreateUser(ctx, CreateUserParams{Username: "jorge", Password: "another-pass"})
		assert.ErrorIs(t, err, apperr.UsernameTakenErr)
	})

	t.Run("Should reject a short password", func(t *testing.T) {
		_, err := env.auth.CreateUser(ctx, CreateUserParams{Username: "maria", Password: "short"})
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})

	t.Run("Should reject an invalid username", func(t *testing.T) {
		_, err := env.auth.CreateUser(ctx, CreateUserParams{Username: "has space", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})
}
