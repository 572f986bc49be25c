package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlabs/dms/models"
)

func TestUserRegister(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register("alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := svc.Register("alice", "another-pass")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestUserAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("alice", "s3cret-pass")
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		user, err := svc.Authenticate("alice", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := svc.Authenticate("alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUserIndistinguishable", func(t *testing.T) {
		_, err := svc.Authenticate("mallory", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
