package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cdr-backend-V1.0/internal/apperr"
	"cdr-backend-V1.0/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{})

	user := &model.User{Name: "Subject", Email: "subject@example.com"}
	require.NoError(t, svc.Register(user, "s3cret-pass"))
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	got, err := svc.Login("subject@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{})

	cases := []struct {
		name     string
		user     model.User
		password string
	}{
		{"missing name", model.User{Email: "a@example.com"}, "pass"},
		{"missing email", model.User{Name: "A"}, "pass"},
		{"missing password", model.User{Name: "A", Email: "a@example.com"}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := svc.Register(&c.user, c.password)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{})

	require.NoError(t, svc.Register(&model.User{Name: "A", Email: "a@example.com"}, "pass"))
	err := svc.Register(&model.User{Name: "B", Email: "a@example.com"}, "other")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{})
	require.NoError(t, svc.Register(&model.User{Name: "A", Email: "a@example.com"}, "right-pass"))

	// Unknown user and wrong password read identically to a client.
	_, err := svc.Login("nobody@example.com", "right-pass")
	assert.True(t, apperr.IsAuthentication(err))
	assert.Equal(t, "invalid credentials", apperr.UserMessage(err))

	_, err = svc.Login("a@example.com", "wrong-pass")
	assert.True(t, apperr.IsAuthentication(err))
	assert.Equal(t, "invalid credentials", apperr.UserMessage(err))

	_, err = svc.Login("", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestGetProfile(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewAuthService(repo)
	user := &model.User{Name: "A", Email: "a@example.com"}
	require.NoError(t, svc.Register(user, "pass"))

	got, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = svc.GetProfile(999)
	assert.True(t, apperr.IsNotFound(err))
}
