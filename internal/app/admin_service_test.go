package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chemsite/internal/pkg/jwtutil"
)

func newAdminService(t *testing.T) *AdminService {
	t.Helper()
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	return NewAdminService("admin", hash, "test-secret", time.Hour)
}

func TestAdminLoginIssuesToken(t *testing.T) {
	svc := newAdminService(t)

	result, err := svc.Login(LoginInput{Username: "admin", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := jwtutil.ParseToken("test-secret", result.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	svc := newAdminService(t)

	_, err := svc.Login(LoginInput{Username: "admin", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Username: "root", Password: "correct horse battery"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Username: "", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	svc := NewAdminService("admin", "", "secret", time.Hour)

	_, err := svc.Login(LoginInput{Username: "admin", Password: "anything-at-all"})
	assert.ErrorIs(t, err, ErrAdminDisabled)
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
