package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	InitJWT("test-secret-key")

	id := Identity{
		UserID:    "7b0c5f0e-4a8e-4c57-9d53-3f1f0b5c2a11",
		Email:     "engineer@peo.gov.ph",
		Role:      "ADMIN",
		SessionID: "2f8d4a36-9a9b-4f0e-8f64-9c2d7f3e1b20",
	}
	token, err := IssueToken(id, time.Now().Add(time.Hour), "peo_admin")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
	assert.Equal(t, "peo_admin", claims.Issuer)
	assert.Equal(t, id.SessionID, claims.ID)
	assert.Equal(t, id.UserID, claims.Subject)
}

func TestParseToken_Failures(t *testing.T) {
	InitJWT("test-secret-key")
	valid := Identity{UserID: "u-1", Email: "staff@peo.gov.ph", Role: "STAFF", SessionID: "s-1"}

	expired, err := IssueToken(valid, time.Now().Add(-time.Hour), "peo_admin")
	require.NoError(t, err)
	noSession, err := IssueToken(Identity{UserID: "u-1"}, time.Now().Add(time.Hour), "peo_admin")
	require.NoError(t, err)

	InitJWT("other-secret")
	foreign, err := IssueToken(valid, time.Now().Add(time.Hour), "peo_admin")
	require.NoError(t, err)
	InitJWT("test-secret-key")

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "invalid.token.string", ErrTokenInvalid},
		{"expired", expired, ErrTokenExpired},
		{"wrong secret", foreign, ErrTokenInvalid},
		{"missing session", noSession, ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSecretNotSet(t *testing.T) {
	jwtSecret = nil
	t.Cleanup(func() { InitJWT("test-secret-key") })

	_, err := IssueToken(Identity{UserID: "u-1", SessionID: "s-1"}, time.Now().Add(time.Hour), "peo_admin")
	assert.ErrorIs(t, err, ErrSecretNotSet)
	_, err = ParseToken("a.b.c")
	assert.ErrorIs(t, err, ErrSecretNotSet)
}
