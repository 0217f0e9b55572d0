package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tok, err := GenerateAccessToken("secret", "ana", "admin", issued, 0)
	require.NoError(t, err)

	claims, err := ParseAccessToken(tok, "secret", issued.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issued.Add(DefaultTokenTTL), claims.ExpiresAt.Time)
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tok, err := GenerateAccessToken("secret", "bea", "member", issued, 2*time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "secret", issued.Add(2*time.Hour-time.Second))
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "secret", issued.Add(2*time.Hour+time.Second))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	now := time.Now()
	tok, err := GenerateAccessToken("right", "ana", "admin", now, time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "wrong", now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	_, err := ParseAccessToken("not.a.jwt", "k", time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}
