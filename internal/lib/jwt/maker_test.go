package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	maker := NewMaker(testSecret, 7*24*time.Hour)

	token, err := maker.GenerateToken("uid-123", "coach", "pro")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", claims.AccountUID)
	assert.Equal(t, "coach", claims.Role)
	assert.Equal(t, "pro", claims.Plan)
	assert.NotEmpty(t, claims.ID, "token must carry a jti")
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenWrongSecret(t *testing.T) {
	maker := NewMaker(testSecret, time.Hour)
	token, err := maker.GenerateToken("uid-123", "coach", "free")
	require.NoError(t, err)

	other := NewMaker("another-secret", time.Hour)
	_, err = other.ParseToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	maker := NewMaker(testSecret, -time.Minute)
	token, err := maker.GenerateToken("uid-123", "guest", "free")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	require.Error(t, err, "expired token must fail normal parse")

	claims, err := maker.ParseTokenAllowExpired(token)
	require.NoError(t, err, "expired token must still refresh")
	assert.Equal(t, "uid-123", claims.AccountUID)
	assert.Equal(t, "guest", claims.Role)
}

func TestParseTokenAllowExpiredRejectsTampered(t *testing.T) {
	maker := NewMaker(testSecret, time.Hour)
	token, err := maker.GenerateToken("uid-123", "coach", "free")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = maker.ParseTokenAllowExpired(tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	maker := NewMaker(testSecret, time.Hour)
	_, err := maker.ParseToken("not-a-token")
	require.Error(t, err)
}

func TestRemainingLife(t *testing.T) {
	maker := NewMaker(testSecret, time.Hour)
	token, err := maker.GenerateToken("uid-123", "coach", "free")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)

	life := claims.RemainingLife(time.Now())
	assert.Greater(t, life, 59*time.Minute)

	assert.Equal(t, time.Duration(0), claims.RemainingLife(time.Now().Add(2*time.Hour)))
}
