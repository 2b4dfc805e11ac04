package tokengenerator

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJwtTokenGenerator_RoundTrip(t *testing.T) {
	gen := NewJwtTokenGenerator("test-secret", "test-issuer", "test-audience")

	tokenStr, expiry, err := gen.GenerateToken("user-123", 15*time.Minute, map[string]interface{}{
		"email": "user@example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiry, 10*time.Second)

	token, err := gen.ParseToken(tokenStr)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)

	issuer, err := claims.GetIssuer()
	require.NoError(t, err)
	assert.Equal(t, "test-issuer", issuer)
}

func TestJwtTokenGenerator_RejectsWrongSecret(t *testing.T) {
	gen := NewJwtTokenGenerator("test-secret", "test-issuer", "test-audience")
	other := NewJwtTokenGenerator("other-secret", "test-issuer", "test-audience")

	tokenStr, _, err := gen.GenerateToken("user-123", time.Minute, nil)
	require.NoError(t, err)

	_, err = other.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestJwtTokenGenerator_RejectsExpired(t *testing.T) {
	gen := NewJwtTokenGenerator("test-secret", "test-issuer", "test-audience")

	tokenStr, _, err := gen.GenerateToken("user-123", -time.Minute, nil)
	require.NoError(t, err)

	_, err = gen.ParseToken(tokenStr)
	assert.Error(t, err)
}
