package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	tok, exp, err := m.GenerateAccessToken("cus_1", "ai_1", "sid-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", claims.CustomerID)
	assert.Equal(t, "ai_1", claims.AuthIdentityID)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	tok, _, err := m.GenerateRefreshToken("cus_1", "ai_1", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
	_, err = m.ParseRefreshToken(tok)
	assert.NoError(t, err)
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("cus_1", "ai_1", "sid-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}
