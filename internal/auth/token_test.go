package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

func TestGenerateAndParseToken(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken("user-123")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	setTestConfig(t)

	_, err := ParseToken("not-a-token")
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidToken))
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	setTestConfig(t)
	token, err := GenerateToken("user-123")
	require.NoError(t, err)

	config.AppConfig.JWT.Secret = "rotated-secret"
	_, err = ParseToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidToken))
}

func TestParseTokenRejectsExpired(t *testing.T) {
	setTestConfig(t)

	claims := &Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.GetConfig().JWT.Secret))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidToken))
}

func TestParseTokenRejectsEmptyUserID(t *testing.T) {
	setTestConfig(t)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.GetConfig().JWT.Secret))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidToken))
}
