package auth_test

import (
	"testing"
	"time"

	"tasktracker/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, 24*time.Hour)

	// Generate
	userID := "test-user-id"
	token, err := tokens.GenerateToken(userID)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Parse back
	parsedUserID, err := tokens.ParseToken(token)

	assert.NoError(t, err)
	assert.Equal(t, userID, parsedUserID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	_, err := tokens.ParseToken("invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("other-secret", time.Hour)
	token, err := issuer.GenerateToken("user")
	assert.NoError(t, err)

	_, err = auth.NewTokenManager(testSecret, time.Hour).ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	// Token expired an hour ago
	claims := jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(-1 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expiredToken, _ := token.SignedString([]byte(testSecret))

	_, err := tokens.ParseToken(expiredToken)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingClaims(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	// No user_id claim
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenWithoutUserID, _ := token.SignedString([]byte(testSecret))

	_, err := tokens.ParseToken(tokenWithoutUserID)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
	assert.Equal(t, "invalid claims", err.Error())
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	claims := jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, _ := token.SignedString([]byte(testSecret))

	_, err := tokens.ParseToken(signed)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
