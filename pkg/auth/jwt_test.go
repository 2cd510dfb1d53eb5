package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signTestToken(t *testing.T, secret string, claims *JWTCustomClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier_ParseToken_Valid(t *testing.T) {
	// Arrange
	verifier, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	tokenString := signTestToken(t, testSecret, &JWTCustomClaims{
		UserID:   42,
		Username: "player",
		IsAdmin:  false,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	// Act
	claims, err := verifier.ParseToken(tokenString)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "player", claims.Username)
	assert.False(t, claims.IsAdmin)
}

func TestJWTVerifier_ParseToken_WrongSecret(t *testing.T) {
	// Arrange
	verifier, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	tokenString := signTestToken(t, "another-secret", &JWTCustomClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	// Act
	_, err = verifier.ParseToken(tokenString)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_ParseToken_Expired(t *testing.T) {
	// Arrange
	verifier, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	tokenString := signTestToken(t, testSecret, &JWTCustomClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	// Act
	_, err = verifier.ParseToken(tokenString)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_ParseToken_MissingUserID(t *testing.T) {
	// Arrange: подпись валидна, но user_id отсутствует
	verifier, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	tokenString := signTestToken(t, testSecret, &JWTCustomClaims{
		Username: "ghost",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	// Act
	_, err = verifier.ParseToken(tokenString)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTVerifier_EmptySecret(t *testing.T) {
	_, err := NewJWTVerifier("")
	assert.Error(t, err, "Пустой секрет недопустим")
}
