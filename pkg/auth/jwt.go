package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Ошибки проверки токена
var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// JWTCustomClaims содержит пользовательские поля для токена.
// Токены выпускает внешний identity-сервис с общим секретом,
// ядро только проверяет подпись и срок действия.
type JWTCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// JWTVerifier проверяет подпись и срок действия токенов
type JWTVerifier struct {
	secretKey []byte
}

// NewJWTVerifier создает новый верификатор JWT
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTVerifier")
	}
	return &JWTVerifier{secretKey: []byte(secret)}, nil
}

// ParseToken проверяет токен и возвращает его claims
func (s *JWTVerifier) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Принимаем только HMAC, иначе возможна подмена алгоритма
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}
	return claims, nil
}
