package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
)

func TestHandleGameError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"quota exceeded", apperrors.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"insufficient points", apperrors.ErrInsufficientPoints, http.StatusPaymentRequired},
		{"validation", apperrors.ErrValidation, http.StatusUnprocessableEntity},
		{"conflict", apperrors.ErrConflict, http.StatusConflict},
		{"expired", apperrors.ErrExpired, http.StatusConflict},
		{"unknown", errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			// Act
			handleGameError(c, tc.err)

			// Assert
			assert.Equal(t, tc.expected, w.Code)
		})
	}
}

func TestHandleGameError_WrappedErrorPreserved(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Обёрнутые ошибки распознаются через errors.Is
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := errors.Join(apperrors.ErrQuotaExceeded, errors.New("daily match limit 10 reached"))
	handleGameError(c, wrapped)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
