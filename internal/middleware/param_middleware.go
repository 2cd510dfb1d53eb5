package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam извлекает числовой параметр маршрута и кладёт его в
// контекст Gin под ключом contextKey. ID матчей и турниров начинаются с 1,
// поэтому ноль отклоняется наравне с нечисловыми значениями — до обращения
// к сервисам.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      fmt.Sprintf("Invalid %s: %q", paramName, raw),
				"error_type": "invalid_param",
			})
			c.Abort()
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}
