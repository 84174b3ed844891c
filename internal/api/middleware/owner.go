package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OwnerHeader — заголовок, которым витрина передаёт идентификатор покупателя.
// Аутентификацию выполняет внешний шлюз, сервис доверяет заголовку.
const OwnerHeader = "X-User-ID"

const ownerContextKey = "owner_id"

// RequireOwner отклоняет запросы без идентификатора покупателя.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + OwnerHeader + " header",
			})
			return
		}
		c.Set(ownerContextKey, ownerID)
		c.Next()
	}
}

// OwnerID возвращает идентификатор покупателя из контекста запроса.
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerContextKey)
}
