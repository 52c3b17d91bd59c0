package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

// WebSocketAuthMiddleware reads the token from the query string since browsers
// cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextBusinessID, claims.BusinessID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
