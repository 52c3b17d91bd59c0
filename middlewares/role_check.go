package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

// RequireRoles lets the request through when the token role is one of roles.
// "admin" is always allowed.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := map[string]bool{"admin": true}
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		if !allowed[role] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("role %s cannot access this resource", role))
			c.Abort()
			return
		}
		c.Next()
	}
}
