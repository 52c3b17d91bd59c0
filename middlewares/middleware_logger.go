package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
			"path":      path,
		}
		if businessID := c.GetString(ContextBusinessID); businessID != "" {
			fields["business_id"] = businessID
		}
		if len(c.Errors) > 0 {
			utils.ErrorLogger.WithFields(fields).Error(c.Errors.String())
			return
		}
		utils.InfoLogger.WithFields(fields).Info("request")
	}
}
