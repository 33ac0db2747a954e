package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-delivery-web/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		}
		if uid, ok := c.Get(UserIDKey); ok {
			fields["user"] = uid
		}

		if c.Writer.Status() >= 500 {
			utils.ErrorLogger.WithFields(fields).Error(path)
			return
		}
		utils.InfoLogger.WithFields(fields).Info(path)
	}
}

// ActionLogger records the start and result of a state-changing driver action.
func ActionLogger(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		utils.InfoLogger.Printf("%s requested for delivery %s", action, id)

		c.Next()

		if c.Writer.Status() < 300 {
			utils.InfoLogger.Printf("%s succeeded for delivery %s", action, id)
		} else {
			utils.ErrorLogger.Errorf("%s failed for delivery %s with status %d", action, id, c.Writer.Status())
		}
	}
}
