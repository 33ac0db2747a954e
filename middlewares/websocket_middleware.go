package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/session"
)

// WebSocketAuthMiddleware authenticates the upgrade request. Browsers send the session
// cookie with it; other clients may pass the token as a query parameter.
func WebSocketAuthMiddleware(sessions *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		sess, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		attach(c, sess)
		c.Next()
	}
}
