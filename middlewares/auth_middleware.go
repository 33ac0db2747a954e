package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/session"
	"github.com/yeremiapane/food-delivery-web/utils"
)

// Context keys set by the session middlewares
const (
	SessionKey = "session"
	UserIDKey  = "userID"
	RoleKey    = "role"
)

// sessionToken reads the session cookie, falling back to a bearer header for
// non-browser clients.
func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(session.CookieName); err == nil && v != "" {
		return v
	}
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

func attach(c *gin.Context, sess *models.Session) {
	c.Set(SessionKey, sess)
	c.Set(UserIDKey, sess.UserID)
	c.Set(RoleKey, sess.Role)
	c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
}

// AuthMiddleware rejects requests without a live session.
func AuthMiddleware(sessions *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Please log in to continue"))
			c.Abort()
			return
		}

		sess, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) && !errors.Is(err, utils.ErrInvalidToken) {
				utils.ErrorLogger.Errorf("Error loading session: %v", err)
			}
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Your session has expired. Please log in again"))
			c.Abort()
			return
		}

		attach(c, sess)
		c.Next()
	}
}

// OptionalAuth attaches the session when there is one and never rejects.
func OptionalAuth(sessions *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := sessionToken(c); token != "" {
			if sess, err := sessions.Authenticate(c.Request.Context(), token); err == nil {
				attach(c, sess)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by AuthMiddleware or OptionalAuth.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok
}
