package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/session"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type AuthController struct {
	Sessions *session.Service
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
}

func NewAuthController(sessions *session.Service, secureCookie bool) *AuthController {
	return &AuthController{Sessions: sessions, SecureCookie: secureCookie}
}

func (ac *AuthController) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", ac.SecureCookie, true)
}

// Login signs in upstream and sets the session cookie
func (ac *AuthController) Login(c *gin.Context) {
	var f forms.Login
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	issued, out := ac.Sessions.Login(c.Request.Context(), &f)
	if issued == nil {
		respondOutcome(c, out)
		return
	}

	ac.setCookie(c, issued.Token, int(ac.Sessions.TTL().Seconds()))
	utils.RespondJSON(c, http.StatusOK, "Login successful", session.StateOf(issued.Session))
}

// Session reports who is signed in
func (ac *AuthController) Session(c *gin.Context) {
	sess, err := ac.Sessions.Refresh(c.Request.Context(), mustSession(c))
	if errors.Is(err, session.ErrExpired) {
		ac.setCookie(c, "", -1)
		utils.RespondJSON(c, http.StatusUnauthorized, "Your session has expired, please sign in again", session.State{})
		return
	}
	if err != nil {
		// the stored copy is still good enough to render
		utils.ErrorLogger.Errorf("Error refreshing session: %v", err)
		sess = mustSession(c)
	}
	utils.RespondJSON(c, http.StatusOK, "Current session", session.StateOf(sess))
}

// Logout ends the session and sends the browser home so all client state is dropped
func (ac *AuthController) Logout(c *gin.Context) {
	sess := mustSession(c)
	if err := ac.Sessions.Logout(c.Request.Context(), sess); err != nil {
		utils.ErrorLogger.Errorf("Error during logout: %v", err)
	}
	ac.setCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/")
}
