package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/layout"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/session"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type HomeController struct {
	Storefront *services.StorefrontService
	MapsAPIKey string
}

func NewHomeController(storefront *services.StorefrontService, mapsAPIKey string) *HomeController {
	return &HomeController{Storefront: storefront, MapsAPIKey: mapsAPIKey}
}

// Config hands the browser its public settings
func (hc *HomeController) Config(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Client configuration", gin.H{
		"mapsApiKey": hc.MapsAPIKey,
	})
}

// Home renders without the marquee when the restaurant list cannot be loaded
func (hc *HomeController) Home(c *gin.Context) {
	marquee, err := hc.Storefront.Restaurants(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Errorf("Error loading restaurant marquee: %v", err)
	}
	utils.RespondJSON(c, http.StatusOK, "Home", layout.HomeContent(marquee))
}

// Nav returns the menu for whoever is signed in, with the active link marked
func (hc *HomeController) Nav(c *gin.Context) {
	var role models.Role
	st := session.Current(c.Request.Context())
	if st.Authenticated {
		role = st.User.Role
	}
	path := c.DefaultQuery("path", "/")
	utils.RespondJSON(c, http.StatusOK, "Navigation", gin.H{
		"items":   layout.NavItems(role, path),
		"session": st,
	})
}

func (hc *HomeController) RestaurantMenu(c *gin.Context) {
	m, err := hc.Storefront.Menu(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant menu", m)
}
