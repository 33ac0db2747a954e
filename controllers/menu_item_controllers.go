package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type MenuItemController struct {
	Service *services.MenuItemService
}

func NewMenuItemController(s *services.MenuItemService) *MenuItemController {
	return &MenuItemController{Service: s}
}

// bindMenuItem reads the multipart menu item form with its images.
func bindMenuItem(c *gin.Context) (*forms.MenuItem, bool) {
	var f forms.MenuItem
	if err := c.ShouldBind(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}

	var err error
	if f.MainImage, err = formUpload(c, forms.FieldMainImage); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	if f.Thumbnail, err = formUpload(c, forms.FieldThumbnail); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	return &f, true
}

func (mc *MenuItemController) GetAllMenuItems(c *gin.Context) {
	list, err := mc.Service.List(c.Request.Context(), mustSession(c), c.Query("q"), c.Query("refresh") == "true")
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu items", list)
}

func (mc *MenuItemController) GetMenuItemByID(c *gin.Context) {
	item, err := mc.Service.Get(c.Request.Context(), mustSession(c), c.Param("id"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

func (mc *MenuItemController) CreateMenuItem(c *gin.Context) {
	f, ok := bindMenuItem(c)
	if !ok {
		return
	}

	created, out := mc.Service.Create(c.Request.Context(), mustSession(c), f)
	if !out.OK() {
		respondOutcome(c, out)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created successfully", created)
}

func (mc *MenuItemController) UpdateMenuItem(c *gin.Context) {
	f, ok := bindMenuItem(c)
	if !ok {
		return
	}

	updated, out := mc.Service.Update(c.Request.Context(), mustSession(c), c.Param("id"), f)
	if !out.OK() {
		respondOutcome(c, out)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated successfully", updated)
}

func (mc *MenuItemController) DeleteMenuItem(c *gin.Context) {
	id := c.Param("id")
	if err := mc.Service.Delete(c.Request.Context(), mustSession(c), id); err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", gin.H{"id": id})
}
