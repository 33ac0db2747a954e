package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type CategoryController struct {
	Service *services.CategoryService
}

func NewCategoryController(s *services.CategoryService) *CategoryController {
	return &CategoryController{Service: s}
}

// GetAllCategories supports ?q= filtering and ?refresh=true to refetch
func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	list, err := cc.Service.List(c.Request.Context(), mustSession(c), c.Query("q"), c.Query("refresh") == "true")
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All categories", list)
}

func (cc *CategoryController) GetCategoryByID(c *gin.Context) {
	cat, err := cc.Service.Get(c.Request.Context(), mustSession(c), c.Param("id"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category detail", cat)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var f forms.Category
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	created, out := cc.Service.Create(c.Request.Context(), mustSession(c), &f)
	if !out.OK() {
		respondOutcome(c, out)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", created)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	var f forms.Category
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updated, out := cc.Service.Update(c.Request.Context(), mustSession(c), c.Param("id"), &f)
	if !out.OK() {
		respondOutcome(c, out)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated successfully", updated)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	if err := cc.Service.Delete(c.Request.Context(), mustSession(c), id); err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted successfully", gin.H{"id": id})
}
