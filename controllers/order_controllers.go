package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type OrderAPI interface {
	Order(ctx context.Context, token, id string) (*models.Order, error)
	Delivery(ctx context.Context, token, id string) (*models.Delivery, error)
}

// OrderController only reads; orders and deliveries are owned upstream.
type OrderController struct {
	API OrderAPI
}

func NewOrderController(api OrderAPI) *OrderController {
	return &OrderController{API: api}
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	o, err := oc.API.Order(c.Request.Context(), mustSession(c).UpstreamToken, c.Param("id"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", o)
}

func (oc *OrderController) GetDeliveryByID(c *gin.Context) {
	d, err := oc.API.Delivery(c.Request.Context(), mustSession(c).UpstreamToken, c.Param("id"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery detail", d)
}
