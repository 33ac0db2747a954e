package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/metrics"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type CheckoutController struct {
	Service *services.CheckoutService
}

func NewCheckoutController(s *services.CheckoutService) *CheckoutController {
	return &CheckoutController{Service: s}
}

// Summary prices the cart without asking for payment details
func (cc *CheckoutController) Summary(c *gin.Context) {
	var f forms.Checkout
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sum, errs := cc.Service.Summary(&f)
	if !errs.Valid() {
		respondOutcome(c, forms.Outcome{Errors: errs, Toast: forms.FixFormMessage})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order summary", sum)
}

// Pay returns a mock confirmation. No payment is taken.
func (cc *CheckoutController) Pay(c *gin.Context) {
	var f forms.Checkout
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	conf, out := cc.Service.Pay(c.Request.Context(), &f)
	metrics.RecordFormSubmission("checkout", out.Label())
	if !out.OK() {
		respondOutcome(c, out)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment confirmed", gin.H{
		"confirmation": conf,
		"summary":      services.Summarize(f.Lines),
	})
}
