package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/metrics"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type DriverRegistrar interface {
	RegisterDriver(ctx context.Context, token string, in apiclient.DriverSignup) (*models.Driver, error)
}

type DriverController struct {
	API      DriverRegistrar
	Trackers *services.TrackerRegistry
}

func NewDriverController(api DriverRegistrar, trackers *services.TrackerRegistry) *DriverController {
	return &DriverController{API: api, Trackers: trackers}
}

// Register creates the driver profile for a signed-in DELIVERY user
func (dc *DriverController) Register(c *gin.Context) {
	sess := mustSession(c)

	var f forms.DriverRegistration
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var driver *models.Driver
	out := forms.Submit(c.Request.Context(), &f, func(ctx context.Context) error {
		var err error
		driver, err = dc.API.RegisterDriver(ctx, sess.UpstreamToken, apiclient.DriverSignup{
			VehicleType:   models.VehicleType(f.VehicleType),
			VehicleNumber: f.VehicleNumber,
			LicenseNumber: f.LicenseNumber,
		})
		return err
	})
	metrics.RecordFormSubmission("driver_registration", out.Label())
	if !out.OK() {
		respondOutcome(c, out)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Driver registered successfully", driver)
}

func (dc *DriverController) Me(c *gin.Context) {
	d, err := dc.Trackers.Current(c.Request.Context(), mustSession(c))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Driver profile", d)
}

func (dc *DriverController) SetAvailability(c *gin.Context) {
	var body struct {
		IsAvailable *bool `json:"isAvailable" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	d, err := dc.Trackers.SetAvailability(c.Request.Context(), mustSession(c), *body.IsAvailable)
	if err != nil {
		respondFailure(c, err)
		return
	}
	msg := services.MsgNowOffline
	if d.IsAvailable {
		msg = services.MsgNowAvailable
	}
	utils.RespondJSON(c, http.StatusOK, msg, d)
}

func (dc *DriverController) AcceptDelivery(c *gin.Context) {
	d, err := dc.Trackers.AcceptDelivery(c.Request.Context(), mustSession(c), c.Param("id"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery accepted", d)
}

func (dc *DriverController) CompleteDelivery(c *gin.Context) {
	d, err := dc.Trackers.CompleteDelivery(c.Request.Context(), mustSession(c), c.Param("id"))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery completed", d)
}
