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

type RestaurantAPI interface {
	RegisterRestaurant(ctx context.Context, in apiclient.RestaurantSignup) (*models.Restaurant, error)
	MyRestaurant(ctx context.Context, token string) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, token, id string, in apiclient.RestaurantUpdate) (*models.Restaurant, error)
}

type RestaurantController struct {
	API     RestaurantAPI
	Toggler *services.AvailabilityToggler
}

func NewRestaurantController(api RestaurantAPI, toggler *services.AvailabilityToggler) *RestaurantController {
	return &RestaurantController{API: api, Toggler: toggler}
}

func documentPart(field forms.Field, u *forms.Upload) []apiclient.FilePart {
	if u == nil {
		return nil
	}
	return []apiclient.FilePart{{
		Field:       string(field),
		Filename:    u.Filename,
		ContentType: u.ContentType(),
		Data:        u.Data,
	}}
}

// Register submits a restaurant signup with its optional documents (multipart)
func (rc *RestaurantController) Register(c *gin.Context) {
	var f forms.RestaurantRegistration
	if err := c.ShouldBind(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var err error
	if f.BusinessLicense, err = formUpload(c, forms.FieldBusinessLicense); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if f.FoodSafetyCertificate, err = formUpload(c, forms.FieldFoodSafetyCertificate); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var created *models.Restaurant
	out := forms.Submit(c.Request.Context(), &f, func(ctx context.Context) error {
		signup := apiclient.RestaurantSignup{
			RestaurantName: f.RestaurantName,
			OwnerName:      f.OwnerName,
			Email:          f.Email,
			Phone:          f.Phone,
			Password:       f.Password,
			CuisineType:    f.CuisineType,
			Description:    f.Description,
			Address: models.Address{
				Street:     f.Street,
				City:       f.City,
				Province:   f.Province,
				PostalCode: f.PostalCode,
				Country:    f.Country,
			},
		}
		signup.Documents = append(documentPart(forms.FieldBusinessLicense, f.BusinessLicense),
			documentPart(forms.FieldFoodSafetyCertificate, f.FoodSafetyCertificate)...)

		var err error
		created, err = rc.API.RegisterRestaurant(ctx, signup)
		return err
	})
	metrics.RecordFormSubmission("restaurant_registration", out.Label())
	if !out.OK() {
		respondOutcome(c, out)
		return
	}

	utils.InfoLogger.Printf("Restaurant registered: %s (%s)", created.Name, created.Email)
	utils.RespondJSON(c, http.StatusCreated, "Registration submitted successfully", created)
}

// Profile returns the signed-in owner's restaurant
func (rc *RestaurantController) Profile(c *gin.Context) {
	sess := mustSession(c)
	r, err := rc.API.MyRestaurant(c.Request.Context(), sess.UpstreamToken)
	if err != nil {
		respondFailure(c, err)
		return
	}
	rc.Toggler.Seed(r.ID, r.IsAvailable)
	utils.RespondJSON(c, http.StatusOK, "Restaurant profile", r)
}

// UpdateProfile edits the restaurant details
func (rc *RestaurantController) UpdateProfile(c *gin.Context) {
	sess := mustSession(c)
	if sess.RestaurantID == "" {
		respondFailure(c, services.ErrNoRestaurant)
		return
	}

	var f forms.RestaurantProfile
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var updated *models.Restaurant
	out := forms.Submit(c.Request.Context(), &f, func(ctx context.Context) error {
		var err error
		updated, err = rc.API.UpdateRestaurant(ctx, sess.UpstreamToken, sess.RestaurantID, apiclient.RestaurantUpdate{
			Name:        f.Name,
			Description: f.Description,
			CuisineType: f.CuisineType,
			Phone:       f.Phone,
			Address: models.Address{
				Street:     f.Street,
				City:       f.City,
				Province:   f.Province,
				PostalCode: f.PostalCode,
				Country:    f.Country,
			},
		})
		return err
	})
	metrics.RecordFormSubmission("restaurant_profile", out.Label())
	if !out.OK() {
		respondOutcome(c, out)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant updated successfully", updated)
}

// Availability returns the open/closed switch state
func (rc *RestaurantController) Availability(c *gin.Context) {
	st, err := rc.Toggler.State(c.Request.Context(), mustSession(c))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant availability", st)
}

// ToggleAvailability answers with the pending state; the result arrives over the websocket
func (rc *RestaurantController) ToggleAvailability(c *gin.Context) {
	st, err := rc.Toggler.Toggle(c.Request.Context(), mustSession(c))
	if err != nil {
		respondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusAccepted, "Availability update in progress", st)
}
