package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yeremiapane/food-delivery-web/models"
)

type DriverSignup struct {
	VehicleType   models.VehicleType `json:"vehicleType"`
	VehicleNumber string             `json:"vehicleNumber"`
	LicenseNumber string             `json:"licenseNumber"`
}

type locationUpdate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func (c *Client) RegisterDriver(ctx context.Context, token string, in DriverSignup) (*models.Driver, error) {
	var out models.Driver
	if err := c.sendJSON(ctx, http.MethodPost, "/drivers/register", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentDriver(ctx context.Context, token string) (*models.Driver, error) {
	var out models.Driver
	if err := c.getJSON(ctx, "/drivers/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDriverLocation(ctx context.Context, token string, p models.GeoPoint) error {
	body := locationUpdate{Longitude: p.Longitude(), Latitude: p.Latitude()}
	return c.sendJSON(ctx, http.MethodPatch, "/drivers/location", token, body, nil)
}

func (c *Client) UpdateDriverAvailability(ctx context.Context, token string, available bool) error {
	body := map[string]bool{"isAvailable": available}
	return c.sendJSON(ctx, http.MethodPatch, "/drivers/availability", token, body, nil)
}

func (c *Client) AcceptDelivery(ctx context.Context, token, deliveryID string) error {
	return c.sendJSON(ctx, http.MethodPost, "/drivers/deliveries/"+url.PathEscape(deliveryID)+"/accept", token, nil, nil)
}

func (c *Client) CompleteDelivery(ctx context.Context, token, deliveryID string) error {
	return c.sendJSON(ctx, http.MethodPost, "/drivers/deliveries/"+url.PathEscape(deliveryID)+"/complete", token, nil, nil)
}
