package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yeremiapane/food-delivery-web/models"
)

// RestaurantSignup is the multipart body of a restaurant registration.
type RestaurantSignup struct {
	RestaurantName string
	OwnerName      string
	Email          string
	Phone          string
	Password       string
	CuisineType    string
	Description    string
	Address        models.Address
	Documents      []FilePart
}

func (s RestaurantSignup) fields() map[string]string {
	return map[string]string{
		"restaurantName": s.RestaurantName,
		"ownerName":      s.OwnerName,
		"email":          s.Email,
		"phone":          s.Phone,
		"password":       s.Password,
		"cuisineType":    s.CuisineType,
		"description":    s.Description,
		"street":         s.Address.Street,
		"city":           s.Address.City,
		"province":       s.Address.Province,
		"postalCode":     s.Address.PostalCode,
		"country":        s.Address.Country,
	}
}

type RestaurantUpdate struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CuisineType string         `json:"cuisineType"`
	Phone       string         `json:"phone"`
	Address     models.Address `json:"address"`
}

func (c *Client) RegisterRestaurant(ctx context.Context, in RestaurantSignup) (*models.Restaurant, error) {
	body, contentType, err := encodeMultipart(in.fields(), in.Documents)
	if err != nil {
		return nil, err
	}
	var out models.Restaurant
	if err := c.do(ctx, http.MethodPost, "/restaurants/register", "", body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyRestaurant(ctx context.Context, token string) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := c.getJSON(ctx, "/restaurants/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRestaurant(ctx context.Context, token, id string, in RestaurantUpdate) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := c.sendJSON(ctx, http.MethodPut, "/restaurants/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetRestaurantAvailability(ctx context.Context, token, id string, available bool) error {
	body := map[string]bool{"isAvailable": available}
	return c.sendJSON(ctx, http.MethodPatch, "/restaurants/"+url.PathEscape(id)+"/availability", token, body, nil)
}

func (c *Client) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if err := c.getJSON(ctx, "/restaurants", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
