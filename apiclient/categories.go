package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yeremiapane/food-delivery-web/models"
)

type CategoryInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	RestaurantID string `json:"restaurantId"`
}

// ListCategories works without a token for the public storefront.
func (c *Client) ListCategories(ctx context.Context, token, restaurantID string) ([]models.Category, error) {
	var out []models.Category
	q := url.Values{"restaurantId": {restaurantID}}
	if err := c.getJSON(ctx, "/categories", token, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, in CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.sendJSON(ctx, http.MethodPost, "/categories", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, token, id string, in CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.sendJSON(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), token, nil, nil)
}
