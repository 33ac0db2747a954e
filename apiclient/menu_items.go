package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yeremiapane/food-delivery-web/models"
)

// MenuItemInput is sent as multipart so the main image and thumbnail can ride along.
type MenuItemInput struct {
	Name         string
	Description  string
	Price        float64
	CategoryID   string
	IsAvailable  bool
	RestaurantID string
	Images       []FilePart
}

func (in MenuItemInput) fields() map[string]string {
	return map[string]string{
		"name":         in.Name,
		"description":  in.Description,
		"price":        strconv.FormatFloat(in.Price, 'f', 2, 64),
		"categoryId":   in.CategoryID,
		"isAvailable":  strconv.FormatBool(in.IsAvailable),
		"restaurantId": in.RestaurantID,
	}
}

func (c *Client) ListMenuItems(ctx context.Context, token, restaurantID string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	q := url.Values{"restaurantId": {restaurantID}}
	if err := c.getJSON(ctx, "/menu-items", token, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, token string, in MenuItemInput) (*models.MenuItem, error) {
	return c.writeMenuItem(ctx, http.MethodPost, "/menu-items", token, in)
}

func (c *Client) UpdateMenuItem(ctx context.Context, token, id string, in MenuItemInput) (*models.MenuItem, error) {
	return c.writeMenuItem(ctx, http.MethodPut, "/menu-items/"+url.PathEscape(id), token, in)
}

func (c *Client) DeleteMenuItem(ctx context.Context, token, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/menu-items/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) writeMenuItem(ctx context.Context, method, path, token string, in MenuItemInput) (*models.MenuItem, error) {
	body, contentType, err := encodeMultipart(in.fields(), in.Images)
	if err != nil {
		return nil, err
	}
	var out models.MenuItem
	if err := c.do(ctx, method, path, token, body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
