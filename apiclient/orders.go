package apiclient

import (
	"context"
	"net/url"

	"github.com/yeremiapane/food-delivery-web/models"
)

func (c *Client) Order(ctx context.Context, token, id string) (*models.Order, error) {
	var out models.Order
	if err := c.getJSON(ctx, "/orders/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delivery(ctx context.Context, token, id string) (*models.Delivery, error) {
	var out models.Delivery
	if err := c.getJSON(ctx, "/deliveries/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
