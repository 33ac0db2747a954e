package apiclient

import (
	"context"
	"net/http"

	"github.com/yeremiapane/food-delivery-web/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	out.User.Role = models.ParseRole(string(out.User.Role))
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.getJSON(ctx, "/auth/profile", token, nil, &out); err != nil {
		return nil, err
	}
	out.Role = models.ParseRole(string(out.Role))
	return &out, nil
}
