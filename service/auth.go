package service

import (
	"context"
	"fmt"

	"studio-booking-cli/model"
)

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	endpoint := fmt.Sprintf("%s/auth/login", c.baseURL)

	var out model.AuthResponse
	if err := c.postJSON(ctx, endpoint, "", req, &out); err != nil {
		return model.AuthResponse{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	endpoint := fmt.Sprintf("%s/auth/register", c.baseURL)

	var out model.AuthResponse
	if err := c.postJSON(ctx, endpoint, "", req, &out); err != nil {
		return model.AuthResponse{}, err
	}
	return out, nil
}
