package backend

import (
	"context"
	"net/http"

	"lunch-telegram/models"
)

// Login handles POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var res models.AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "",
		models.LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register handles POST /auth/register. The response body is ignored; the
// caller logs in separately.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "",
		models.RegisterRequest{Name: name, Email: email, Password: password}, nil)
}

// Logout handles POST /auth/logout.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}
