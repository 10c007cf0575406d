package api

import (
	"context"
	"net/http"

	"registryctl/internal/model"
)

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is what a successful login returns.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates without a bearer header and returns the token and
// user. The caller stores the token on the session.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	raw, err := c.CallUnauthenticated(ctx, http.MethodPost, "/auth/login", creds)
	if err != nil {
		return out, err
	}
	return out, decode(raw, &out)
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Call(ctx, http.MethodPost, "/auth/logout", nil)
	return err
}

// Me validates the stored token and returns the current user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	return getJSON[model.User](ctx, c, "/auth/me")
}

// ChangePassword rotates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	_, err := c.Call(ctx, http.MethodPut, "/auth/change-password", body)
	return err
}
