package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"registryctl/internal/model"
	"registryctl/internal/paginate"
)

// Role is a login role the backend knows about.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListRoles fetches all roles.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	return getJSON[[]Role](ctx, c, "/roles")
}

// RoleByName resolves a role name to its record.
func (c *Client) RoleByName(ctx context.Context, name string) (Role, error) {
	return getJSON[Role](ctx, c, "/roles/name/"+url.PathEscape(name))
}

// UserFilter narrows user list queries. Zero values are omitted.
type UserFilter struct {
	Email string
	Role  string
}

func (f UserFilter) params() map[string]string {
	return map[string]string{"email": f.Email, "role": f.Role}
}

// ListUsers fetches one page of login accounts.
func (c *Client) ListUsers(ctx context.Context, f UserFilter, cur *paginate.Cursor) (Page[model.User], error) {
	params := f.params()
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.User](ctx, c, "/users"+buildQuery(params))
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id int64) (model.User, error) {
	return getJSON[model.User](ctx, c, fmt.Sprintf("/users/%d", id))
}

// UserByEmail fetches a user by email, returning nil when none exists.
func (c *Client) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := getJSON[model.User](ctx, c, "/users/email/"+url.PathEscape(email))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a login account. The role name is resolved to its id
// first, and the username falls back to the local part of the email.
func (c *Client) CreateUser(ctx context.Context, email, password, roleName, username string) (model.User, error) {
	role, err := c.RoleByName(ctx, roleName)
	if err != nil {
		return model.User{}, err
	}
	if username == "" {
		username = email
		for i, r := range email {
			if r == '@' {
				username = email[:i]
				break
			}
		}
	}
	form := model.UserForm{
		Username: username,
		Email:    email,
		Password: password,
		RoleID:   role.ID,
		Status:   "active",
	}
	if err := form.Validate(); err != nil {
		return model.User{}, err
	}
	return postJSON[model.User](ctx, c, "/users", form)
}

// DeleteUser removes a login account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.Call(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil)
	return err
}
