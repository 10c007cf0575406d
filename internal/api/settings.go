package api

import (
	"context"
	"net/http"

	"registryctl/internal/model"
)

// CurrentSemester fetches the process-wide current-semester setting.
func (c *Client) CurrentSemester(ctx context.Context) (model.Settings, error) {
	return getJSON[model.Settings](ctx, c, "/settings/current-semester")
}

// SetCurrentSemester updates the current semester; admin only.
func (c *Client) SetCurrentSemester(ctx context.Context, semester string) error {
	body := map[string]string{"semester": semester}
	_, err := c.Call(ctx, http.MethodPut, "/settings/current-semester", body)
	return err
}
