package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Page is the uniform paged envelope every list call resolves to.
type Page[T any] struct {
	Data        []T   `json:"data"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// pagePayload accepts both wire shapes: the uniform envelope and the
// page-object shape (content/totalElements, 0-based page number).
type pagePayload[T any] struct {
	Data        []T   `json:"data"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`

	Content       []T    `json:"content"`
	TotalElements *int64 `json:"totalElements"`
	Number        int    `json:"number"`
	Size          int    `json:"size"`
}

// normalize converts either wire shape into a Page, translating 0-based
// page numbers to 1-based.
func (p pagePayload[T]) normalize() Page[T] {
	if p.TotalElements != nil {
		limit := p.Size
		if limit == 0 {
			limit = len(p.Content)
		}
		return Page[T]{
			Data:        p.Content,
			Total:       *p.TotalElements,
			TotalPages:  p.TotalPages,
			CurrentPage: p.Number + 1,
			Limit:       limit,
		}
	}
	return Page[T]{
		Data:        p.Data,
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		Limit:       p.Limit,
	}
}

// getPage fetches a paged list endpoint and normalizes the response.
func getPage[T any](ctx context.Context, c *Client, endpoint string) (Page[T], error) {
	raw, err := c.Call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page[T]{}, err
	}
	if len(raw) == 0 {
		return Page[T]{}, nil
	}
	var payload pagePayload[T]
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Page[T]{}, err
	}
	return payload.normalize(), nil
}
