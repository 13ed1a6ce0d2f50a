package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"finweb/internal/core"
)

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat core.Category) error {
	cat.ID = 0
	return c.do(ctx, http.MethodPost, "/categories", nil, cat, nil)
}

// UpdateCategory sends the edited record; the backend keys it by the id it carries.
func (c *Client) UpdateCategory(ctx context.Context, cat core.Category) error {
	return c.do(ctx, http.MethodPut, "/category", nil, cat, nil)
}

// DeleteCategory fails with KindApplication when the backend answers 2xx with an error field.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	q := url.Values{"id": {strconv.FormatInt(id, 10)}}
	return c.do(ctx, http.MethodDelete, "/category", q, nil, nil)
}
