package api

import (
	"context"
	"net/http"
	"strconv"

	"finweb/internal/core"
)

type createRecurringRequest struct {
	CategoryID  int64          `json:"categoryId"`
	Amount      float64        `json:"amount"`
	Description string         `json:"description"`
	Frequency   core.Frequency `json:"frequency"`
	StartDate   string         `json:"startDate"`
	EndDate     *string        `json:"endDate"`
}

func (c *Client) ListRecurring(ctx context.Context) ([]core.RecurringTemplate, error) {
	var out []core.RecurringTemplate
	if err := c.do(ctx, http.MethodGet, "/recurring", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRecurring(ctx context.Context, t core.RecurringTemplate) error {
	req := createRecurringRequest{
		CategoryID:  t.CategoryID,
		Amount:      t.Amount.InexactFloat64(),
		Description: t.Description,
		Frequency:   t.Frequency,
		StartDate:   t.StartDate.String(),
	}
	if t.EndDate != nil {
		s := t.EndDate.String()
		req.EndDate = &s
	}
	return c.do(ctx, http.MethodPost, "/recurring", nil, req, nil)
}

// GenerateRecurring asks the backend to materialise instances of one template.
// A success=false reply comes back as a KindApplication error carrying the message.
func (c *Client) GenerateRecurring(ctx context.Context, id int64) (core.GenerationResult, error) {
	var out core.GenerationResult
	path := "/recurring/" + strconv.FormatInt(id, 10) + "/generate"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return core.GenerationResult{}, err
	}
	return out, nil
}

// GenerateAll triggers generation for every template.
func (c *Client) GenerateAll(ctx context.Context) (core.GenerationResult, error) {
	var out core.GenerationResult
	if err := c.do(ctx, http.MethodPost, "/recurring/generate-all", nil, nil, &out); err != nil {
		return core.GenerationResult{}, err
	}
	return out, nil
}
