package api

import (
	"context"
	"net/http"
	"net/url"

	"finweb/internal/core"
)

type createExpenseRequest struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	CategoryID  int64   `json:"categoryId"`
	Description string  `json:"description"`
}

func (c *Client) ListExpenses(ctx context.Context, month core.Month) ([]core.Expense, error) {
	var out []core.Expense
	q := url.Values{"month": {month.String()}}
	if err := c.do(ctx, http.MethodGet, "/expenses", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, e core.Expense) error {
	req := createExpenseRequest{
		Date:        e.Date.String(),
		Amount:      e.Amount.InexactFloat64(),
		CategoryID:  e.CategoryID,
		Description: e.Description,
	}
	return c.do(ctx, http.MethodPost, "/expense", nil, req, nil)
}
