package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"finweb/internal/core"
)

func (c *Client) Breakdown(ctx context.Context, month core.Month) (core.Breakdown, error) {
	var out core.Breakdown
	q := url.Values{"month": {month.String()}}
	if err := c.do(ctx, http.MethodGet, "/analytics/breakdown", q, nil, &out); err != nil {
		return core.Breakdown{}, err
	}
	return out, nil
}

func (c *Client) Trend(ctx context.Context, year int) (core.Trend, error) {
	var totals core.AmountMap
	q := url.Values{"year": {strconv.Itoa(year)}}
	if err := c.do(ctx, http.MethodGet, "/analytics/trend", q, nil, &totals); err != nil {
		return core.Trend{}, err
	}
	return core.Trend{Year: year, Trend: totals}, nil
}
