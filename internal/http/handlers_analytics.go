package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finweb/internal/core"
	"finweb/internal/log"
)

// MsgLoadAnalyticsFailed covers a failure of either analytics call.
const MsgLoadAnalyticsFailed = "Failed to load analytics"

type analyticsPage struct {
	User string
	Tab  string
	Nav  monthNav
}

type analyticsPanel struct {
	Tab    string
	Month  core.Month
	Slices []core.CategorySlice
	Trend  []core.MonthAmount
	Total  decimal.Decimal
	Error  string
}

func (s *Server) handleAnalyticsPage(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}
	now := s.now()
	month := ParseMonthParam(r.URL.Query(), now)
	s.render(w, r, http.StatusOK, "analytics_page", analyticsPage{
		User: sessionFrom(r).User.Email,
		Tab:  uuid.NewString(),
		Nav:  newMonthNav(month, core.CurrentMonth(now)),
	})
}

// handleAnalyticsPanel fetches the month breakdown and the year trend
// concurrently; stale responses are discarded with 204.
func (s *Server) handleAnalyticsPanel(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}

	month := ParseMonthParam(r.URL.Query(), s.now())
	tab := ParseTabParam(r.URL.Query())
	ctx, ticket := s.epochs.Begin(r.Context(), panelKey(r, "analytics", month, tab))
	defer ticket.Done()

	var (
		breakdown core.Breakdown
		trend     core.Trend
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		breakdown, err = s.gateway.Breakdown(gctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = s.gateway.Trend(gctx, month.Year)
		return err
	})
	err := g.Wait()

	if !ticket.Current() {
		s.appMetrics.staleDiscarded.Add(1)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := analyticsPanel{Tab: tab, Month: month}
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentAnalytics, "Failed to load analytics", err)
		data.Error = MsgLoadAnalyticsFailed
		s.render(w, r, http.StatusOK, "analytics_panel", data)
		return
	}

	data.Slices = core.ReshapeBreakdown(breakdown)
	data.Trend = core.ReshapeTrend(trend)
	for _, sl := range data.Slices {
		data.Total = data.Total.Add(sl.Value)
	}
	s.render(w, r, http.StatusOK, "analytics_panel", data)
}
