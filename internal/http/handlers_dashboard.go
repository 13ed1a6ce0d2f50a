package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finweb/internal/api"
	"finweb/internal/core"
	"finweb/internal/log"
)

// MsgLoadExpensesFailed is the fixed dashboard error; the raw body is only logged.
const MsgLoadExpensesFailed = "Failed to load expenses"

type monthNav struct {
	Month core.Month
	Prev  core.Month
	Next  core.Month
	Today core.Month
}

func newMonthNav(m core.Month, today core.Month) monthNav {
	return monthNav{Month: m, Prev: m.Prev(), Next: m.Next(), Today: today}
}

// panelKey scopes request epochs to one panel of one page load: session,
// panel, month and the tab id the page was rendered with.
func panelKey(r *http.Request, panel string, month core.Month, tab string) string {
	return strings.Join([]string{sessionFrom(r).ID, panel, month.String(), tab}, ":")
}

type dashboardPage struct {
	User          string
	Tab           string
	Nav           monthNav
	State         core.DashboardState
	Categories    []core.Category
	CategoryError string
	Frequencies   []core.Frequency
	DefaultDate   string
	SheetsEnabled bool
}

type expensesPanel struct {
	Tab        string
	State      core.DashboardState
	Names      map[int64]string
	Largest    core.Expense
	HasLargest bool
}

// handleDashboard renders the page shell in the Loading state; the expense
// list is fetched by the panel partial.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}

	now := s.now()
	month := ParseMonthParam(r.URL.Query(), now)
	data := dashboardPage{
		User:          sessionFrom(r).User.Email,
		Tab:           uuid.NewString(),
		Nav:           newMonthNav(month, core.CurrentMonth(now)),
		State:         core.Loading(month),
		Frequencies:   []core.Frequency{core.Monthly, core.Yearly},
		DefaultDate:   now.Format(core.DateLayout),
		SheetsEnabled: s.exporter != nil,
	}

	cats, err := s.gateway.ListCategories(r.Context())
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentCategory, "Failed to load categories for expense form", err)
		data.CategoryError = api.UserMessage(err, MsgLoadCategoriesFailed)
	}
	data.Categories = cats

	s.render(w, r, http.StatusOK, "dashboard_page", data)
}

// handleExpensesPanel loads one month of expenses. A response superseded by a
// newer request for the same panel of the same page is discarded with 204.
func (s *Server) handleExpensesPanel(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}

	month := ParseMonthParam(r.URL.Query(), s.now())
	tab := ParseTabParam(r.URL.Query())
	ctx, ticket := s.epochs.Begin(r.Context(), panelKey(r, "expenses", month, tab))
	defer ticket.Done()

	var (
		expenses []core.Expense
		cats     []core.Category
		catErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.gateway.ListExpenses(gctx, month)
		return err
	})
	g.Go(func() error {
		cats, catErr = s.gateway.ListCategories(gctx)
		return nil
	})
	err := g.Wait()

	if !ticket.Current() {
		s.appMetrics.staleDiscarded.Add(1)
		log.FromContext(r.Context()).DebugContext(r.Context(), "Discarding stale expenses response", log.FieldMonth, month.String())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := expensesPanel{Tab: tab}
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentDashboard, "Failed to load expenses", err)
		data.State = core.Failed(month, MsgLoadExpensesFailed)
		s.render(w, r, http.StatusOK, "expenses_panel", data)
		return
	}
	if catErr != nil {
		s.logBackendError(r.Context(), log.ComponentCategory, "Failed to load category names", catErr)
	}

	data.State = core.Ready(month, expenses)
	data.Names = core.CategoryNames(cats)
	data.Largest, data.HasLargest = data.State.Largest()
	s.render(w, r, http.StatusOK, "expenses_panel", data)
}
