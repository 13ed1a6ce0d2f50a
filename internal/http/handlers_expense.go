package http

import (
	"net/http"

	"finweb/internal/api"
	"finweb/internal/core"
	"finweb/internal/log"
	"finweb/internal/services"
)

// handleCreateExpense validates the expense form and submits it through the
// one-time or recurring branch.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	p, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}

	form := core.ExpenseForm{
		Date:        p.Get("date"),
		Amount:      p.Get("amount"),
		CategoryID:  p.Get("categoryId"),
		Description: p.Get("description"),
		Recurring:   p.Bool("recurring"),
		Frequency:   p.Get("frequency"),
		EndDate:     p.Get("endDate"),
	}
	v, err := form.Validate()
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "status_message", statusMessage{Error: err.Error()})
		return
	}

	sess := sessionFrom(r)
	msg, err := s.expenses.CreateExpense(r.Context(), sess.User.Email, v)
	if err != nil {
		s.logBackendError(r.Context(), log.ComponentExpense, "Failed to create expense", err)
		s.render(w, r, http.StatusBadGateway, "status_message",
			statusMessage{Error: api.BodyMessage(err, services.MsgExpenseFailed)})
		return
	}

	s.appMetrics.expensesCreated.Add(1)
	s.write(w, r, NewHTMXResponse().
		TriggerExpenseCreated(v.Date.YearMonth().String()).
		TriggerFormReset().
		Render(s.templates, "status_message", statusMessage{Success: msg}))
}
