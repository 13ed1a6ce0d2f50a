package core

import "github.com/shopspring/decimal"

// LoadState is the dashboard list state for the selected month.
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
	StateError
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// DashboardState is the per-month view model of the dashboard.
type DashboardState struct {
	Month    Month
	State    LoadState
	Expenses []Expense
	Message  string
}

func Loading(m Month) DashboardState { return DashboardState{Month: m, State: StateLoading} }

func Ready(m Month, expenses []Expense) DashboardState {
	return DashboardState{Month: m, State: StateReady, Expenses: expenses}
}

func Failed(m Month, msg string) DashboardState {
	return DashboardState{Month: m, State: StateError, Message: msg}
}

// Total is recomputed from the list on every call.
func (d DashboardState) Total() decimal.Decimal { return Sum(d.Expenses) }

func (d DashboardState) Count() int { return len(d.Expenses) }

// Largest returns the expense with the highest amount, if any.
func (d DashboardState) Largest() (Expense, bool) {
	if len(d.Expenses) == 0 {
		return Expense{}, false
	}
	best := d.Expenses[0]
	for _, e := range d.Expenses[1:] {
		if e.Amount.GreaterThan(best.Amount) {
			best = e
		}
	}
	return best, true
}
