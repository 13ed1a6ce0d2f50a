package http

import (
	"context"
	"sync"

	"finweb/internal/core"
)

// stubGateway is an in-memory backend recording every call.
type stubGateway struct {
	mu    sync.Mutex
	calls map[string]int

	expenses   []core.Expense
	categories []core.Category
	templates  []core.RecurringTemplate
	breakdown  core.Breakdown
	trend      core.Trend
	genResult  core.GenerationResult

	listErr      error
	createErr    error
	categoryErr  error
	deleteErr    error
	recurringErr error
	generateErr  error
	analyticsErr error

	// listHook runs before ListExpenses returns, letting tests hold a request in flight.
	listHook func(ctx context.Context, month core.Month) error
	genBlock chan struct{}

	created          []core.Expense
	createdTemplates []core.RecurringTemplate
	savedCategories  []core.Category
	deleted          []int64
}

func (g *stubGateway) record(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[name]++
}

func (g *stubGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *stubGateway) ListExpenses(ctx context.Context, month core.Month) ([]core.Expense, error) {
	g.record("ListExpenses")
	if g.listHook != nil {
		if err := g.listHook(ctx, month); err != nil {
			return nil, err
		}
	}
	if g.listErr != nil {
		return nil, g.listErr
	}
	var out []core.Expense
	for _, e := range g.expenses {
		if month.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (g *stubGateway) CreateExpense(_ context.Context, e core.Expense) error {
	g.record("CreateExpense")
	if g.createErr != nil {
		return g.createErr
	}
	g.mu.Lock()
	g.created = append(g.created, e)
	g.mu.Unlock()
	return nil
}

func (g *stubGateway) ListCategories(context.Context) ([]core.Category, error) {
	g.record("ListCategories")
	if g.categoryErr != nil {
		return nil, g.categoryErr
	}
	return g.categories, nil
}

func (g *stubGateway) CreateCategory(_ context.Context, c core.Category) error {
	g.record("CreateCategory")
	if g.categoryErr != nil {
		return g.categoryErr
	}
	g.mu.Lock()
	g.savedCategories = append(g.savedCategories, c)
	g.mu.Unlock()
	return nil
}

func (g *stubGateway) UpdateCategory(_ context.Context, c core.Category) error {
	g.record("UpdateCategory")
	if g.categoryErr != nil {
		return g.categoryErr
	}
	g.mu.Lock()
	g.savedCategories = append(g.savedCategories, c)
	g.mu.Unlock()
	return nil
}

func (g *stubGateway) DeleteCategory(_ context.Context, id int64) error {
	g.record("DeleteCategory")
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.mu.Lock()
	g.deleted = append(g.deleted, id)
	g.mu.Unlock()
	return nil
}

func (g *stubGateway) ListRecurring(context.Context) ([]core.RecurringTemplate, error) {
	g.record("ListRecurring")
	if g.recurringErr != nil {
		return nil, g.recurringErr
	}
	return g.templates, nil
}

func (g *stubGateway) CreateRecurring(_ context.Context, t core.RecurringTemplate) error {
	g.record("CreateRecurring")
	if g.createErr != nil {
		return g.createErr
	}
	g.mu.Lock()
	g.createdTemplates = append(g.createdTemplates, t)
	g.mu.Unlock()
	return nil
}

func (g *stubGateway) GenerateRecurring(context.Context, int64) (core.GenerationResult, error) {
	g.record("GenerateRecurring")
	if g.genBlock != nil {
		<-g.genBlock
	}
	return g.genResult, g.generateErr
}

func (g *stubGateway) GenerateAll(context.Context) (core.GenerationResult, error) {
	g.record("GenerateAll")
	if g.genBlock != nil {
		<-g.genBlock
	}
	return g.genResult, g.generateErr
}

func (g *stubGateway) Breakdown(context.Context, core.Month) (core.Breakdown, error) {
	g.record("Breakdown")
	return g.breakdown, g.analyticsErr
}

func (g *stubGateway) Trend(context.Context, int) (core.Trend, error) {
	g.record("Trend")
	return g.trend, g.analyticsErr
}

type stubExporter struct {
	month core.Month
	err   error
}

func (s *stubExporter) Export(_ context.Context, month core.Month, expenses []core.Expense, _ map[int64]string) (int, error) {
	s.month = month
	if s.err != nil {
		return 0, s.err
	}
	return len(expenses), nil
}
