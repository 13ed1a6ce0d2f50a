package services

import (
	"context"
	"sync"

	"finweb/internal/amqp"
	"finweb/internal/core"
)

type fakeGateway struct {
	mu sync.Mutex

	expenses   []core.Expense
	templates  []core.RecurringTemplate
	categories []core.Category
	deletedIDs []int64
	generated  []int64
	allCalls   int

	err      error
	genRes   core.GenerationResult
	genBlock chan struct{}
}

func (f *fakeGateway) ListExpenses(context.Context, core.Month) ([]core.Expense, error) {
	return f.expenses, f.err
}

func (f *fakeGateway) CreateExpense(_ context.Context, e core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.expenses = append(f.expenses, e)
	return nil
}

func (f *fakeGateway) ListCategories(context.Context) ([]core.Category, error) {
	return f.categories, f.err
}

func (f *fakeGateway) CreateCategory(_ context.Context, c core.Category) error {
	if f.err != nil {
		return f.err
	}
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeGateway) UpdateCategory(_ context.Context, c core.Category) error {
	return f.err
}

func (f *fakeGateway) DeleteCategory(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeGateway) ListRecurring(context.Context) ([]core.RecurringTemplate, error) {
	return f.templates, f.err
}

func (f *fakeGateway) CreateRecurring(_ context.Context, t core.RecurringTemplate) error {
	if f.err != nil {
		return f.err
	}
	f.templates = append(f.templates, t)
	return nil
}

func (f *fakeGateway) GenerateRecurring(_ context.Context, id int64) (core.GenerationResult, error) {
	if f.genBlock != nil {
		<-f.genBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated = append(f.generated, id)
	return f.genRes, f.err
}

func (f *fakeGateway) GenerateAll(context.Context) (core.GenerationResult, error) {
	f.mu.Lock()
	f.allCalls++
	block := f.genBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.genRes, f.err
}

func (f *fakeGateway) Breakdown(context.Context, core.Month) (core.Breakdown, error) {
	return core.Breakdown{}, f.err
}

func (f *fakeGateway) Trend(context.Context, int) (core.Trend, error) {
	return core.Trend{}, f.err
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allCalls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
