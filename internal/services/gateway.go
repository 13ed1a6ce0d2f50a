package services

import (
	"context"

	"finweb/internal/amqp"
	"finweb/internal/core"
)

// Gateway is the backend surface the services and handlers depend on.
// *api.Client implements it.
type Gateway interface {
	ListExpenses(ctx context.Context, month core.Month) ([]core.Expense, error)
	CreateExpense(ctx context.Context, e core.Expense) error

	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) error
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListRecurring(ctx context.Context) ([]core.RecurringTemplate, error)
	CreateRecurring(ctx context.Context, t core.RecurringTemplate) error
	GenerateRecurring(ctx context.Context, id int64) (core.GenerationResult, error)
	GenerateAll(ctx context.Context) (core.GenerationResult, error)

	Breakdown(ctx context.Context, month core.Month) (core.Breakdown, error)
	Trend(ctx context.Context, year int) (core.Trend, error)
}

// Publisher sends domain events. *amqp.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, e amqp.Event) error
}

// NopPublisher drops every event; used when AMQP is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, amqp.Event) error { return nil }
