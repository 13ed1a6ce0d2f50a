package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"finweb/internal/amqp"
	"finweb/internal/api"
	"finweb/internal/core"
	"finweb/internal/log"
)

// Fixed user-facing messages.
const (
	MsgExpenseAdded        = "Expense added successfully!"
	MsgRecurringCreated    = "Recurring expense created successfully!"
	MsgExpenseFailed       = "Failed to add expense"
	MsgGenerateFailed      = "Failed to generate instances"
	MsgGenerationBusy      = "Generation already in progress"
	MsgCategorySaveFailed  = "Failed to save category"
	MsgCategoryDeleteError = "Failed to delete category"
)

// ErrGenerationBusy is returned when the session already has a generation in flight.
var ErrGenerationBusy = errors.New(MsgGenerationBusy)

// ExpenseService performs backend mutations and publishes the matching
// domain events. Event publishing never fails a request.
type ExpenseService struct {
	gateway   Gateway
	publisher Publisher
	guard     *GenerationGuard
	logger    *log.Logger
}

func NewExpenseService(gateway Gateway, publisher Publisher, guard *GenerationGuard, logger *log.Logger) *ExpenseService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if guard == nil {
		guard = NewGenerationGuard()
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ExpenseService{
		gateway:   gateway,
		publisher: publisher,
		guard:     guard,
		logger:    logger,
	}
}

// Guard returns the generation guard shared with the handlers.
func (s *ExpenseService) Guard() *GenerationGuard { return s.guard }

// CreateExpense submits a validated form through the one-time or recurring
// branch and returns the success message to show.
func (s *ExpenseService) CreateExpense(ctx context.Context, user string, v core.ValidatedExpense) (string, error) {
	logger := s.logger.WithComponent(log.ComponentExpense)

	if v.Recurring {
		tpl := v.Template()
		if err := s.gateway.CreateRecurring(ctx, tpl); err != nil {
			return "", err
		}
		logger.InfoContext(ctx, "Recurring expense created",
			log.FieldCategoryID, tpl.CategoryID, "frequency", string(tpl.Frequency))
		s.publish(ctx, amqp.EventRecurringCreated, user, tpl)
		return MsgRecurringCreated, nil
	}

	e := v.Expense()
	if err := s.gateway.CreateExpense(ctx, e); err != nil {
		return "", err
	}
	logger.InfoContext(ctx, "Expense created",
		log.FieldCategoryID, e.CategoryID, "date", e.Date.String())
	s.publish(ctx, amqp.EventExpenseCreated, user, e)
	return MsgExpenseAdded, nil
}

// SaveCategory creates c when it has no id and updates it otherwise.
func (s *ExpenseService) SaveCategory(ctx context.Context, user string, c core.Category) error {
	event := amqp.EventCategoryCreated
	var err error
	if c.ID == 0 {
		err = s.gateway.CreateCategory(ctx, c)
	} else {
		event = amqp.EventCategoryUpdated
		err = s.gateway.UpdateCategory(ctx, c)
	}
	if err != nil {
		return err
	}
	s.publish(ctx, event, user, c)
	return nil
}

// DeleteCategory deletes a category; an error field in a 2xx reply is a failure.
func (s *ExpenseService) DeleteCategory(ctx context.Context, user string, id int64) error {
	if err := s.gateway.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EventCategoryDeleted, user, map[string]int64{"id": id})
	return nil
}

// GenerationOutcome is what the recurring panel shows after a generate call.
type GenerationOutcome struct {
	Success bool
	Count   int
	Message string
}

// Generate triggers generation for one template, or all when id is GenerateAllID.
// Only one generation per session runs at a time.
func (s *ExpenseService) Generate(ctx context.Context, sessionID, user, id string) (GenerationOutcome, error) {
	if !s.guard.Acquire(sessionID, id) {
		return GenerationOutcome{Message: MsgGenerationBusy}, ErrGenerationBusy
	}
	defer s.guard.Release(sessionID)

	logger := s.logger.WithComponent(log.ComponentRecurring)

	var (
		res core.GenerationResult
		err error
	)
	if id == GenerateAllID {
		res, err = s.gateway.GenerateAll(ctx)
	} else {
		n, perr := strconv.ParseInt(id, 10, 64)
		if perr != nil {
			return GenerationOutcome{Message: MsgGenerateFailed}, fmt.Errorf("invalid recurring id %q: %w", id, perr)
		}
		res, err = s.gateway.GenerateRecurring(ctx, n)
	}
	if err != nil {
		logger.WarnContext(ctx, "Generation failed", log.FieldRecurring, id, log.FieldError, err.Error())
		return GenerationOutcome{Message: api.UserMessage(err, MsgGenerateFailed)}, err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = MsgGenerateFailed
		}
		return GenerationOutcome{Message: msg}, nil
	}

	logger.InfoContext(ctx, "Generation completed", log.FieldRecurring, id, log.FieldCount, res.Count)
	s.publish(ctx, amqp.EventRecurringGenerated, user, map[string]any{"target": id, "count": res.Count})
	return GenerationOutcome{Success: true, Count: res.Count, Message: GenerationMessage(id, res.Count)}, nil
}

// GenerationMessage formats the success banner text.
func GenerationMessage(id string, count int) string {
	if id == GenerateAllID {
		return fmt.Sprintf("Generated %d total instance(s) across all recurring expenses", count)
	}
	return fmt.Sprintf("Generated %d instance(s) for recurring expense", count)
}

func (s *ExpenseService) publish(ctx context.Context, eventType, user string, payload any) {
	e, err := amqp.NewEvent(eventType, user, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, e)
	}
	if err != nil {
		s.logger.WithComponent(log.ComponentAMQP).ErrorContext(ctx, "Failed to publish event",
			log.FieldEvent, eventType, log.FieldError, err.Error())
	}
}
