package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"finweb/internal/amqp"
	"finweb/internal/log"
)

// RecurringTriggerConfig holds configuration for the recurring trigger
type RecurringTriggerConfig struct {
	// Interval between generate-all calls (default: 24h)
	Interval time.Duration

	// RunOnStart triggers once immediately when started (default: true)
	RunOnStart bool

	// CallTimeout bounds a single generate-all call (default: 1m)
	CallTimeout time.Duration
}

// DefaultRecurringTriggerConfig returns sensible defaults
func DefaultRecurringTriggerConfig() RecurringTriggerConfig {
	return RecurringTriggerConfig{
		Interval:    24 * time.Hour,
		RunOnStart:  true,
		CallTimeout: time.Minute,
	}
}

// RecurringTrigger periodically asks the backend to generate instances for
// every recurring template. Generation itself stays in the backend.
type RecurringTrigger struct {
	gateway   Gateway
	publisher Publisher
	config    RecurringTriggerConfig
	logger    *log.Logger

	mu      sync.Mutex
	running bool
	runs    int
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRecurringTrigger(gateway Gateway, publisher Publisher, config RecurringTriggerConfig, logger *log.Logger) *RecurringTrigger {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &RecurringTrigger{
		gateway:   gateway,
		publisher: publisher,
		config:    config,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the trigger loop. Returns an error if already running.
func (t *RecurringTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return errors.New("recurring trigger is already running")
	}
	t.running = true
	stop, done := make(chan struct{}), make(chan struct{})
	t.stopCh, t.doneCh = stop, done
	t.mu.Unlock()

	go t.runLoop(ctx, stop, done)

	t.logger.InfoContext(ctx, "Recurring trigger started", "interval", t.config.Interval.String())
	return nil
}

// Stop signals the loop to exit and waits for it until ctx expires. The
// trigger counts as stopped once signalled, so repeated calls are no-ops.
func (t *RecurringTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	stop, done := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stop)

	select {
	case <-done:
		t.logger.InfoContext(ctx, "Recurring trigger stopped gracefully")
		return nil
	case <-ctx.Done():
		t.logger.WarnContext(ctx, "Recurring trigger stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the trigger loop is running
func (t *RecurringTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Runs returns how many generate-all calls have been made.
func (t *RecurringTrigger) Runs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

func (t *RecurringTrigger) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	if t.config.RunOnStart {
		t.RunOnce(ctx)
	}

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single generate-all call and publishes the outcome.
func (t *RecurringTrigger) RunOnce(ctx context.Context) {
	t.mu.Lock()
	t.runs++
	t.mu.Unlock()

	callCtx := ctx
	if t.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.config.CallTimeout)
		defer cancel()
	}

	res, err := t.gateway.GenerateAll(callCtx)
	if err != nil {
		t.logger.ErrorContext(ctx, "Scheduled generation failed", log.FieldError, err.Error())
		return
	}

	t.logger.InfoContext(ctx, "Scheduled generation completed",
		log.FieldSuccess, res.Success, log.FieldCount, res.Count)

	e, err := amqp.NewEvent(amqp.EventRecurringGenerated, "", map[string]any{
		"target":    GenerateAllID,
		"count":     res.Count,
		"scheduled": true,
	})
	if err == nil {
		err = t.publisher.Publish(ctx, e)
	}
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to publish generation event", log.FieldError, err.Error())
	}
}
