package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finweb/internal/amqp"
	"finweb/internal/core"
)

func TestDefaultRecurringTriggerConfig(t *testing.T) {
	cfg := DefaultRecurringTriggerConfig()
	if cfg.Interval != 24*time.Hour || !cfg.RunOnStart || cfg.CallTimeout != time.Minute {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestRecurringTriggerRunsAndPublishes(t *testing.T) {
	gw := &fakeGateway{genRes: core.GenerationResult{Success: true, Count: 2}}
	pub := &recordingPublisher{}
	cfg := DefaultRecurringTriggerConfig()
	cfg.Interval = 20 * time.Millisecond
	trig := NewRecurringTrigger(gw, pub, cfg, nil)

	ctx := context.Background()
	if err := trig.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := trig.Start(ctx); err == nil {
		t.Fatal("second start must fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for gw.calls() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 calls, got %d", gw.calls())
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := trig.Stop(stopCtx); err != nil {
		t.Fatal(err)
	}
	if trig.IsRunning() {
		t.Fatal("trigger should be stopped")
	}

	for _, typ := range pub.types() {
		if typ != amqp.EventRecurringGenerated {
			t.Fatalf("unexpected event %s", typ)
		}
	}
	if len(pub.types()) < 2 {
		t.Fatalf("expected events per run, got %d", len(pub.types()))
	}
}

func TestRecurringTriggerStopNotRunning(t *testing.T) {
	trig := NewRecurringTrigger(&fakeGateway{}, nil, DefaultRecurringTriggerConfig(), nil)
	if err := trig.Stop(context.Background()); err != nil {
		t.Fatalf("stop on idle trigger: %v", err)
	}
}

func TestRecurringTriggerStopTimeoutThenStopAgain(t *testing.T) {
	gw := &fakeGateway{genBlock: make(chan struct{})}
	trig := NewRecurringTrigger(gw, nil, DefaultRecurringTriggerConfig(), nil)

	if err := trig.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for gw.calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("initial run never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := trig.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("stop with blocked run: got %v, want deadline exceeded", err)
	}
	if trig.IsRunning() {
		t.Fatal("trigger still reported running after stop")
	}
	if err := trig.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	close(gw.genBlock)
	if err := trig.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	if err := trig.Stop(context.Background()); err != nil {
		t.Fatalf("stop after restart: %v", err)
	}
}
