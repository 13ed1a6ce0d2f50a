package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finweb/internal/amqp"
	"finweb/internal/api"
	"finweb/internal/core"
)

func TestCreateExpenseBranches(t *testing.T) {
	gw := &fakeGateway{}
	pub := &recordingPublisher{}
	svc := NewExpenseService(gw, pub, nil, nil)

	v, err := core.ExpenseForm{Date: "2024-05-01", Amount: "10", CategoryID: "1", Description: "x"}.Validate()
	if err != nil {
		t.Fatal(err)
	}
	msg, err := svc.CreateExpense(context.Background(), "a@b.c", v)
	if err != nil || msg != MsgExpenseAdded {
		t.Fatalf("one-time: %q %v", msg, err)
	}

	v.Recurring = true
	v.Frequency = core.Yearly
	msg, err = svc.CreateExpense(context.Background(), "a@b.c", v)
	if err != nil || msg != MsgRecurringCreated {
		t.Fatalf("recurring: %q %v", msg, err)
	}

	if len(gw.expenses) != 1 || len(gw.templates) != 1 {
		t.Fatalf("expected one of each, got %d/%d", len(gw.expenses), len(gw.templates))
	}
	got := pub.types()
	if len(got) != 2 || got[0] != amqp.EventExpenseCreated || got[1] != amqp.EventRecurringCreated {
		t.Fatalf("events = %v", got)
	}
}

func TestCreateExpenseFailureNoEvent(t *testing.T) {
	gw := &fakeGateway{err: &api.Error{Kind: api.KindHTTP, Status: 400, Body: "bad category"}}
	pub := &recordingPublisher{}
	svc := NewExpenseService(gw, pub, nil, nil)

	v, _ := core.ExpenseForm{Date: "2024-05-01", Amount: "10", CategoryID: "1", Description: "x"}.Validate()
	if _, err := svc.CreateExpense(context.Background(), "", v); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.types()) != 0 {
		t.Fatal("no event on failure")
	}
}

func TestGenerateMessages(t *testing.T) {
	gw := &fakeGateway{genRes: core.GenerationResult{Success: true, Count: 3}}
	svc := NewExpenseService(gw, nil, nil, nil)

	out, err := svc.Generate(context.Background(), "s1", "", "7")
	if err != nil || out.Message != "Generated 3 instance(s) for recurring expense" {
		t.Fatalf("one: %+v %v", out, err)
	}
	out, err = svc.Generate(context.Background(), "s1", "", GenerateAllID)
	if err != nil || out.Message != "Generated 3 total instance(s) across all recurring expenses" {
		t.Fatalf("all: %+v %v", out, err)
	}
	if svc.Guard().Busy("s1") != "" {
		t.Fatal("guard must be released")
	}
}

func TestGenerateFailureMessages(t *testing.T) {
	gw := &fakeGateway{err: &api.Error{Kind: api.KindApplication, Message: "Template inactive"}}
	svc := NewExpenseService(gw, nil, nil, nil)
	out, _ := svc.Generate(context.Background(), "s1", "", "1")
	if out.Success || out.Message != "Template inactive" {
		t.Fatalf("unexpected %+v", out)
	}

	gw.err = &api.Error{Kind: api.KindHTTP, Status: 500}
	out, _ = svc.Generate(context.Background(), "s1", "", "1")
	if out.Message != MsgGenerateFailed {
		t.Fatalf("expected default message, got %q", out.Message)
	}
}

func TestGenerateBusyPerSession(t *testing.T) {
	gw := &fakeGateway{genRes: core.GenerationResult{Success: true, Count: 1}, genBlock: make(chan struct{})}
	svc := NewExpenseService(gw, nil, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Generate(context.Background(), "s1", "", "1")
	}()

	deadline := time.Now().Add(time.Second)
	for svc.Guard().Busy("s1") == "" {
		if time.Now().After(deadline) {
			t.Fatal("first generation never became busy")
		}
		time.Sleep(time.Millisecond)
	}

	out, err := svc.Generate(context.Background(), "s1", "", GenerateAllID)
	if !errors.Is(err, ErrGenerationBusy) || out.Message != MsgGenerationBusy {
		t.Fatalf("expected busy refusal, got %+v %v", out, err)
	}
	if !svc.Guard().Acquire("s2", "5") {
		t.Fatal("other sessions are independent")
	}
	svc.Guard().Release("s2")

	close(gw.genBlock)
	<-done
	if svc.Guard().Busy("s1") != "" {
		t.Fatal("guard must be released after completion")
	}
}

func TestDeleteCategoryApplicationError(t *testing.T) {
	gw := &fakeGateway{err: &api.Error{Kind: api.KindApplication, Message: "in use"}}
	pub := &recordingPublisher{}
	svc := NewExpenseService(gw, pub, nil, nil)
	err := svc.DeleteCategory(context.Background(), "", 3)
	if api.UserMessage(err, "") != "in use" {
		t.Fatalf("unexpected %v", err)
	}
	if len(pub.types()) != 0 {
		t.Fatal("no event on failure")
	}
}

func TestSaveCategoryCreatesOrUpdates(t *testing.T) {
	gw := &fakeGateway{}
	pub := &recordingPublisher{}
	svc := NewExpenseService(gw, pub, nil, nil)
	ctx := context.Background()

	if err := svc.SaveCategory(ctx, "", core.Category{Name: "Food"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveCategory(ctx, "", core.Category{ID: 4, Name: "Food"}); err != nil {
		t.Fatal(err)
	}
	got := pub.types()
	if len(got) != 2 || got[0] != amqp.EventCategoryCreated || got[1] != amqp.EventCategoryUpdated {
		t.Fatalf("events = %v", got)
	}
}
