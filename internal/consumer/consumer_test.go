package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openrpa/botkit/internal/core/config"
	"github.com/openrpa/botkit/internal/core/errs"
	"github.com/openrpa/botkit/internal/item"
)

type fakeBilling struct {
	clients []string
	err     error
}

func (f *fakeBilling) Increment(_ context.Context, clientID string, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.clients = append(f.clients, clientID)
	return nil
}

func workItem() *item.WorkItem {
	return &item.WorkItem{ID: "wi-1", Payload: map[string]any{"client_id": "42"}}
}

func TestProcessCountsBilling(t *testing.T) {
	billing := &fakeBilling{}
	c := New(config.ConsumerConfig{TrackBilling: true}, nil, billing)

	if err := c.Process(context.Background(), workItem()); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(billing.clients) != 1 || billing.clients[0] != "42" {
		t.Errorf("expected one increment for client 42, got %v", billing.clients)
	}
}

func TestProcessSkipsBillingWhenDisabled(t *testing.T) {
	billing := &fakeBilling{}
	c := New(config.ConsumerConfig{}, nil, billing)

	if err := c.Process(context.Background(), workItem()); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(billing.clients) != 0 {
		t.Error("billing must not be touched when tracking is off")
	}
}

func TestProcessBillingFailureIsRetryable(t *testing.T) {
	billing := &fakeBilling{err: errors.New("db down")}
	c := New(config.ConsumerConfig{TrackBilling: true}, nil, billing)

	err := c.Process(context.Background(), workItem())
	var ae *errs.AutomationError
	if !errors.As(err, &ae) || ae.Kind != errs.Application {
		t.Fatalf("expected an application error, got %v", err)
	}
}

func TestProcessFailurePropagates(t *testing.T) {
	billing := &fakeBilling{}
	bus := errs.NewBusinessCode("MISSING_FIELD", "field absent")
	c := New(config.ConsumerConfig{TrackBilling: true},
		func(context.Context, *item.WorkItem) error { return bus },
		billing)

	if err := c.Process(context.Background(), workItem()); err != bus {
		t.Fatalf("expected the business error unchanged, got %v", err)
	}
	if len(billing.clients) != 0 {
		t.Error("failed items must not be billed")
	}
}
