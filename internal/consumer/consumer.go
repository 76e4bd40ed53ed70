// Package consumer processes one work item per invocation.
package consumer

import (
	"context"
	"time"

	"github.com/openrpa/botkit/internal/core/config"
	"github.com/openrpa/botkit/internal/core/errs"
	"github.com/openrpa/botkit/internal/item"
)

// BillingCounter counts processed items against a client's billing period.
type BillingCounter interface {
	Increment(ctx context.Context, clientID string, now time.Time) error
}

// ProcessFunc is the business task applied to one work item. Failures must
// be raised through the errs taxonomy where they are classifiable; anything
// else is contained by the execution guard.
type ProcessFunc func(ctx context.Context, wi *item.WorkItem) error

// Consumer applies the business task to work items.
type Consumer struct {
	cfg     config.ConsumerConfig
	process ProcessFunc
	billing BillingCounter
}

// New creates a consumer. billing may be nil when billing tracking is off.
func New(cfg config.ConsumerConfig, process ProcessFunc, billing BillingCounter) *Consumer {
	if process == nil {
		// The business task is intentionally a stub in the template.
		process = func(context.Context, *item.WorkItem) error { return nil }
	}
	return &Consumer{cfg: cfg, process: process, billing: billing}
}

// Process handles a single work item and, on success, counts it against the
// client's billing period when tracking is enabled.
func (c *Consumer) Process(ctx context.Context, wi *item.WorkItem) error {
	if err := c.process(ctx, wi); err != nil {
		return err
	}

	if c.cfg.TrackBilling && c.billing != nil {
		clientID, _ := wi.Payload["client_id"].(string)
		if clientID != "" {
			if err := c.billing.Increment(ctx, clientID, time.Now()); err != nil {
				// The item itself was processed; a counting hiccup is
				// transient and the attempt can be retried.
				return errs.NewApplication("failed to track billing for client %s: %v", clientID, err)
			}
		}
	}
	return nil
}
