// Package control drives the bot roles over the work-item queue: each run
// acquires its resources, pushes the role's entry point across the queue,
// and releases everything on the way out.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openrpa/botkit/internal/core/errs"
	"github.com/openrpa/botkit/internal/core/guard"
	"github.com/openrpa/botkit/internal/infra/queue"
	"github.com/openrpa/botkit/internal/item"
	"github.com/openrpa/botkit/internal/metrics"
	"github.com/openrpa/botkit/internal/producer"
	"github.com/openrpa/botkit/internal/reporter"
	"github.com/openrpa/botkit/internal/scratch"
)

// ProducerDriver enqueues one run's generated payloads.
type ProducerDriver struct {
	Producer *producer.Producer
	Outputs  queue.Enqueuer
}

// Run generates the payloads and creates one work item per payload.
func (d *ProducerDriver) Run(ctx context.Context) error {
	payloads, err := d.Producer.Run(ctx)
	if err != nil {
		return err
	}

	for _, payload := range payloads {
		id, err := d.Outputs.Enqueue(ctx, payload)
		if err != nil {
			return fmt.Errorf("failed to create work item: %w", err)
		}
		metrics.ItemsProduced.Inc()
		slog.Info("created work item", "item_id", id)
	}

	slog.Info("producer run complete", "items", len(payloads))
	return nil
}

// ConsumerDriver drains the item stream one work item at a time.
type ConsumerDriver struct {
	Items   queue.Queue
	Reports queue.Enqueuer
	Process guard.ItemFunc
	Scratch *scratch.Manager
}

// Run claims pending items until the stream is drained or the context is
// cancelled. Each item is fully resolved (done or failed) before the next
// one is claimed.
func (d *ConsumerDriver) Run(ctx context.Context) error {
	// Reportable business failures are captured inside the guard, so the
	// guard only ever sees genuine pass-through failures.
	process := guard.RunItem(guard.AttachReporter(d.Reports, d.Process))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := d.Items.DequeueNext(ctx)
		if err != nil {
			return fmt.Errorf("failed to claim next item: %w", err)
		}
		if msg == nil {
			return nil
		}

		if d.Scratch != nil {
			if err := d.Scratch.Clean(); err != nil {
				return err
			}
		}

		wi := &item.WorkItem{ID: msg.ID, Payload: msg.Payload}
		if perr := process(ctx, wi); perr != nil {
			kind, code, message := classify(perr)
			slog.Error("work item failed",
				"item_id", wi.ID,
				"kind", kind,
				"code", code,
				"message", message,
				"attempt", msg.Attempt,
			)
			metrics.FailuresTotal.WithLabelValues(string(kind)).Inc()
			metrics.ItemsConsumed.WithLabelValues("failed").Inc()

			if err := d.Items.MarkFailed(ctx, wi.ID, kind, code, message); err != nil {
				return fmt.Errorf("failed to mark item %s failed: %w", wi.ID, err)
			}
			continue
		}

		metrics.ItemsConsumed.WithLabelValues("done").Inc()
		if err := d.Items.MarkDone(ctx, wi.ID); err != nil {
			return fmt.Errorf("failed to mark item %s done: %w", wi.ID, err)
		}
	}
}

// classify maps a processing failure onto the queue's failure contract,
// bounding the message to the transport limit.
func classify(err error) (queue.FailKind, string, string) {
	var ae *errs.AutomationError
	if errors.As(err, &ae) {
		kind := queue.FailApplication
		if ae.Kind == errs.Business {
			kind = queue.FailBusiness
		}
		return kind, ae.Code, guard.Truncate(ae.Message, guard.MessageLimit)
	}
	return queue.FailUnexpected, "", guard.Truncate(err.Error(), guard.MessageLimit)
}

// ReporterDriver collects the run's reporter items and sends one summary.
type ReporterDriver struct {
	Reports  queue.Queue
	Reporter *reporter.Reporter
}

// Run drains the report stream, aggregates all items into one report, and
// resolves the items according to the report's fate: done when it went out,
// failed-retryable when sending broke, so the next run picks them up again.
func (d *ReporterDriver) Run(ctx context.Context) error {
	var items []*item.ReporterItem
	var ids []string

	for {
		msg, err := d.Reports.DequeueNext(ctx)
		if err != nil {
			return fmt.Errorf("failed to claim reporter item: %w", err)
		}
		if msg == nil {
			break
		}

		ri, err := item.ReporterItemFromPayload(msg.Payload)
		if err != nil {
			slog.Error("dropping malformed reporter item", "item_id", msg.ID, "error", err)
			if ferr := d.Reports.MarkFailed(ctx, msg.ID, queue.FailBusiness, "", err.Error()); ferr != nil {
				return ferr
			}
			continue
		}

		items = append(items, ri)
		ids = append(ids, msg.ID)
	}

	if runErr := d.Reporter.Run(ctx, items); runErr != nil {
		for _, id := range ids {
			msg := guard.Truncate(runErr.Error(), guard.MessageLimit)
			if err := d.Reports.MarkFailed(ctx, id, queue.FailApplication, "", msg); err != nil {
				slog.Error("failed to release reporter item", "item_id", id, "error", err)
			}
		}
		return runErr
	}

	for _, id := range ids {
		if err := d.Reports.MarkDone(ctx, id); err != nil {
			return fmt.Errorf("failed to mark reporter item %s done: %w", id, err)
		}
	}
	return nil
}
