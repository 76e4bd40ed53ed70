package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openrpa/botkit/internal/core/errs"
	"github.com/openrpa/botkit/internal/infra/queue"
	"github.com/openrpa/botkit/internal/item"
	"github.com/openrpa/botkit/internal/metrics"
)

// ItemFunc processes a single work item.
type ItemFunc func(ctx context.Context, wi *item.WorkItem) error

// RunItem applies the same classification contract as Run to a per-item
// unit of work.
func RunItem(fn ItemFunc) ItemFunc {
	return func(ctx context.Context, wi *item.WorkItem) error {
		return Run(func() error { return fn(ctx, wi) })()
	}
}

// AttachReporter intercepts reportable business failures raised by fn.
//
// A business error carrying a code is captured as a reporter item on the
// outputs queue and the call returns nil: the issue is recorded for the
// reporter, the original work item counts as handled. A business error
// without a code is not interceptable and propagates unchanged, as does
// every other failure.
//
// Compose with the execution guard as RunItem(AttachReporter(outputs, fn)):
// the attachment must see failures before the guard normalizes unexpected
// ones, so only genuine business errors are ever intercepted.
func AttachReporter(outputs queue.Enqueuer, fn ItemFunc) ItemFunc {
	return func(ctx context.Context, wi *item.WorkItem) error {
		err := fn(ctx, wi)
		if err == nil {
			return nil
		}

		var ae *errs.AutomationError
		if !errors.As(err, &ae) || ae.Kind != errs.Business || ae.Code == "" {
			return err
		}

		ri := item.NewReporterItem(wi.ID, ae.Code, wi.Payload)
		if _, qerr := outputs.Enqueue(ctx, ri.Payload()); qerr != nil {
			return fmt.Errorf("failed to enqueue reporter item for %s: %w", wi.ID, qerr)
		}

		metrics.ReporterItems.Inc()
		slog.Info("captured reportable failure",
			"item_id", wi.ID,
			"code", ae.Code,
		)
		return nil
	}
}
