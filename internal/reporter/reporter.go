// Package reporter aggregates the reportable failures of a batch run into
// one notification for the responsible employee.
package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openrpa/botkit/internal/core/config"
	"github.com/openrpa/botkit/internal/infra/mail"
	"github.com/openrpa/botkit/internal/item"
	"github.com/openrpa/botkit/internal/metrics"
)

// Renderer renders the report template.
type Renderer interface {
	Render(name string, vars map[string]any) (string, error)
}

// Sender delivers the report notification.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Reporter builds and sends the failure summary of one run.
type Reporter struct {
	cfg      config.ReporterConfig
	renderer Renderer
	sender   Sender
	testMode bool
}

// New creates a reporter.
func New(cfg config.ReporterConfig, renderer Renderer, sender Sender, testMode bool) *Reporter {
	return &Reporter{cfg: cfg, renderer: renderer, sender: sender, testMode: testMode}
}

// Run renders one summary for all reporter items and sends it, or saves it
// as a draft in test mode. Rendering and transport failures propagate: the
// report is the only human-facing artifact and must never fail silently.
func (r *Reporter) Run(ctx context.Context, items []*item.ReporterItem) error {
	if len(items) == 0 {
		slog.Info("no failures to report")
		return nil
	}

	content, err := r.generate(items)
	if err != nil {
		return err
	}

	msg := mail.Message{
		To:      r.cfg.Recipients,
		Subject: fmt.Sprintf("Process Report %s", time.Now().Format("02.01.2006")),
		Body:    content,
		HTML:    true,
		Draft:   r.testMode,
	}
	if err := r.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	mode := "sent"
	if msg.Draft {
		mode = "draft"
	}
	metrics.ReportsSent.WithLabelValues(mode).Inc()
	slog.Info("report delivered", "mode", mode, "failures", len(items))
	return nil
}

// generate renders the report body, mapping each item's code to its
// human-readable message and correlating it to the originating client.
func (r *Reporter) generate(items []*item.ReporterItem) (string, error) {
	infos := make(map[string]string, len(items))
	for _, it := range items {
		msg, ok := r.cfg.Codes[it.FailedItemCode]
		if !ok {
			slog.Warn("no message configured for failure code",
				"code", it.FailedItemCode,
				"item_id", it.FailedItemID,
			)
			msg = it.FailedItemCode
		}
		infos[correlationKey(it)] = msg
	}

	content, err := r.renderer.Render(r.cfg.TemplateFile, map[string]any{
		"Salutation": r.cfg.Salutation,
		"Infos":      infos,
		"Contact":    r.cfg.Contact,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}
	return content, nil
}

// correlationKey groups report lines by the originating client, falling
// back to the failed item's queue id when the payload has no client.
func correlationKey(it *item.ReporterItem) string {
	if id, ok := it.FailedItemPayload["client_id"].(string); ok && id != "" {
		return id
	}
	return it.FailedItemID
}
