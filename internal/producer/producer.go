// Package producer generates the work items of one batch run.
package producer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openrpa/botkit/internal/core/config"
	"github.com/openrpa/botkit/internal/infra/storage/postgres"
)

// ClientSource lists the clients eligible for processing.
type ClientSource interface {
	ActiveClients(ctx context.Context) ([]postgres.Client, error)
}

// GenerateFunc produces the raw work-item payloads of one run. This is the
// business task of the process; the default implementation reads the client
// registry.
type GenerateFunc func(ctx context.Context) ([]map[string]any, error)

// Producer emits a bounded sequence of work-item payloads.
type Producer struct {
	cfg      config.ProducerConfig
	generate GenerateFunc
}

// New creates a producer with the given generator.
func New(cfg config.ProducerConfig, generate GenerateFunc) *Producer {
	return &Producer{cfg: cfg, generate: generate}
}

// NewFromClients creates a producer that emits one payload per active
// client.
func NewFromClients(cfg config.ProducerConfig, clients ClientSource) *Producer {
	return New(cfg, func(ctx context.Context) ([]map[string]any, error) {
		active, err := clients.ActiveClients(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load clients: %w", err)
		}

		payloads := make([]map[string]any, 0, len(active))
		for _, c := range active {
			payloads = append(payloads, map[string]any{
				"client_id":    c.ID,
				"client_name":  c.Name,
				"client_email": c.Email,
			})
		}
		return payloads, nil
	})
}

// Run generates this run's payloads, enforcing the configured maximum.
// Excess payloads are discarded with a warning.
func (p *Producer) Run(ctx context.Context) ([]map[string]any, error) {
	payloads, err := p.generate(ctx)
	if err != nil {
		return nil, err
	}

	if max := p.cfg.MaxWorkItems; max > 0 && len(payloads) > max {
		slog.Warn("max work items set - discarding excess payloads",
			"max", max,
			"generated", len(payloads),
		)
		payloads = payloads[:max]
	}
	return payloads, nil
}
