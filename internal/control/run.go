package control

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openrpa/botkit/internal/consumer"
	"github.com/openrpa/botkit/internal/core/config"
	"github.com/openrpa/botkit/internal/core/guard"
	"github.com/openrpa/botkit/internal/core/runctx"
	"github.com/openrpa/botkit/internal/infra/mail"
	redisqueue "github.com/openrpa/botkit/internal/infra/queue/redis"
	"github.com/openrpa/botkit/internal/infra/render"
	"github.com/openrpa/botkit/internal/infra/storage/postgres"
	"github.com/openrpa/botkit/internal/metrics"
	"github.com/openrpa/botkit/internal/producer"
	"github.com/openrpa/botkit/internal/reporter"
	"github.com/openrpa/botkit/internal/scratch"
)

// Role names accepted by Run.
const (
	RoleProducer = "producer"
	RoleConsumer = "consumer"
	RoleReporter = "reporter"
)

// Run executes one run of the named role.
func Run(ctx context.Context, role string, cfg *config.AppConfig) error {
	start := time.Now()
	defer func() {
		metrics.RunDuration.WithLabelValues(role).Observe(time.Since(start).Seconds())
	}()

	switch role {
	case RoleProducer:
		return runProducer(ctx, cfg)
	case RoleConsumer:
		return runConsumer(ctx, cfg)
	case RoleReporter:
		return runReporter(ctx, cfg)
	default:
		return fmt.Errorf("unknown role %q", role)
	}
}

// redisResource acquires the shared queue connection.
func redisResource(cfg redisqueue.Config, out **redisqueue.Client) runctx.Resource {
	return runctx.Funcs{
		ResourceName: "redis",
		AcquireFunc: func(ctx context.Context) error {
			c, err := redisqueue.NewClient(cfg)
			if err != nil {
				return err
			}
			*out = c
			return nil
		},
		ReleaseFunc: func() error { return (*out).Close() },
	}
}

// databaseResource acquires the Postgres connection and applies pending
// migrations.
func databaseResource(cfg postgres.Config, out **postgres.DB) runctx.Resource {
	return runctx.Funcs{
		ResourceName: "database",
		AcquireFunc: func(ctx context.Context) error {
			db, err := postgres.NewDB(cfg)
			if err != nil {
				return err
			}
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return err
			}
			*out = db
			return nil
		},
		ReleaseFunc: func() error { return (*out).Close() },
	}
}

// scratchResource creates the run's scratch directory and prunes stale ones.
func scratchResource(cfg config.ScratchConfig, out **scratch.Manager) runctx.Resource {
	return runctx.Funcs{
		ResourceName: "scratch",
		AcquireFunc: func(ctx context.Context) error {
			m := scratch.NewManager(cfg.Dir)
			if err := m.Create(); err != nil {
				return err
			}
			if err := m.Prune(cfg.Retention); err != nil {
				_ = m.Remove()
				return err
			}
			*out = m
			return nil
		},
		ReleaseFunc: func() error { return (*out).Remove() },
	}
}

// rendererResource verifies the report template exists before the run
// starts, so a broken template surfaces at acquisition, not mid-report.
func rendererResource(cfg config.ReporterConfig, out **render.Renderer) runctx.Resource {
	return runctx.Funcs{
		ResourceName: "renderer",
		AcquireFunc: func(ctx context.Context) error {
			path := filepath.Join(cfg.TemplateDir, cfg.TemplateFile)
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("report template not readable: %w", err)
			}
			*out = render.NewRenderer(cfg.TemplateDir)
			return nil
		},
	}
}

// metricsResource runs the metrics endpoint for the duration of the run.
// A port of 0 disables it.
func metricsResource(port int) runctx.Resource {
	var srv *MetricsServer
	return runctx.Funcs{
		ResourceName: "metrics",
		AcquireFunc: func(ctx context.Context) error {
			if port == 0 {
				return nil
			}
			srv = NewMetricsServer(port)
			srv.Start()
			return nil
		},
		ReleaseFunc: func() error {
			if srv == nil {
				return nil
			}
			return srv.Stop()
		},
	}
}

func runProducer(ctx context.Context, cfg *config.AppConfig) error {
	var (
		rcli *redisqueue.Client
		db   *postgres.DB
	)

	resources := []runctx.Resource{
		metricsResource(cfg.Server.Port),
		redisResource(cfg.Redis, &rcli),
	}
	if cfg.Producer.FromDatabase {
		resources = append(resources, databaseResource(cfg.Database, &db))
	}

	rc := runctx.New(resources...)
	return rc.Run(ctx, func(ctx context.Context) error {
		var prod *producer.Producer
		if cfg.Producer.FromDatabase {
			prod = producer.NewFromClients(cfg.Producer, postgres.NewClientRepo(db))
		} else {
			// Business task stub: nothing to emit until the process
			// fills it in.
			prod = producer.New(cfg.Producer, func(context.Context) ([]map[string]any, error) {
				return nil, nil
			})
		}

		driver := &ProducerDriver{
			Producer: prod,
			Outputs:  rcli.Stream(cfg.Streams.Items),
		}
		return guard.Run(func() error { return driver.Run(ctx) })()
	})
}

func runConsumer(ctx context.Context, cfg *config.AppConfig) error {
	var (
		rcli *redisqueue.Client
		db   *postgres.DB
		scr  *scratch.Manager
	)

	resources := []runctx.Resource{
		metricsResource(cfg.Server.Port),
		scratchResource(cfg.Scratch, &scr),
		redisResource(cfg.Redis, &rcli),
	}
	if cfg.Consumer.TrackBilling {
		resources = append(resources, databaseResource(cfg.Database, &db))
	}

	rc := runctx.New(resources...)
	return rc.Run(ctx, func(ctx context.Context) error {
		var billing consumer.BillingCounter
		if cfg.Consumer.TrackBilling {
			billing = postgres.NewBillingRepo(db)
		}

		cons := consumer.New(cfg.Consumer, nil, billing)
		driver := &ConsumerDriver{
			Items:   rcli.Stream(cfg.Streams.Items),
			Reports: rcli.Stream(cfg.Streams.Reports),
			Process: cons.Process,
			Scratch: scr,
		}
		return driver.Run(ctx)
	})
}

func runReporter(ctx context.Context, cfg *config.AppConfig) error {
	var (
		rcli     *redisqueue.Client
		renderer *render.Renderer
	)

	resources := []runctx.Resource{
		metricsResource(cfg.Server.Port),
		redisResource(cfg.Redis, &rcli),
		rendererResource(cfg.Reporter, &renderer),
	}

	rc := runctx.New(resources...)
	return rc.Run(ctx, func(ctx context.Context) error {
		rep := reporter.New(cfg.Reporter, renderer, mail.NewMailer(cfg.Mail), cfg.TestMode)
		driver := &ReporterDriver{
			Reports:  rcli.Stream(cfg.Streams.Reports),
			Reporter: rep,
		}
		return guard.Run(func() error { return driver.Run(ctx) })()
	})
}
