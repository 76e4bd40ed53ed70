package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/openrpa/botkit/internal/control"
	"github.com/openrpa/botkit/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "botkit",
	Short: "Batch business-process bot",
	Long:  `Botkit runs the producer, consumer and reporter roles of a batch business-process automation over a durable work-item queue.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(roleCmd(control.RoleProducer, "Create work items for the consumer"))
	rootCmd.AddCommand(roleCmd(control.RoleConsumer, "Process pending work items"))
	rootCmd.AddCommand(roleCmd(control.RoleReporter, "Report captured failures to the employee"))
}

func roleCmd(role, short string) *cobra.Command {
	return &cobra.Command{
		Use:   role,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			runRole(role)
		},
	}
}

func runRole(role string) {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting run", "role", role, "test_mode", cfg.TestMode)
	if err := control.Run(ctx, role, cfg); err != nil {
		slog.Error("run failed", "role", role, "error", err)
		os.Exit(1)
	}
	slog.Info("run complete", "role", role)
}

// loadConfig loads .env and the YAML config and initializes logging.
// Failures here terminate the process.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(
		&tint.Options{
			Level:      slogLevel,
			TimeFormat: time.RFC3339,
		})

	return cfg
}
