package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	redisqueue "github.com/openrpa/botkit/internal/infra/queue/redis"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue depths for all item streams",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx := context.Background()
	rcli, err := redisqueue.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = rcli.Close()
	}()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STREAM\tPENDING\tFAILED")

	for _, name := range []string{cfg.Streams.Items, cfg.Streams.Reports} {
		stream := rcli.Stream(name)

		pending, err := stream.PendingCount(ctx)
		if err != nil {
			slog.Error("Failed to read stream", "stream", name, "error", err)
			os.Exit(1)
		}
		failed, err := stream.FailedCount(ctx)
		if err != nil {
			slog.Error("Failed to read stream", "stream", name, "error", err)
			os.Exit(1)
		}

		fmt.Fprintf(w, "%s\t%d\t%d\n", name, pending, failed)
	}

	_ = w.Flush()
}
