package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guimove/placefit/internal/metrics"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect workload profiles from Prometheus",
	Long: `Queries object store request and transfer counters from Prometheus and
writes one workload profile per workload as JSON, ready for
'placefit estimate --input'.`,
	RunE: runCollect,
}

func init() {
	f := collectCmd.Flags()
	f.Duration("window", 0, "billing period to collect (default from config)")
	f.String("vendor", "aws", "vendor prefix of region labels")
	f.StringSlice("exclude", nil, "workloads to skip")
	f.String("output", "", "file to write (default: stdout)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if w, _ := cmd.Flags().GetDuration("window"); cmd.Flags().Changed("window") {
		cfg.Collection.Window = w
	}
	if ex, _ := cmd.Flags().GetStringSlice("exclude"); len(ex) > 0 {
		cfg.Collection.ExcludeWorkloads = append(cfg.Collection.ExcludeWorkloads, ex...)
	}
	vendor, _ := cmd.Flags().GetString("vendor")

	collector, cleanup, err := resolveCollector(ctx, "")
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := collector.Ping(ctx); err != nil {
		return err
	}
	logger.Info("collecting workloads",
		zap.String("backend", collector.BackendType()),
		zap.Duration("window", cfg.Collection.Window))

	set, err := collector.Collect(ctx, metrics.CollectOptions{
		End:               time.Now(),
		Window:            cfg.Collection.Window,
		Vendor:            vendor,
		ExcludeWorkloads:  cfg.Collection.ExcludeWorkloads,
		MinObjectSize:     cfg.Collection.MinObjectSize,
		DefaultObjectSize: cfg.Collection.DefaultObjectSize,
	})
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encoding workloads: %w", err)
	}
	logger.Info("collected workloads", zap.Int("workloads", len(set.Workloads)))
	return nil
}
