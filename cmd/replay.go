package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/guimove/placefit/internal/migration"
	"github.com/guimove/placefit/internal/model"
	"github.com/guimove/placefit/internal/orchestrator"
	"github.com/guimove/placefit/internal/report"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a trace of placement proposals through the migration engine",
	Long: `Feeds every event of a decision trace through the online migration engine
and reports, per round, whether the workload stayed, migrated, or was
installed on its first placement.

Events may carry explicit cost claims or a workload profile, in which case
both costs are computed from the loaded price tables.`,
	RunE: runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.String("input", "", "decision trace JSON file (required)")
	f.String("output", "table", "output format: table, json, markdown")
	f.String("metrics-out", "", "write decision counters in Prometheus text format to this file ('-' for stdout)")
	f.Int64("object-count", 0, "objects moved by a migration when an event does not say")
	f.Float64("object-size", 0, "object size in bytes when an event does not say")

	_ = replayCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if f, _ := cmd.Flags().GetString("output"); cmd.Flags().Changed("output") {
		cfg.Output.Format = f
	}
	if n, _ := cmd.Flags().GetInt64("object-count"); cmd.Flags().Changed("object-count") {
		cfg.Migration.ObjectCount = n
	}
	if s, _ := cmd.Flags().GetFloat64("object-size"); cmd.Flags().Changed("object-size") {
		cfg.Migration.ObjectSize = s
	}

	inputPath, _ := cmd.Flags().GetString("input")
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading trace file: %w", err)
	}
	var trace model.Trace
	if err := json.Unmarshal(data, &trace); err != nil {
		return fmt.Errorf("parsing trace: %w", err)
	}

	m, _, err := loadModel()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	engine := migration.NewEngine(m,
		migration.WithLogger(logger),
		migration.WithMetrics(migration.NewMetrics(registry)))

	advisor := orchestrator.New(nil, m, engine, cfg, logger)
	recs, err := advisor.Replay(ctx, &trace)
	if err != nil {
		return err
	}

	reporter := report.NewReporter(cfg.Output.Format, cmd.OutOrStdout())
	meta := report.ReportMeta{
		Source:    inputPath,
		Workloads: engine.Len(),
	}
	if err := reporter.ReportDecisions(ctx, recs, meta); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	if out, _ := cmd.Flags().GetString("metrics-out"); out != "" {
		return writeMetrics(registry, out, cmd.OutOrStdout())
	}
	return nil
}

// writeMetrics dumps the registry in the Prometheus text exposition format.
func writeMetrics(g prometheus.Gatherer, path string, stdout io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating metrics file: %w", err)
		}
		defer f.Close()
		w = f
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
