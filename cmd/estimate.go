package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/guimove/placefit/internal/migration"
	"github.com/guimove/placefit/internal/model"
	"github.com/guimove/placefit/internal/orchestrator"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Rank candidate placements per workload by cost",
	Long: `Costs every candidate placement of every workload for one billing period
and ranks them cheapest first.

Workloads come from a JSON file (see 'placefit collect') or are collected live
from Prometheus. Workloads without their own candidates are costed against the
placements given with --candidates.`,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.String("input", "", "workloads JSON file (default: collect from Prometheus)")
	f.String("candidates", "", "JSON file with a list of placements to cost for every workload")
	f.Duration("window", 0, "collection window when collecting live")
	f.String("output", "table", "output format: table, json, markdown")
	f.Int("top", 5, "placements shown per workload")
	f.Int("parallelism", 0, "concurrent cost evaluations")

	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	applyOutputFlags(cmd)
	if w, _ := cmd.Flags().GetDuration("window"); cmd.Flags().Changed("window") {
		cfg.Collection.Window = w
	}
	if n, _ := cmd.Flags().GetInt("parallelism"); cmd.Flags().Changed("parallelism") {
		cfg.Estimate.Parallelism = n
	}

	m, _, err := loadModel()
	if err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	collector, cleanup, err := resolveCollector(ctx, inputPath)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	advisor := orchestrator.New(collector, m, migration.NewEngine(m), cfg, logger)
	advisor.Writer = cmd.OutOrStdout()

	if path, _ := cmd.Flags().GetString("candidates"); path != "" {
		candidates, err := readCandidates(path)
		if err != nil {
			return err
		}
		advisor.DefaultCandidates = candidates
	}

	_, err = advisor.Recommend(ctx)
	return err
}

func readCandidates(path string) ([]model.Placement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates file: %w", err)
	}
	var candidates []model.Placement
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parsing candidates file: %w", err)
	}
	return candidates, nil
}

// applyOutputFlags overrides the output config with explicitly set flags.
func applyOutputFlags(cmd *cobra.Command) {
	if f, _ := cmd.Flags().GetString("output"); cmd.Flags().Changed("output") {
		cfg.Output.Format = f
	}
	if n, _ := cmd.Flags().GetInt("top"); cmd.Flags().Changed("top") {
		cfg.Output.TopN = n
	}
}
