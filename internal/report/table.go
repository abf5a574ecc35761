package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/guimove/placefit/internal/model"
)

// TableReporter outputs results as a formatted terminal table.
type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) header(title string, meta ReportMeta) {
	fmt.Fprintf(r.w, "\n")
	fmt.Fprintf(r.w, "PlaceFit %s\n", title)
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))
	if meta.Source != "" {
		fmt.Fprintf(r.w, "Source:      %s\n", meta.Source)
	}
	if !meta.CollectedAt.IsZero() {
		fmt.Fprintf(r.w, "Collected:   %s\n", meta.CollectedAt.Format("2006-01-02 15:04"))
	}
	if meta.Window > 0 {
		fmt.Fprintf(r.w, "Window:      %s\n", meta.Window)
	}
	fmt.Fprintf(r.w, "Workloads:   %d\n", meta.Workloads)
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("=", 60))
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func (r *TableReporter) ReportEstimates(ctx context.Context, ests []model.Estimate, meta ReportMeta) error {
	r.header("Placement Estimates", meta)

	if len(ests) == 0 {
		fmt.Fprintf(r.w, "No estimates available.\n")
		return nil
	}

	fmt.Fprintf(r.w, "%-20s %-4s %-32s %10s %10s %10s %12s %s\n",
		"Workload", "Rank", "Placement", "Storage", "Requests", "Transfer", "Total", "Notes")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 110))

	for _, e := range topN(ests, meta.TopN) {
		if e.Error != "" {
			fmt.Fprintf(r.w, "%-20s %-4s %-32s %10s %10s %10s %12s %s\n",
				truncate(e.WorkloadID, 20), "-", truncate(e.Placement.Label(), 32),
				"-", "-", "-", "-", e.Error)
			continue
		}

		b := e.Breakdown
		notes := "cheapest"
		if e.CostVsBest > 0 {
			notes = "+" + money(e.CostVsBest)
		}
		fmt.Fprintf(r.w, "%-20s #%-3d %-32s %10s %10s %10s %12s %s\n",
			truncate(e.WorkloadID, 20),
			e.Rank,
			truncate(e.Placement.Label(), 32),
			money(b.Storage),
			sum(b.Put, b.Get).StringFixed(2),
			sum(b.Ingress, b.Egress).StringFixed(2),
			money(e.Cost),
			notes,
		)
	}

	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("-", 110))
	return nil
}

func (r *TableReporter) ReportDecisions(ctx context.Context, recs []model.DecisionRecord, meta ReportMeta) error {
	r.header("Migration Decisions", meta)

	if len(recs) == 0 {
		fmt.Fprintf(r.w, "No decisions recorded.\n")
		return nil
	}

	fmt.Fprintf(r.w, "%5s %-20s %-28s %10s %10s %10s %10s %s\n",
		"Seq", "Workload", "Candidate", "Current", "Candidate", "Migration", "Regret", "Outcome")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 110))

	for _, rec := range recs {
		result := outcome(rec)
		if rec.Error != "" {
			result += ": " + rec.Error
		}
		fmt.Fprintf(r.w, "%5d %-20s %-28s %10s %10s %10s %10s %s\n",
			rec.Seq,
			truncate(rec.WorkloadID, 20),
			truncate(rec.Candidate.Label(), 28),
			money(rec.CurrentCost),
			money(rec.CandidateCost),
			money(rec.MigrationCost),
			money(rec.Regret),
			result,
		)
	}
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 110))

	s := summarize(recs)
	fmt.Fprintf(r.w, "\nInstalled: %d  Migrated: %d  Kept: %d  Rejected: %d\n",
		s.Installed, s.Migrated, s.Kept, s.Rejected)
	fmt.Fprintf(r.w, "Spent on migrations: $%s\n\n", s.MigrationCost)
	return nil
}
