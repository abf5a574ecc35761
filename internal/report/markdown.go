package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/guimove/placefit/internal/model"
)

// MarkdownReporter outputs results as GitHub-flavored markdown tables.
type MarkdownReporter struct {
	w io.Writer
}

func (r *MarkdownReporter) header(title string, meta ReportMeta) {
	fmt.Fprintf(r.w, "## %s\n\n", title)
	if meta.Source != "" {
		fmt.Fprintf(r.w, "- **Source:** %s\n", meta.Source)
	}
	if !meta.CollectedAt.IsZero() {
		fmt.Fprintf(r.w, "- **Collected:** %s\n", meta.CollectedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(r.w, "- **Workloads:** %d\n\n", meta.Workloads)
}

// cell escapes pipes so placement labels cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func (r *MarkdownReporter) ReportEstimates(ctx context.Context, ests []model.Estimate, meta ReportMeta) error {
	r.header("Placement Estimates", meta)

	if len(ests) == 0 {
		fmt.Fprintf(r.w, "_No estimates available._\n")
		return nil
	}

	fmt.Fprintf(r.w, "| Workload | Rank | Placement | Storage | Requests | Transfer | Total | vs best |\n")
	fmt.Fprintf(r.w, "|---|---:|---|---:|---:|---:|---:|---:|\n")
	for _, e := range topN(ests, meta.TopN) {
		if e.Error != "" {
			fmt.Fprintf(r.w, "| %s | - | %s | | | | | %s |\n",
				cell(e.WorkloadID), cell(e.Placement.Label()), cell(e.Error))
			continue
		}
		b := e.Breakdown
		fmt.Fprintf(r.w, "| %s | %d | %s | %s | %s | %s | **%s** | %s |\n",
			cell(e.WorkloadID),
			e.Rank,
			cell(e.Placement.Label()),
			money(b.Storage),
			sum(b.Put, b.Get).StringFixed(2),
			sum(b.Ingress, b.Egress).StringFixed(2),
			money(e.Cost),
			money(e.CostVsBest),
		)
	}
	fmt.Fprintf(r.w, "\n")
	return nil
}

func (r *MarkdownReporter) ReportDecisions(ctx context.Context, recs []model.DecisionRecord, meta ReportMeta) error {
	r.header("Migration Decisions", meta)

	if len(recs) == 0 {
		fmt.Fprintf(r.w, "_No decisions recorded._\n")
		return nil
	}

	fmt.Fprintf(r.w, "| Seq | Workload | Candidate | Current | Candidate cost | Migration | Regret | Outcome |\n")
	fmt.Fprintf(r.w, "|---:|---|---|---:|---:|---:|---:|---|\n")
	for _, rec := range recs {
		result := outcome(rec)
		if rec.Error != "" {
			result += ": " + rec.Error
		}
		fmt.Fprintf(r.w, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			rec.Seq,
			cell(rec.WorkloadID),
			cell(rec.Candidate.Label()),
			money(rec.CurrentCost),
			money(rec.CandidateCost),
			money(rec.MigrationCost),
			money(rec.Regret),
			cell(result),
		)
	}

	s := summarize(recs)
	fmt.Fprintf(r.w, "\n**%d** installed, **%d** migrated, **%d** kept, **%d** rejected. Spent on migrations: **$%s**\n",
		s.Installed, s.Migrated, s.Kept, s.Rejected, s.MigrationCost)
	return nil
}
