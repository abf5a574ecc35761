package report

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guimove/placefit/internal/model"
)

// Reporter formats and writes estimates and decisions to an output destination.
type Reporter interface {
	ReportEstimates(ctx context.Context, ests []model.Estimate, meta ReportMeta) error
	ReportDecisions(ctx context.Context, recs []model.DecisionRecord, meta ReportMeta) error
}

// ReportMeta contains contextual metadata for the report.
type ReportMeta struct {
	Source      string        `json:"source"`
	CollectedAt time.Time     `json:"collected_at,omitempty"`
	Window      time.Duration `json:"window,omitempty"`
	Workloads   int           `json:"workloads"`

	// Placements shown per workload in human-readable output; 0 shows all
	TopN int `json:"-"`
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "markdown":
		return &MarkdownReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}

// money renders a cost with two decimals, rounding half away from zero.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// sum adds costs without accumulating binary rounding error.
func sum(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

// outcome names what a decision did.
func outcome(rec model.DecisionRecord) string {
	switch {
	case rec.Error != "":
		return "rejected"
	case rec.Installed:
		return "installed"
	case rec.Migrated:
		return "migrated"
	default:
		return "kept"
	}
}

// decisionSummary aggregates a decision replay.
type decisionSummary struct {
	Installed     int    `json:"installed"`
	Migrated      int    `json:"migrated"`
	Kept          int    `json:"kept"`
	Rejected      int    `json:"rejected"`
	MigrationCost string `json:"migration_cost"`
}

func summarize(recs []model.DecisionRecord) decisionSummary {
	var s decisionSummary
	spent := decimal.Zero
	for _, rec := range recs {
		switch outcome(rec) {
		case "rejected":
			s.Rejected++
		case "installed":
			s.Installed++
		case "migrated":
			s.Migrated++
			spent = spent.Add(decimal.NewFromFloat(rec.MigrationCost))
		default:
			s.Kept++
		}
	}
	s.MigrationCost = spent.StringFixed(2)
	return s
}

// topN keeps the n cheapest estimates of each workload. Unranked (failed)
// estimates are always kept.
func topN(ests []model.Estimate, n int) []model.Estimate {
	if n <= 0 {
		return ests
	}
	out := make([]model.Estimate, 0, len(ests))
	for _, e := range ests {
		if e.Rank <= n {
			out = append(out, e)
		}
	}
	return out
}
