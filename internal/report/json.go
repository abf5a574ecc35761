package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/guimove/placefit/internal/model"
)

// JSONReporter outputs results as JSON.
type JSONReporter struct {
	w io.Writer
}

type estimatesOutput struct {
	Meta      ReportMeta       `json:"meta"`
	Estimates []model.Estimate `json:"estimates"`
}

type decisionsOutput struct {
	Meta      ReportMeta             `json:"meta"`
	Summary   decisionSummary        `json:"summary"`
	Decisions []model.DecisionRecord `json:"decisions"`
}

func (r *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// ReportEstimates writes every estimate; TopN applies to human-readable output only.
func (r *JSONReporter) ReportEstimates(ctx context.Context, ests []model.Estimate, meta ReportMeta) error {
	if ests == nil {
		ests = []model.Estimate{}
	}
	return r.encode(estimatesOutput{Meta: meta, Estimates: ests})
}

func (r *JSONReporter) ReportDecisions(ctx context.Context, recs []model.DecisionRecord, meta ReportMeta) error {
	if recs == nil {
		recs = []model.DecisionRecord{}
	}
	return r.encode(decisionsOutput{Meta: meta, Summary: summarize(recs), Decisions: recs})
}
