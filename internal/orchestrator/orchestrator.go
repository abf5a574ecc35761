package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/guimove/placefit/internal/config"
	"github.com/guimove/placefit/internal/cost"
	"github.com/guimove/placefit/internal/metrics"
	"github.com/guimove/placefit/internal/migration"
	"github.com/guimove/placefit/internal/model"
	"github.com/guimove/placefit/internal/report"
)

var ErrMissingClaims = errors.New("event carries neither cost claims nor a workload profile")

// Advisor coordinates costing, ranking and migration decisions.
type Advisor struct {
	Collector metrics.WorkloadCollector
	Model     *cost.Model
	Engine    *migration.Engine
	Config    config.Config
	Logger    *zap.Logger
	Writer    io.Writer

	// Placements costed for workloads that carry no candidates of their own
	DefaultCandidates []model.Placement
}

// New creates an advisor with the given dependencies. The collector may be
// nil when only Estimate and Replay are used.
func New(collector metrics.WorkloadCollector, m *cost.Model, engine *migration.Engine, cfg config.Config, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{
		Collector: collector,
		Model:     m,
		Engine:    engine,
		Config:    cfg,
		Logger:    logger,
		Writer:    os.Stdout,
	}
}

// Recommend runs the full pipeline: collect → estimate → rank → report.
func (a *Advisor) Recommend(ctx context.Context) ([]model.Estimate, error) {
	if a.Collector == nil {
		return nil, fmt.Errorf("no workload collector configured")
	}
	cfg := a.Config

	a.Logger.Info("collecting workloads", zap.String("backend", a.Collector.BackendType()))
	set, err := a.Collector.Collect(ctx, metrics.CollectOptions{
		End:               time.Now(),
		Window:            cfg.Collection.Window,
		ExcludeWorkloads:  cfg.Collection.ExcludeWorkloads,
		MinObjectSize:     cfg.Collection.MinObjectSize,
		DefaultObjectSize: cfg.Collection.DefaultObjectSize,
	})
	if err != nil {
		return nil, fmt.Errorf("collecting workloads: %w", err)
	}

	ests, err := a.Estimate(ctx, set)
	if err != nil {
		return nil, err
	}

	reporter := report.NewReporter(cfg.Output.Format, a.Writer)
	meta := report.ReportMeta{
		Source:      a.Collector.BackendType(),
		CollectedAt: set.CollectedAt,
		Window:      set.Window,
		Workloads:   len(set.Workloads),
		TopN:        cfg.Output.TopN,
	}
	if err := reporter.ReportEstimates(ctx, ests, meta); err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}
	return ests, nil
}

// Estimate costs every candidate placement of every workload in parallel and
// returns them grouped by workload, in input order, cheapest first. A
// candidate that cannot be costed is kept with its error and no rank.
func (a *Advisor) Estimate(ctx context.Context, set *model.WorkloadSet) ([]model.Estimate, error) {
	if set == nil || len(set.Workloads) == 0 {
		return nil, fmt.Errorf("no workloads to estimate")
	}

	type job struct {
		workload, candidate int
	}
	var jobs []job
	offsets := make([]int, len(set.Workloads)+1)
	candidates := make([][]model.Placement, len(set.Workloads))
	for wi, w := range set.Workloads {
		candidates[wi] = w.Candidates
		if len(candidates[wi]) == 0 {
			candidates[wi] = a.DefaultCandidates
		}
		if len(candidates[wi]) == 0 {
			a.Logger.Warn("workload has no candidate placements", zap.String("workload", w.ID))
		}
		for ci := range candidates[wi] {
			jobs = append(jobs, job{wi, ci})
		}
		offsets[wi+1] = len(jobs)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no candidate placements to estimate")
	}

	results := make([]model.Estimate, len(jobs))

	parallelism := a.Config.Estimate.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for i, j := range jobs {
		wg.Add(1)
		go func(idx int, j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			spec := set.Workloads[j.workload]
			est := model.Estimate{
				WorkloadID: spec.ID,
				Placement:  candidates[j.workload][j.candidate],
			}
			if err := ctx.Err(); err != nil {
				est.Error = err.Error()
				results[idx] = est
				return
			}

			b, err := a.Model.Breakdown(spec.Workload, est.Placement)
			if err != nil {
				est.Error = err.Error()
			} else {
				est.Breakdown = b
				est.Cost = b.Total()
			}
			results[idx] = est
		}(i, j)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]model.Estimate, 0, len(results))
	for wi := range set.Workloads {
		out = append(out, rank(results[offsets[wi]:offsets[wi+1]])...)
	}

	a.Logger.Debug("estimated placements",
		zap.Int("workloads", len(set.Workloads)),
		zap.Int("placements", len(jobs)))
	return out, nil
}

// rank orders one workload's estimates cheapest first, numbers them from 1
// and moves failed ones to the end.
func rank(ests []model.Estimate) []model.Estimate {
	ok := make([]model.Estimate, 0, len(ests))
	var failed []model.Estimate
	for _, e := range ests {
		if e.Error != "" {
			failed = append(failed, e)
			continue
		}
		ok = append(ok, e)
	}

	sort.SliceStable(ok, func(i, j int) bool {
		if ok[i].Cost != ok[j].Cost {
			return ok[i].Cost < ok[j].Cost
		}
		return ok[i].Placement.Label() < ok[j].Placement.Label()
	})
	for i := range ok {
		ok[i].Rank = i + 1
		ok[i].CostVsBest = ok[i].Cost - ok[0].Cost
	}
	return append(ok, failed...)
}

// Replay feeds a decision trace through the engine. Events of one workload
// are applied in trace order; distinct workloads run in parallel. The
// returned records follow trace order. A rejected event is recorded with its
// error and leaves the workload's state untouched.
func (a *Advisor) Replay(ctx context.Context, trace *model.Trace) ([]model.DecisionRecord, error) {
	if trace == nil || len(trace.Events) == 0 {
		return nil, fmt.Errorf("trace has no events")
	}

	byWorkload := make(map[string][]int)
	var order []string
	for i, ev := range trace.Events {
		if _, ok := byWorkload[ev.WorkloadID]; !ok {
			order = append(order, ev.WorkloadID)
		}
		byWorkload[ev.WorkloadID] = append(byWorkload[ev.WorkloadID], i)
	}

	records := make([]model.DecisionRecord, len(trace.Events))
	var wg sync.WaitGroup
	for _, id := range order {
		wg.Add(1)
		go func(seqs []int) {
			defer wg.Done()
			for _, seq := range seqs {
				if ctx.Err() != nil {
					return
				}
				records[seq] = a.replayOne(seq, trace.Events[seq])
			}
		}(byWorkload[id])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.Logger.Info("replayed decision trace",
		zap.Int("events", len(records)),
		zap.Int("workloads", len(order)))
	return records, nil
}

func (a *Advisor) replayOne(seq int, ev model.DecisionEvent) model.DecisionRecord {
	rec := model.DecisionRecord{
		Seq:        seq,
		WorkloadID: ev.WorkloadID,
		Candidate:  ev.Candidate,
	}

	current, candidate, err := a.claims(ev)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	rec.CurrentCost, rec.CandidateCost = current, candidate

	req := migration.Request{
		WorkloadID:    ev.WorkloadID,
		Candidate:     ev.Candidate,
		CurrentCost:   current,
		CandidateCost: candidate,
		ObjectCount:   ev.ObjectCount,
		ObjectSize:    ev.ObjectSize,
	}
	if req.ObjectCount == 0 {
		req.ObjectCount = a.Config.Migration.ObjectCount
	}
	if req.ObjectSize == 0 {
		req.ObjectSize = a.Config.Migration.ObjectSize
	}

	d, err := a.Engine.Apply(req)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	rec.Installed = d.Installed
	rec.Migrated = d.Migrated
	rec.MigrationCost = d.MigrationCost
	rec.Regret = d.Regret
	return rec
}

// claims returns the current and candidate costs of an event. Explicit claims
// win; missing ones are computed from the event's workload, with the current
// cost priced on the workload's current placement, or on the candidate when
// the workload has not been seen yet.
func (a *Advisor) claims(ev model.DecisionEvent) (float64, float64, error) {
	if ev.CurrentCost != nil && ev.CandidateCost != nil {
		return *ev.CurrentCost, *ev.CandidateCost, nil
	}
	if ev.Workload == nil {
		return 0, 0, ErrMissingClaims
	}

	var candidate float64
	if ev.CandidateCost != nil {
		candidate = *ev.CandidateCost
	} else {
		c, err := a.Model.Cost(*ev.Workload, ev.Candidate)
		if err != nil {
			return 0, 0, fmt.Errorf("costing candidate: %w", err)
		}
		candidate = c
	}

	if ev.CurrentCost != nil {
		return *ev.CurrentCost, candidate, nil
	}
	state, ok := a.Engine.State(ev.WorkloadID)
	if !ok {
		return candidate, candidate, nil
	}
	current, err := a.Model.Cost(*ev.Workload, state.Placement)
	if err != nil {
		return 0, 0, fmt.Errorf("costing current placement: %w", err)
	}
	return current, candidate, nil
}
