// Package migration decides, online and per workload, whether to move a
// workload's data to a proposed cheaper placement.
//
// Each workload accumulates regret: the savings forgone by staying on its
// current placement while cheaper candidates were proposed. A migration is
// taken only when the regret accumulated so far exceeds the one-time
// migration cost, and the candidate plus the migration cost is still cheaper
// than the currently claimed cost.
package migration

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/guimove/placefit/internal/cost"
	"github.com/guimove/placefit/internal/model"
)

// Estimator prices placements for the engine. *cost.Model satisfies it.
type Estimator interface {
	ValidatePlacement(p model.Placement) error
	MigrationCost(from, to model.Placement, objectCount int64, objectSize float64) (float64, error)
}

var _ Estimator = (*cost.Model)(nil)

// Request is one decision round for a workload.
type Request struct {
	WorkloadID string

	// Proposed placement
	Candidate model.Placement

	// Cost of staying on the current placement this period, as claimed by the caller
	CurrentCost float64

	// Cost of the candidate this period, as claimed by the caller
	CandidateCost float64

	// Number and size in bytes of the objects a migration would move
	ObjectCount int64
	ObjectSize  float64
}

// Decision is the outcome of one round.
type Decision struct {
	// First sighting of the workload; the candidate became its baseline
	Installed bool

	// The workload moved to the candidate
	Migrated bool

	// Zero when Installed
	MigrationCost float64

	// Accumulated regret after the round
	Regret float64
}

// Changed reports whether the candidate is now the workload's placement.
func (d Decision) Changed() bool {
	return d.Installed || d.Migrated
}

// WorkloadState is a snapshot of the decision state of one workload.
type WorkloadState struct {
	Placement   model.Placement `json:"placement"`
	CurrentCost float64         `json:"current_cost"`
	Regret      float64         `json:"regret"`
	Rounds      int             `json:"rounds"`
	Migrations  int             `json:"migrations"`
}

type workload struct {
	mu    sync.Mutex
	state WorkloadState
}

// Engine owns the decision state of every workload it has seen. State is
// retained until the owner calls Forget. Decisions for distinct workloads
// run in parallel; rounds for the same workload are serialized.
type Engine struct {
	estimator Estimator
	logger    *zap.Logger
	metrics   *Metrics

	mu        sync.Mutex
	workloads map[string]*workload
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for decision traces.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records every decision into m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine with no workload state.
func NewEngine(estimator Estimator, opts ...Option) *Engine {
	e := &Engine{
		estimator: estimator,
		logger:    zap.NewNop(),
		workloads: make(map[string]*workload),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide runs one decision round and reports whether the candidate is now
// the workload's placement. The first round for a workload always installs
// the candidate and returns true.
func (e *Engine) Decide(workloadID string, candidate model.Placement, currentCost, candidateCost float64, objectCount int64, objectSize float64) (bool, error) {
	d, err := e.Apply(Request{
		WorkloadID:    workloadID,
		Candidate:     candidate,
		CurrentCost:   currentCost,
		CandidateCost: candidateCost,
		ObjectCount:   objectCount,
		ObjectSize:    objectSize,
	})
	if err != nil {
		return false, err
	}
	return d.Changed(), nil
}

// Apply runs one decision round and returns its full outcome. A request
// that fails validation leaves the workload state untouched.
func (e *Engine) Apply(req Request) (Decision, error) {
	if err := e.validate(req); err != nil {
		e.metrics.observe(outcomeRejected)
		return Decision{}, err
	}

	w, installed := e.lookupOrInstall(req)
	if installed {
		e.metrics.observe(outcomeInstalled)
		e.logger.Debug("installed baseline placement",
			zap.String("workload", req.WorkloadID),
			zap.String("placement", req.Candidate.Label()),
			zap.Float64("cost", req.CurrentCost))
		return Decision{Installed: true}, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	migrate, mcost, err := e.Evaluate(w.state.Placement, req.Candidate,
		req.CurrentCost, req.CandidateCost, w.state.Regret, req.ObjectCount, req.ObjectSize)
	if err != nil {
		e.metrics.observe(outcomeRejected)
		return Decision{}, err
	}

	w.state.Rounds++
	if migrate {
		w.state.Placement = req.Candidate.Clone()
		w.state.CurrentCost = req.CandidateCost
		w.state.Regret = 0
		w.state.Migrations++
		e.metrics.observe(outcomeMigrated)
	} else {
		w.state.Regret += req.CurrentCost - req.CandidateCost
		e.metrics.observe(outcomeKept)
	}

	e.logger.Debug("migration decision",
		zap.String("workload", req.WorkloadID),
		zap.String("candidate", req.Candidate.Label()),
		zap.Float64("current_cost", req.CurrentCost),
		zap.Float64("candidate_cost", req.CandidateCost),
		zap.Float64("migration_cost", mcost),
		zap.Float64("regret", w.state.Regret),
		zap.Bool("migrate", migrate))

	return Decision{Migrated: migrate, MigrationCost: mcost, Regret: w.state.Regret}, nil
}

// Evaluate applies the decision rule to a single round without touching
// any state. regret is the regret accumulated before this round. It returns
// whether to migrate and the migration cost from current to candidate.
func (e *Engine) Evaluate(current, candidate model.Placement, currentCost, candidateCost, regret float64, objectCount int64, objectSize float64) (bool, float64, error) {
	mcost, err := e.estimator.MigrationCost(current, candidate, objectCount, objectSize)
	if err != nil {
		return false, 0, err
	}
	migrate := regret > mcost && candidateCost+mcost < currentCost
	return migrate, mcost, nil
}

// State returns a snapshot of the state of a workload, if it has been seen.
func (e *Engine) State(workloadID string) (WorkloadState, bool) {
	e.mu.Lock()
	w, ok := e.workloads[workloadID]
	e.mu.Unlock()
	if !ok {
		return WorkloadState{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.Placement = s.Placement.Clone()
	return s, true
}

// Forget drops the state of a workload. The next round for it installs a
// new baseline. It reports whether the workload was known.
func (e *Engine) Forget(workloadID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.workloads[workloadID]
	delete(e.workloads, workloadID)
	return ok
}

// Len returns the number of workloads with state.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.workloads)
}

func (e *Engine) validate(req Request) error {
	if req.WorkloadID == "" {
		return fmt.Errorf("%w: empty workload id", cost.ErrInvalidArgument)
	}
	if req.Candidate.IsEmpty() {
		return fmt.Errorf("%w: candidate placement has no write targets", cost.ErrInvalidArgument)
	}
	if req.ObjectCount <= 0 {
		return fmt.Errorf("%w: object count must be positive, got %d", cost.ErrInvalidArgument, req.ObjectCount)
	}
	if !(req.ObjectSize > 0) || math.IsInf(req.ObjectSize, 0) {
		return fmt.Errorf("%w: object size must be positive, got %v", cost.ErrInvalidArgument, req.ObjectSize)
	}
	if !validClaim(req.CurrentCost) || !validClaim(req.CandidateCost) {
		return fmt.Errorf("%w: cost claims must be finite and non-negative, got %v and %v",
			cost.ErrInvalidArgument, req.CurrentCost, req.CandidateCost)
	}
	if err := e.estimator.ValidatePlacement(req.Candidate); err != nil {
		return fmt.Errorf("candidate placement for %s: %w", req.WorkloadID, err)
	}
	return nil
}

func validClaim(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// lookupOrInstall returns the state of a known workload, or installs the
// candidate as the baseline of a new one and reports installed.
func (e *Engine) lookupOrInstall(req Request) (*workload, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if w, ok := e.workloads[req.WorkloadID]; ok {
		return w, false
	}
	e.workloads[req.WorkloadID] = &workload{state: WorkloadState{
		Placement:   req.Candidate.Clone(),
		CurrentCost: req.CurrentCost,
	}}
	return nil, true
}
