package model

import "time"

// WorkloadSpec is one workload to advise on: its profile, the size of the
// data a migration would move, and the placements proposed for it.
type WorkloadSpec struct {
	ID       string   `json:"id"`
	Workload Workload `json:"workload"`

	// Stored objects; a migration moves all of them
	ObjectCount int64   `json:"object_count,omitempty"`
	ObjectSize  float64 `json:"object_size,omitempty"`

	// Placements to cost; generating them is up to the caller
	Candidates []Placement `json:"candidates,omitempty"`
}

// WorkloadSet is a batch of workloads collected over one billing period.
type WorkloadSet struct {
	CollectedAt time.Time      `json:"collected_at"`
	Window      time.Duration  `json:"window,omitempty"`
	Workloads   []WorkloadSpec `json:"workloads"`
}

// DecisionEvent is one round of a decision trace. Cost claims may be given
// verbatim; when they are omitted, Workload must be set and both costs are
// computed from it.
type DecisionEvent struct {
	WorkloadID string    `json:"workload_id"`
	Candidate  Placement `json:"candidate"`

	CurrentCost   *float64  `json:"current_cost,omitempty"`
	CandidateCost *float64  `json:"candidate_cost,omitempty"`
	Workload      *Workload `json:"workload,omitempty"`

	// Zero values fall back to configured defaults
	ObjectCount int64   `json:"object_count,omitempty"`
	ObjectSize  float64 `json:"object_size,omitempty"`
}

// Trace is an ordered list of decision rounds, possibly for many workloads.
type Trace struct {
	Events []DecisionEvent `json:"events"`
}
