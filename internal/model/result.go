package model

// CostBreakdown splits the cost of a workload under a placement into the
// terms of the cost model.
type CostBreakdown struct {
	Storage float64 `json:"storage"`
	Put     float64 `json:"put"`
	Get     float64 `json:"get"`
	Ingress float64 `json:"ingress"`
	Egress  float64 `json:"egress"`
}

// Total returns the sum of all terms.
func (b CostBreakdown) Total() float64 {
	return b.Storage + b.Put + b.Get + b.Ingress + b.Egress
}

// Add returns the term-wise sum of two breakdowns.
func (b CostBreakdown) Add(other CostBreakdown) CostBreakdown {
	return CostBreakdown{
		Storage: b.Storage + other.Storage,
		Put:     b.Put + other.Put,
		Get:     b.Get + other.Get,
		Ingress: b.Ingress + other.Ingress,
		Egress:  b.Egress + other.Egress,
	}
}

// Estimate is the costed outcome of one candidate placement for a workload.
type Estimate struct {
	WorkloadID string        `json:"workload_id"`
	Rank       int           `json:"rank"`
	Placement  Placement     `json:"placement"`
	Breakdown  CostBreakdown `json:"breakdown"`
	Cost       float64       `json:"cost"`

	// Extra cost over the cheapest placement of the same workload
	CostVsBest float64 `json:"cost_vs_best"`

	// Non-empty when the placement could not be costed
	Error string `json:"error,omitempty"`
}

// DecisionRecord captures one migration decision for reporting.
type DecisionRecord struct {
	Seq           int       `json:"seq"`
	WorkloadID    string    `json:"workload_id"`
	Candidate     Placement `json:"candidate"`
	CurrentCost   float64   `json:"current_cost"`
	CandidateCost float64   `json:"candidate_cost"`
	MigrationCost float64   `json:"migration_cost"`
	Regret        float64   `json:"regret"`
	Installed     bool      `json:"installed"`
	Migrated      bool      `json:"migrated"`
	Error         string    `json:"error,omitempty"`
}
