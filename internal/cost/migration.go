package cost

import (
	"fmt"
	"math"

	"github.com/guimove/placefit/internal/model"
)

// MigrationCost returns the one-time cost of copying objectCount objects of
// objectSize bytes each from the write targets of from into the stores that
// to writes but from does not. Every new store is filled from the cheapest
// existing store. Placements with the same write set cost exactly 0.
func (m *Model) MigrationCost(from, to model.Placement, objectCount int64, objectSize float64) (float64, error) {
	if objectCount <= 0 {
		return 0, fmt.Errorf("%w: object count must be positive, got %d", ErrInvalidArgument, objectCount)
	}
	if objectSize <= 0 {
		return 0, fmt.Errorf("%w: object size must be positive, got %v", ErrInvalidArgument, objectSize)
	}
	if from.IsEmpty() || to.IsEmpty() {
		return 0, fmt.Errorf("%w: placement has no write targets", ErrInvalidArgument)
	}

	sources := from.WriteSet()
	total := 0.0
	for _, dst := range to.WriteSet() {
		if from.Writes(dst) {
			continue
		}
		best := math.Inf(1)
		for _, src := range sources {
			c, err := m.transferCost(src, dst, objectCount, objectSize)
			if err != nil {
				return 0, err
			}
			best = math.Min(best, c)
		}
		total += best
	}
	return total, nil
}

// transferCost prices copying the objects from src into dst by evaluating
// the cost model on a synthetic workload: every object is read once from
// src into dst's region and written once into dst.
func (m *Model) transferCost(src, dst model.ObjectStoreID, objectCount int64, objectSize float64) (float64, error) {
	region, err := m.catalog.StoreRegion(dst)
	if err != nil {
		return 0, err
	}
	n := float64(objectCount)
	bytes := n * objectSize

	w := model.Workload{
		Puts:    n,
		Gets:    map[model.Region]float64{region: n},
		Ingress: map[model.Region]float64{region: bytes},
		Egress:  map[model.Region]float64{region: bytes},
	}
	p := model.Placement{
		WriteTargets: []model.ObjectStoreID{dst},
		ReadTargets:  map[model.Region]model.ObjectStoreID{region: src},
	}
	return m.Cost(w, p)
}
