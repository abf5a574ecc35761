// Package cost turns workloads and placements into money for one billing
// period, and prices the one-time move of stored data between placements.
package cost

import (
	"errors"
	"fmt"

	"github.com/guimove/placefit/internal/model"
	"github.com/guimove/placefit/internal/pricing"
)

var (
	ErrInvalidPlacement    = errors.New("placement has no write targets")
	ErrIncompletePlacement = errors.New("placement has no read target for a region with demand")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// Catalog is the subset of the price catalog the cost model reads.
type Catalog interface {
	HasRegion(r model.Region) bool
	StoreRegion(s model.ObjectStoreID) (model.Region, error)
	StoragePrice(s model.ObjectStoreID) (float64, error)
	PutPrice(s model.ObjectStoreID) (float64, error)
	GetPrice(s model.ObjectStoreID) (float64, error)
	TransferInPrice(r model.Region, s model.ObjectStoreID) (float64, error)
	TransferOutPrice(s model.ObjectStoreID, r model.Region) (float64, error)
}

var _ Catalog = (*pricing.Catalog)(nil)

// Model evaluates costs against a price catalog. It holds no mutable state
// and is safe for concurrent use.
type Model struct {
	catalog Catalog
}

// NewModel creates a cost model reading from the given catalog.
func NewModel(catalog Catalog) *Model {
	return &Model{catalog: catalog}
}

// Cost returns the total cost of serving w under p for one billing period.
func (m *Model) Cost(w model.Workload, p model.Placement) (float64, error) {
	b, err := m.Breakdown(w, p)
	if err != nil {
		return 0, err
	}
	return b.Total(), nil
}

// Breakdown returns the cost of w under p split per term. Writes replicate
// to every write target, so storage, put and ingress are paid once per
// target; reads are served by the single read target of their region.
func (m *Model) Breakdown(w model.Workload, p model.Placement) (model.CostBreakdown, error) {
	var b model.CostBreakdown

	if p.IsEmpty() {
		return b, ErrInvalidPlacement
	}
	writes := p.WriteSet()

	for _, s := range writes {
		storage, err := m.catalog.StoragePrice(s)
		if err != nil {
			return model.CostBreakdown{}, err
		}
		put, err := m.catalog.PutPrice(s)
		if err != nil {
			return model.CostBreakdown{}, err
		}
		b.Storage += w.Size * storage
		b.Put += w.Puts * put
	}

	for _, r := range w.Regions() {
		if !m.catalog.HasRegion(r) {
			return model.CostBreakdown{}, fmt.Errorf("%w: region %q", pricing.ErrUnknownPriceEntry, r)
		}

		if ingress := w.Ingress[r]; ingress != 0 {
			for _, s := range writes {
				price, err := m.catalog.TransferInPrice(r, s)
				if err != nil {
					return model.CostBreakdown{}, err
				}
				b.Ingress += ingress * price
			}
		}

		if !w.HasDemand(r) {
			continue
		}
		src, ok := p.ReadTargets[r]
		if !ok {
			return model.CostBreakdown{}, fmt.Errorf("%w: %s", ErrIncompletePlacement, r)
		}
		get, err := m.catalog.GetPrice(src)
		if err != nil {
			return model.CostBreakdown{}, err
		}
		out, err := m.catalog.TransferOutPrice(src, r)
		if err != nil {
			return model.CostBreakdown{}, err
		}
		b.Get += w.Gets[r] * get
		b.Egress += w.Egress[r] * out
	}

	return b, nil
}

// ValidatePlacement checks that p writes somewhere and that every store and
// region it names is priced by the catalog.
func (m *Model) ValidatePlacement(p model.Placement) error {
	if p.IsEmpty() {
		return ErrInvalidPlacement
	}
	for _, s := range p.WriteTargets {
		if _, err := m.catalog.StoreRegion(s); err != nil {
			return err
		}
	}
	for r, s := range p.ReadTargets {
		if !m.catalog.HasRegion(r) {
			return fmt.Errorf("%w: region %q", pricing.ErrUnknownPriceEntry, r)
		}
		if _, err := m.catalog.StoreRegion(s); err != nil {
			return err
		}
	}
	return nil
}
