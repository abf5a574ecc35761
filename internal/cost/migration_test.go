package cost

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/guimove/placefit/internal/model"
)

func writes(stores ...model.ObjectStoreID) model.Placement {
	return model.Placement{WriteTargets: stores}
}

func TestMigrationCost_SameWriteSetIsFree(t *testing.T) {
	m := testModel(t)

	from := model.Placement{
		WriteTargets: []model.ObjectStoreID{storeA, storeB},
		ReadTargets:  map[model.Region]model.ObjectStoreID{regionA: storeA},
	}
	to := model.Placement{
		WriteTargets: []model.ObjectStoreID{storeB, storeA, storeB},
		ReadTargets:  map[model.Region]model.ObjectStoreID{regionA: storeB},
	}

	got, err := m.MigrationCost(from, to, 1_000_000, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("MigrationCost() = %v, want exactly 0", got)
	}
}

func TestMigrationCost(t *testing.T) {
	m := testModel(t)

	// 10 objects of 4 bytes each, landing in region B
	const n, size = 10, 4
	// puts into B + gets from A + egress A->B (network plus surcharge)
	fromA := n*1.0 + n*0.25 + n*size*(2+0.0625)
	// puts into B2 + gets from B, no network cost inside B
	fromB := n*1.0 + n*0.5

	tests := []struct {
		name string
		from model.Placement
		to   model.Placement
		want float64
	}{
		{"cross region copy", writes(storeA), writes(storeB), fromA},
		{"removed stores cost nothing", writes(storeA, storeB), writes(storeA), 0},
		{"only new stores are filled", writes(storeA), writes(storeA, storeB), fromA},
		{"cheapest source wins", writes(storeA, storeB), writes(storeB2), fromB},
		{"each new store is paid", writes(storeA), writes(storeB, storeB2), 2 * fromA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.MigrationCost(tt.from, tt.to, n, size)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("MigrationCost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMigrationCost_InvalidArguments(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		name  string
		from  model.Placement
		to    model.Placement
		count int64
		size  float64
	}{
		{"zero count", writes(storeA), writes(storeB), 0, 1},
		{"negative count", writes(storeA), writes(storeB), -1, 1},
		{"zero size", writes(storeA), writes(storeB), 1, 0},
		{"negative size", writes(storeA), writes(storeB), 1, -5},
		{"empty source", writes(), writes(storeB), 1, 1},
		{"empty destination", writes(storeA), writes(), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.MigrationCost(tt.from, tt.to, tt.count, tt.size)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestMigrationCost_Monotonic(t *testing.T) {
	m := testModel(t)
	from, to := writes(storeA), writes(storeB, storeB2)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("more or larger objects never cost less", prop.ForAll(
		func(n, dn int64, size, dsize float64) bool {
			small, err1 := m.MigrationCost(from, to, n, size)
			large, err2 := m.MigrationCost(from, to, n+dn, size+dsize)
			if err1 != nil || err2 != nil {
				return false
			}
			return small <= large
		},
		gen.Int64Range(1, 1_000_000),
		gen.Int64Range(0, 1_000_000),
		gen.Float64Range(1, 1<<30),
		gen.Float64Range(0, 1<<30),
	))

	properties.Property("same write set is always free", prop.ForAll(
		func(n int64, size float64) bool {
			c, err := m.MigrationCost(to, writes(storeB2, storeB), n, size)
			return err == nil && c == 0
		},
		gen.Int64Range(1, 1_000_000),
		gen.Float64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}
