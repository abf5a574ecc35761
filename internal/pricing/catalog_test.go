package pricing

import (
	"errors"
	"sync"
	"testing"

	"github.com/guimove/placefit/internal/model"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	b := NewBuilder().
		AddRegion("aws-us-east-1").
		AddRegion("aws-eu-west-1").
		SetNetworkPrice("aws-us-east-1", "aws-us-east-1", 0).
		SetNetworkPrice("aws-us-east-1", "aws-eu-west-1", 0.02).
		SetNetworkPrice("aws-eu-west-1", "aws-us-east-1", 0.03).
		SetNetworkPrice("aws-eu-west-1", "aws-eu-west-1", 0).
		SetStore("aws-us-east-1-s3-Standard", StorePrices{
			Region:      "aws-us-east-1",
			Storage:     0.023,
			Put:         0.005,
			Get:         0.0004,
			PutTransfer: 0.001,
			GetTransfer: 0.002,
		})
	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c
}

func TestCatalog_Lookups(t *testing.T) {
	c := testCatalog(t)
	s := model.ObjectStoreID("aws-us-east-1-s3-Standard")

	if p, _ := c.StoragePrice(s); p != 0.023 {
		t.Errorf("StoragePrice = %v, want 0.023", p)
	}
	if p, _ := c.PutPrice(s); p != 0.005 {
		t.Errorf("PutPrice = %v, want 0.005", p)
	}
	if p, _ := c.GetPrice(s); p != 0.0004 {
		t.Errorf("GetPrice = %v, want 0.0004", p)
	}
	if r, _ := c.StoreRegion(s); r != "aws-us-east-1" {
		t.Errorf("StoreRegion = %s", r)
	}
	if p, _ := c.NetworkPrice("aws-eu-west-1", "aws-us-east-1"); p != 0.03 {
		t.Errorf("NetworkPrice = %v, want 0.03", p)
	}
	// eu -> us network plus the put transfer surcharge
	if p, _ := c.TransferInPrice("aws-eu-west-1", s); p != 0.03+0.001 {
		t.Errorf("TransferInPrice = %v, want %v", p, 0.03+0.001)
	}
	// us -> eu network plus the get transfer surcharge
	if p, _ := c.TransferOutPrice(s, "aws-eu-west-1"); p != 0.02+0.002 {
		t.Errorf("TransferOutPrice = %v, want %v", p, 0.02+0.002)
	}
}

func TestCatalog_UnknownEntries(t *testing.T) {
	c := testCatalog(t)
	known := model.ObjectStoreID("aws-us-east-1-s3-Standard")

	tests := []struct {
		name string
		fn   func() error
	}{
		{"storage of unknown store", func() error { _, err := c.StoragePrice("gcp-x-gcs-Standard"); return err }},
		{"put of unknown store", func() error { _, err := c.PutPrice("nope"); return err }},
		{"get of unknown store", func() error { _, err := c.GetPrice("nope"); return err }},
		{"network from unknown region", func() error { _, err := c.NetworkPrice("aws-ap-south-1", "aws-us-east-1"); return err }},
		{"network to unknown region", func() error { _, err := c.NetworkPrice("aws-us-east-1", "aws-ap-south-1"); return err }},
		{"transfer in from unknown region", func() error { _, err := c.TransferInPrice("aws-ap-south-1", known); return err }},
		{"transfer out to unknown region", func() error { _, err := c.TransferOutPrice(known, "aws-ap-south-1"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !errors.Is(err, ErrUnknownPriceEntry) {
				t.Errorf("expected ErrUnknownPriceEntry, got %v", err)
			}
		})
	}
}

func TestCatalog_MissingNetworkPairIsUnknown(t *testing.T) {
	c, err := NewBuilder().
		AddRegion("a").
		AddRegion("b").
		SetNetworkPrice("a", "b", 1).
		SetStore("s", StorePrices{Region: "a"}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.NetworkPrice("b", "a"); !errors.Is(err, ErrUnknownPriceEntry) {
		t.Errorf("expected ErrUnknownPriceEntry for missing pair, got %v", err)
	}
}

func TestBuilder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
	}{
		{"no regions", NewBuilder().SetStore("s", StorePrices{Region: "a"})},
		{"no stores", NewBuilder().AddRegion("a")},
		{"store outside universe", NewBuilder().AddRegion("a").SetStore("s", StorePrices{Region: "b"})},
		{"network outside universe", NewBuilder().AddRegion("a").
			SetStore("s", StorePrices{Region: "a"}).
			SetNetworkPrice("a", "b", 0.01)},
		{"negative network price", NewBuilder().AddRegion("a").
			SetStore("s", StorePrices{Region: "a"}).
			SetNetworkPrice("a", "a", -1)},
		{"negative store price", NewBuilder().AddRegion("a").
			SetStore("s", StorePrices{Region: "a", Get: -0.1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.b.Build()
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
			if c != nil {
				t.Error("no catalog must be returned on failure")
			}
		})
	}
}

func TestCatalog_OrderedUniverse(t *testing.T) {
	c, err := NewBuilder().
		AddRegion("c").AddRegion("a").AddRegion("b").AddRegion("a").
		SetStore("z", StorePrices{Region: "a"}).
		SetStore("y", StorePrices{Region: "b"}).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	regions := c.Regions()
	if len(regions) != 3 || regions[0] != "a" || regions[1] != "b" || regions[2] != "c" {
		t.Errorf("Regions() = %v, want [a b c]", regions)
	}
	stores := c.Stores()
	if len(stores) != 2 || stores[0] != "y" || stores[1] != "z" {
		t.Errorf("Stores() = %v, want [y z]", stores)
	}

	// Returned slices are copies
	regions[0] = "mutated"
	if c.Regions()[0] != "a" {
		t.Error("Regions() exposes internal state")
	}
}

func TestCatalog_ConcurrentReaders(t *testing.T) {
	c := testCatalog(t)
	s := model.ObjectStoreID("aws-us-east-1-s3-Standard")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := c.TransferOutPrice(s, "aws-eu-west-1"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
