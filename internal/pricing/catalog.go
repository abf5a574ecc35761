// Package pricing holds the immutable price catalog the cost model reads
// from, and the loader that builds it from price tables.
package pricing

import (
	"errors"
	"fmt"

	"github.com/guimove/placefit/internal/model"
)

var (
	// ErrUnknownPriceEntry is returned for any store or region outside the
	// loaded universe. Unknown entries never default to zero.
	ErrUnknownPriceEntry = errors.New("unknown price entry")

	// ErrInvalidCatalog is returned when a catalog cannot be built.
	ErrInvalidCatalog = errors.New("invalid price catalog")
)

// StorePrices are the per-store prices. Data prices are per byte (storage per
// byte and billing period), operation prices per request.
type StorePrices struct {
	Region      model.Region `json:"region"`
	Storage     float64      `json:"storage"`
	Put         float64      `json:"put"`
	Get         float64      `json:"get"`
	PutTransfer float64      `json:"put_transfer"` // surcharge on bytes written
	GetTransfer float64      `json:"get_transfer"` // surcharge on bytes read
}

// Catalog is an in-memory price lookup table. It is immutable once built and
// safe for any number of concurrent readers.
type Catalog struct {
	regions     []model.Region
	regionSet   map[model.Region]bool
	stores      []model.ObjectStoreID
	storePrices map[model.ObjectStoreID]StorePrices
	network     map[model.Region]map[model.Region]float64
}

// Regions returns the ordered region universe.
func (c *Catalog) Regions() []model.Region {
	return append([]model.Region(nil), c.regions...)
}

// Stores returns the ordered store ids.
func (c *Catalog) Stores() []model.ObjectStoreID {
	return append([]model.ObjectStoreID(nil), c.stores...)
}

// HasRegion reports whether r is part of the universe.
func (c *Catalog) HasRegion(r model.Region) bool {
	return c.regionSet[r]
}

// HasStore reports whether s is priced by the catalog.
func (c *Catalog) HasStore(s model.ObjectStoreID) bool {
	_, ok := c.storePrices[s]
	return ok
}

// Store returns all prices of a store.
func (c *Catalog) Store(s model.ObjectStoreID) (StorePrices, error) {
	p, ok := c.storePrices[s]
	if !ok {
		return StorePrices{}, fmt.Errorf("%w: object store %q", ErrUnknownPriceEntry, s)
	}
	return p, nil
}

// NetworkPrice returns the price per byte transferred from src to dst.
func (c *Catalog) NetworkPrice(src, dst model.Region) (float64, error) {
	if !c.regionSet[src] {
		return 0, fmt.Errorf("%w: region %q", ErrUnknownPriceEntry, src)
	}
	if !c.regionSet[dst] {
		return 0, fmt.Errorf("%w: region %q", ErrUnknownPriceEntry, dst)
	}
	price, ok := c.network[src][dst]
	if !ok {
		return 0, fmt.Errorf("%w: network %s -> %s", ErrUnknownPriceEntry, src, dst)
	}
	return price, nil
}

// StoreRegion returns the home region of a store.
func (c *Catalog) StoreRegion(s model.ObjectStoreID) (model.Region, error) {
	p, err := c.Store(s)
	if err != nil {
		return "", err
	}
	return p.Region, nil
}

// StoragePrice returns the price per stored byte and billing period.
func (c *Catalog) StoragePrice(s model.ObjectStoreID) (float64, error) {
	p, err := c.Store(s)
	return p.Storage, err
}

// PutPrice returns the price per write request.
func (c *Catalog) PutPrice(s model.ObjectStoreID) (float64, error) {
	p, err := c.Store(s)
	return p.Put, err
}

// GetPrice returns the price per read request.
func (c *Catalog) GetPrice(s model.ObjectStoreID) (float64, error) {
	p, err := c.Store(s)
	return p.Get, err
}

// TransferInPrice returns the price per byte written from region r into
// store s: the network price into the store's region plus the store's put
// transfer surcharge.
func (c *Catalog) TransferInPrice(r model.Region, s model.ObjectStoreID) (float64, error) {
	p, err := c.Store(s)
	if err != nil {
		return 0, err
	}
	net, err := c.NetworkPrice(r, p.Region)
	if err != nil {
		return 0, err
	}
	return net + p.PutTransfer, nil
}

// TransferOutPrice returns the price per byte read from store s into region
// r: the network price out of the store's region plus the store's get
// transfer surcharge.
func (c *Catalog) TransferOutPrice(s model.ObjectStoreID, r model.Region) (float64, error) {
	p, err := c.Store(s)
	if err != nil {
		return 0, err
	}
	net, err := c.NetworkPrice(p.Region, r)
	if err != nil {
		return 0, err
	}
	return net + p.GetTransfer, nil
}

// Builder accumulates prices and produces a Catalog. A Builder is not safe
// for concurrent use.
type Builder struct {
	regions   []model.Region
	regionSet map[model.Region]bool
	stores    map[model.ObjectStoreID]StorePrices
	network   map[model.Region]map[model.Region]float64
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		regionSet: make(map[model.Region]bool),
		stores:    make(map[model.ObjectStoreID]StorePrices),
		network:   make(map[model.Region]map[model.Region]float64),
	}
}

// AddRegion adds r to the universe. Adding a region twice is a no-op.
func (b *Builder) AddRegion(r model.Region) *Builder {
	if !b.regionSet[r] {
		b.regionSet[r] = true
		b.regions = append(b.regions, r)
	}
	return b
}

// SetNetworkPrice sets the price per byte from src to dst.
func (b *Builder) SetNetworkPrice(src, dst model.Region, price float64) *Builder {
	if b.network[src] == nil {
		b.network[src] = make(map[model.Region]float64)
	}
	b.network[src][dst] = price
	return b
}

// SetStore sets all prices of a store, replacing earlier ones.
func (b *Builder) SetStore(s model.ObjectStoreID, prices StorePrices) *Builder {
	b.stores[s] = prices
	return b
}

// Build validates the accumulated prices and returns the catalog.
func (b *Builder) Build() (*Catalog, error) {
	if len(b.regions) == 0 {
		return nil, fmt.Errorf("%w: empty region universe", ErrInvalidCatalog)
	}
	if len(b.stores) == 0 {
		return nil, fmt.Errorf("%w: no object stores", ErrInvalidCatalog)
	}

	network := make(map[model.Region]map[model.Region]float64, len(b.network))
	for src, dsts := range b.network {
		if !b.regionSet[src] {
			return nil, fmt.Errorf("%w: network price from region %q outside the universe", ErrInvalidCatalog, src)
		}
		row := make(map[model.Region]float64, len(dsts))
		for dst, price := range dsts {
			if !b.regionSet[dst] {
				return nil, fmt.Errorf("%w: network price to region %q outside the universe", ErrInvalidCatalog, dst)
			}
			if price < 0 {
				return nil, fmt.Errorf("%w: negative network price %s -> %s", ErrInvalidCatalog, src, dst)
			}
			row[dst] = price
		}
		network[src] = row
	}

	stores := make([]model.ObjectStoreID, 0, len(b.stores))
	prices := make(map[model.ObjectStoreID]StorePrices, len(b.stores))
	for id, p := range b.stores {
		if !b.regionSet[p.Region] {
			return nil, fmt.Errorf("%w: store %q is in region %q outside the universe", ErrInvalidCatalog, id, p.Region)
		}
		if p.Storage < 0 || p.Put < 0 || p.Get < 0 || p.PutTransfer < 0 || p.GetTransfer < 0 {
			return nil, fmt.Errorf("%w: negative price for store %q", ErrInvalidCatalog, id)
		}
		stores = append(stores, id)
		prices[id] = p
	}
	model.SortStores(stores)

	regions := append([]model.Region(nil), b.regions...)
	model.SortRegions(regions)
	regionSet := make(map[model.Region]bool, len(regions))
	for _, r := range regions {
		regionSet[r] = true
	}

	return &Catalog{
		regions:     regions,
		regionSet:   regionSet,
		stores:      stores,
		storePrices: prices,
		network:     network,
	}, nil
}
