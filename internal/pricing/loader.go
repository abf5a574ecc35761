package pricing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/guimove/placefit/internal/model"
)

// BytesPerGiB is the data unit of the bundled price tables.
const BytesPerGiB = 1 << 30

// Price groups of the storage pricing table.
const (
	GroupStorage     = "storage"
	GroupPutRequest  = "put request"
	GroupGetRequest  = "get request"
	GroupPutTransfer = "put transfer"
	GroupGetTransfer = "get transfer"
)

var networkColumns = []string{"src_vendor", "src_region", "dest_vendor", "dest_region", "cost"}

var storageColumns = []string{"Vendor", "Region", "Name", "Tier", "Group", "PricePerUnit"}

// NetworkRecord is one row of the network cost table, priced per data unit.
type NetworkRecord struct {
	Src  model.Region
	Dst  model.Region
	Cost float64
}

// StorageRecord is one row of the storage pricing table.
type StorageRecord struct {
	Vendor       string
	Region       string
	Name         string
	Tier         string
	Group        string
	PricePerUnit float64
}

// StoreID returns the id of the store this record prices.
func (r StorageRecord) StoreID() model.ObjectStoreID {
	return model.NewObjectStoreID(r.Vendor, r.Region, r.Name, r.Tier)
}

// StoreRegion returns the home region of the store this record prices.
func (r StorageRecord) StoreRegion() model.Region {
	return model.NewRegion(r.Vendor, r.Region)
}

// LoadOptions selects the price tables and the universe to load.
type LoadOptions struct {
	NetworkFile string
	StorageFile string

	// Application regions to include; empty = every region of the network table
	Regions []model.Region

	// Stores to include; empty = every store located in a selected region
	Stores []model.ObjectStoreID

	// Bytes per data unit of the tables (e.g. BytesPerGiB); 0 = prices are per byte
	BytesPerUnit float64
}

// LoadCatalog reads both price tables from disk and builds the catalog.
func LoadCatalog(opts LoadOptions) (*Catalog, error) {
	nf, err := os.Open(opts.NetworkFile)
	if err != nil {
		return nil, fmt.Errorf("opening network cost file: %w", err)
	}
	defer func() { _ = nf.Close() }()

	network, err := ReadNetworkRecords(nf)
	if err != nil {
		return nil, fmt.Errorf("reading network cost file %s: %w", opts.NetworkFile, err)
	}

	sf, err := os.Open(opts.StorageFile)
	if err != nil {
		return nil, fmt.Errorf("opening storage pricing file: %w", err)
	}
	defer func() { _ = sf.Close() }()

	storage, err := ReadStorageRecords(sf)
	if err != nil {
		return nil, fmt.Errorf("reading storage pricing file %s: %w", opts.StorageFile, err)
	}

	return BuildCatalog(network, storage, opts)
}

// BuildCatalog restricts the records to the selected universe, converts data
// prices to per-byte prices and builds the catalog.
func BuildCatalog(network []NetworkRecord, storage []StorageRecord, opts LoadOptions) (*Catalog, error) {
	unit := opts.BytesPerUnit
	if unit <= 0 {
		unit = 1
	}

	known := make(map[model.Region]bool)
	for _, n := range network {
		known[n.Src] = true
		known[n.Dst] = true
	}

	selected := make(map[model.Region]bool)
	if len(opts.Regions) == 0 {
		for r := range known {
			selected[r] = true
		}
	}
	for _, r := range opts.Regions {
		if !known[r] {
			return nil, fmt.Errorf("%w: region %q not in network cost table", ErrUnknownPriceEntry, r)
		}
		selected[r] = true
	}

	stores := make(map[model.ObjectStoreID]StorePrices)
	for _, rec := range storage {
		id := rec.StoreID()
		p := stores[id]
		p.Region = rec.StoreRegion()
		price := rec.PricePerUnit
		// Duplicate entries merge by maximum.
		switch strings.ToLower(rec.Group) {
		case GroupStorage:
			p.Storage = max(p.Storage, price/unit)
		case GroupPutRequest:
			p.Put = max(p.Put, price)
		case GroupGetRequest:
			p.Get = max(p.Get, price)
		case GroupPutTransfer:
			p.PutTransfer = max(p.PutTransfer, price/unit)
		case GroupGetTransfer:
			p.GetTransfer = max(p.GetTransfer, price/unit)
		default:
			continue
		}
		stores[id] = p
	}

	wanted := make(map[model.ObjectStoreID]bool)
	for _, s := range opts.Stores {
		if _, ok := stores[s]; !ok {
			return nil, fmt.Errorf("%w: object store %q not in storage pricing table", ErrUnknownPriceEntry, s)
		}
		wanted[s] = true
	}

	b := NewBuilder()
	for id, p := range stores {
		if len(wanted) > 0 && !wanted[id] {
			continue
		}
		if len(wanted) == 0 && !selected[p.Region] {
			continue
		}
		if !known[p.Region] {
			return nil, fmt.Errorf("%w: region %q of store %q not in network cost table", ErrUnknownPriceEntry, p.Region, id)
		}
		// A store's own region always joins the universe: reads and
		// migrations are priced out of it.
		selected[p.Region] = true
		b.SetStore(id, p)
	}

	for r := range selected {
		b.AddRegion(r)
	}
	for _, n := range network {
		if selected[n.Src] && selected[n.Dst] {
			b.SetNetworkPrice(n.Src, n.Dst, n.Cost/unit)
		}
	}

	return b.Build()
}

// ReadNetworkRecords parses a network cost table with the header
// src_vendor,src_region,dest_vendor,dest_region,cost.
func ReadNetworkRecords(r io.Reader) ([]NetworkRecord, error) {
	rows, idx, err := readTable(r, networkColumns)
	if err != nil {
		return nil, err
	}

	records := make([]NetworkRecord, 0, len(rows))
	for i, row := range rows {
		cost, err := strconv.ParseFloat(strings.TrimSpace(row[idx["cost"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing cost: %w", i+2, err)
		}
		records = append(records, NetworkRecord{
			Src:  model.NewRegion(row[idx["src_vendor"]], row[idx["src_region"]]),
			Dst:  model.NewRegion(row[idx["dest_vendor"]], row[idx["dest_region"]]),
			Cost: cost,
		})
	}
	return records, nil
}

// ReadStorageRecords parses a storage pricing table with the header
// Vendor,Region,Name,Tier,Group,PricePerUnit. When a StartingRange column
// is present, only the first tier (starting at 0) of each price is kept.
func ReadStorageRecords(r io.Reader) ([]StorageRecord, error) {
	rows, idx, err := readTable(r, storageColumns)
	if err != nil {
		return nil, err
	}

	startCol, tiered := idx["StartingRange"]
	records := make([]StorageRecord, 0, len(rows))
	for i, row := range rows {
		if tiered {
			if start := strings.TrimSpace(row[startCol]); start != "" {
				v, err := strconv.ParseFloat(start, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: parsing StartingRange: %w", i+2, err)
				}
				if v > 0 {
					continue
				}
			}
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[idx["PricePerUnit"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing PricePerUnit: %w", i+2, err)
		}
		records = append(records, StorageRecord{
			Vendor:       row[idx["Vendor"]],
			Region:       row[idx["Region"]],
			Name:         row[idx["Name"]],
			Tier:         row[idx["Tier"]],
			Group:        row[idx["Group"]],
			PricePerUnit: price,
		})
	}
	return records, nil
}

// WriteStorageRecords writes records in the format ReadStorageRecords reads.
func WriteStorageRecords(w io.Writer, records []StorageRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(storageColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Vendor, r.Region, r.Name, r.Tier, r.Group,
			strconv.FormatFloat(r.PricePerUnit, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readTable reads a CSV table and maps each required column to its index.
func readTable(r io.Reader, required []string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty price table")
		}
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return rows, idx, nil
}
