package model

import (
	"sort"
	"strings"
)

// Region identifies a traffic-origin location, e.g. "aws-eu-west-1".
type Region string

// ObjectStoreID identifies a storage target as "vendor-region-name-tier",
// e.g. "aws-us-east-1-s3-General Purpose".
type ObjectStoreID string

// NewRegion joins a vendor and a vendor-local region code.
func NewRegion(vendor, region string) Region {
	return Region(vendor + "-" + region)
}

// NewObjectStoreID joins the four components of a store identifier.
func NewObjectStoreID(vendor, region, name, tier string) ObjectStoreID {
	return ObjectStoreID(strings.Join([]string{vendor, region, name, tier}, "-"))
}

// SortRegions sorts regions in place.
func SortRegions(regions []Region) {
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
}

// SortStores sorts store ids in place.
func SortStores(stores []ObjectStoreID) {
	sort.Slice(stores, func(i, j int) bool { return stores[i] < stores[j] })
}
