package model

// Workload is the traffic-and-storage profile of one logical dataset for a
// single billing period, broken down per application region.
type Workload struct {
	// Stored volume in bytes
	Size float64 `json:"size"`

	// Write operations; every write lands on all write targets
	Puts float64 `json:"puts"`

	// Read operations per origin region
	Gets map[Region]float64 `json:"gets,omitempty"`

	// Bytes written from each region into the store(s)
	Ingress map[Region]float64 `json:"ingress,omitempty"`

	// Bytes read out of the store(s) into each region
	Egress map[Region]float64 `json:"egress,omitempty"`
}

// Add returns the field-wise sum of two workloads.
func (w Workload) Add(other Workload) Workload {
	return Workload{
		Size:    w.Size + other.Size,
		Puts:    w.Puts + other.Puts,
		Gets:    addRegionMaps(w.Gets, other.Gets),
		Ingress: addRegionMaps(w.Ingress, other.Ingress),
		Egress:  addRegionMaps(w.Egress, other.Egress),
	}
}

// Scale multiplies every quantity by f.
func (w Workload) Scale(f float64) Workload {
	return Workload{
		Size:    w.Size * f,
		Puts:    w.Puts * f,
		Gets:    scaleRegionMap(w.Gets, f),
		Ingress: scaleRegionMap(w.Ingress, f),
		Egress:  scaleRegionMap(w.Egress, f),
	}
}

// Regions returns the sorted union of regions referenced by the workload.
func (w Workload) Regions() []Region {
	seen := make(map[Region]bool)
	for _, m := range []map[Region]float64{w.Gets, w.Ingress, w.Egress} {
		for r := range m {
			seen[r] = true
		}
	}
	regions := make([]Region, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	SortRegions(regions)
	return regions
}

// HasDemand reports whether reads are served into region r, which means the
// placement needs a read target there.
func (w Workload) HasDemand(r Region) bool {
	return w.Gets[r] != 0 || w.Egress[r] != 0
}

// IsZero returns true if the workload carries no quantity at all.
func (w Workload) IsZero() bool {
	if w.Size != 0 || w.Puts != 0 {
		return false
	}
	for _, m := range []map[Region]float64{w.Gets, w.Ingress, w.Egress} {
		for _, v := range m {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

func addRegionMaps(a, b map[Region]float64) map[Region]float64 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[Region]float64, len(a)+len(b))
	for r, v := range a {
		out[r] += v
	}
	for r, v := range b {
		out[r] += v
	}
	return out
}

func scaleRegionMap(m map[Region]float64, f float64) map[Region]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[Region]float64, len(m))
	for r, v := range m {
		out[r] = v * f
	}
	return out
}
