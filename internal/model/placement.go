package model

import "strings"

// Placement assigns which stores receive writes and which store answers
// reads for each application region.
type Placement struct {
	WriteTargets []ObjectStoreID          `json:"write_targets"`
	ReadTargets  map[Region]ObjectStoreID `json:"read_targets,omitempty"`
}

// WriteSet returns the distinct write targets in sorted order.
func (p Placement) WriteSet() []ObjectStoreID {
	seen := make(map[ObjectStoreID]bool, len(p.WriteTargets))
	set := make([]ObjectStoreID, 0, len(p.WriteTargets))
	for _, s := range p.WriteTargets {
		if seen[s] {
			continue
		}
		seen[s] = true
		set = append(set, s)
	}
	SortStores(set)
	return set
}

// Writes reports whether s is one of the write targets.
func (p Placement) Writes(s ObjectStoreID) bool {
	for _, t := range p.WriteTargets {
		if t == s {
			return true
		}
	}
	return false
}

// SameWriteSet reports whether both placements write to the same stores.
func (p Placement) SameWriteSet(other Placement) bool {
	a, b := p.WriteSet(), other.WriteSet()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both placements have the same write set and the same
// read assignment.
func (p Placement) Equal(other Placement) bool {
	if !p.SameWriteSet(other) || len(p.ReadTargets) != len(other.ReadTargets) {
		return false
	}
	for r, s := range p.ReadTargets {
		if o, ok := other.ReadTargets[r]; !ok || o != s {
			return false
		}
	}
	return true
}

// IsEmpty returns true if the placement writes nowhere.
func (p Placement) IsEmpty() bool {
	return len(p.WriteTargets) == 0
}

// Label returns a human-readable label for this placement.
func (p Placement) Label() string {
	set := p.WriteSet()
	names := make([]string, len(set))
	for i, s := range set {
		names[i] = string(s)
	}
	return strings.Join(names, " + ")
}

// Clone returns a deep copy, so engine state never aliases caller slices.
func (p Placement) Clone() Placement {
	c := Placement{WriteTargets: append([]ObjectStoreID(nil), p.WriteTargets...)}
	if p.ReadTargets != nil {
		c.ReadTargets = make(map[Region]ObjectStoreID, len(p.ReadTargets))
		for r, s := range p.ReadTargets {
			c.ReadTargets[r] = s
		}
	}
	return c
}
