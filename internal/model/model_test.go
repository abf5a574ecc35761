package model

import (
	"testing"
)

func TestWorkload_Add(t *testing.T) {
	a := Workload{
		Size: 100,
		Puts: 10,
		Gets: map[Region]float64{"aws-us-east-1": 5},
	}
	b := Workload{
		Size:   50,
		Gets:   map[Region]float64{"aws-us-east-1": 1, "aws-eu-west-1": 2},
		Egress: map[Region]float64{"aws-eu-west-1": 300},
	}
	result := a.Add(b)

	if result.Size != 150 {
		t.Errorf("Size: got %v, want 150", result.Size)
	}
	if result.Puts != 10 {
		t.Errorf("Puts: got %v, want 10", result.Puts)
	}
	if result.Gets["aws-us-east-1"] != 6 || result.Gets["aws-eu-west-1"] != 2 {
		t.Errorf("Gets: got %v", result.Gets)
	}
	if result.Egress["aws-eu-west-1"] != 300 {
		t.Errorf("Egress: got %v", result.Egress)
	}
	if result.Ingress != nil {
		t.Errorf("Ingress: expected nil, got %v", result.Ingress)
	}
}

func TestWorkload_Scale(t *testing.T) {
	w := Workload{Size: 2, Puts: 3, Ingress: map[Region]float64{"aws-us-east-1": 4}}
	s := w.Scale(10)
	if s.Size != 20 || s.Puts != 30 || s.Ingress["aws-us-east-1"] != 40 {
		t.Errorf("unexpected scaled workload: %+v", s)
	}
	if w.Ingress["aws-us-east-1"] != 4 {
		t.Error("Scale must not mutate the receiver")
	}
}

func TestWorkload_Regions(t *testing.T) {
	w := Workload{
		Gets:    map[Region]float64{"c": 1},
		Ingress: map[Region]float64{"a": 1},
		Egress:  map[Region]float64{"b": 1, "c": 2},
	}
	got := w.Regions()
	want := []Region{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Regions()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWorkload_HasDemand(t *testing.T) {
	w := Workload{
		Gets:    map[Region]float64{"a": 1},
		Ingress: map[Region]float64{"b": 100},
		Egress:  map[Region]float64{"c": 5},
	}
	tests := []struct {
		region Region
		want   bool
	}{
		{"a", true},
		{"b", false}, // writes only
		{"c", true},
		{"d", false},
	}
	for _, tt := range tests {
		if got := w.HasDemand(tt.region); got != tt.want {
			t.Errorf("HasDemand(%s) = %v, want %v", tt.region, got, tt.want)
		}
	}
}

func TestWorkload_IsZero(t *testing.T) {
	if !(Workload{}).IsZero() {
		t.Error("empty workload should be zero")
	}
	if !(Workload{Gets: map[Region]float64{"a": 0}}).IsZero() {
		t.Error("explicit zero entries should still be zero")
	}
	if (Workload{Egress: map[Region]float64{"a": 1}}).IsZero() {
		t.Error("workload with egress should not be zero")
	}
}

func TestPlacement_WriteSet(t *testing.T) {
	p := Placement{WriteTargets: []ObjectStoreID{"b", "a", "b"}}
	set := p.WriteSet()
	if len(set) != 2 || set[0] != "a" || set[1] != "b" {
		t.Errorf("WriteSet() = %v, want [a b]", set)
	}
}

func TestPlacement_SameWriteSet(t *testing.T) {
	a := Placement{WriteTargets: []ObjectStoreID{"x", "y"}}
	b := Placement{WriteTargets: []ObjectStoreID{"y", "x"}}
	c := Placement{WriteTargets: []ObjectStoreID{"x"}}

	if !a.SameWriteSet(b) {
		t.Error("order of write targets should not matter")
	}
	if a.SameWriteSet(c) {
		t.Error("different write sets reported as equal")
	}
}

func TestPlacement_Equal(t *testing.T) {
	base := Placement{
		WriteTargets: []ObjectStoreID{"x"},
		ReadTargets:  map[Region]ObjectStoreID{"r1": "x"},
	}
	tests := []struct {
		name  string
		other Placement
		want  bool
	}{
		{"identical", base.Clone(), true},
		{"different read target", Placement{
			WriteTargets: []ObjectStoreID{"x"},
			ReadTargets:  map[Region]ObjectStoreID{"r1": "y"},
		}, false},
		{"missing read target", Placement{WriteTargets: []ObjectStoreID{"x"}}, false},
		{"different writes", Placement{
			WriteTargets: []ObjectStoreID{"y"},
			ReadTargets:  map[Region]ObjectStoreID{"r1": "x"},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlacement_CloneIsDeep(t *testing.T) {
	p := Placement{
		WriteTargets: []ObjectStoreID{"x"},
		ReadTargets:  map[Region]ObjectStoreID{"r1": "x"},
	}
	c := p.Clone()
	c.WriteTargets[0] = "y"
	c.ReadTargets["r1"] = "y"
	if p.WriteTargets[0] != "x" || p.ReadTargets["r1"] != "x" {
		t.Errorf("Clone shares storage with the original: %+v", p)
	}
}

func TestPlacement_Label(t *testing.T) {
	p := Placement{WriteTargets: []ObjectStoreID{"b", "a"}}
	if got := p.Label(); got != "a + b" {
		t.Errorf("Label() = %q, want %q", got, "a + b")
	}
}

func TestNewObjectStoreID(t *testing.T) {
	got := NewObjectStoreID("aws", "us-east-1", "s3", "General Purpose")
	if got != "aws-us-east-1-s3-General Purpose" {
		t.Errorf("got %q", got)
	}
	if r := NewRegion("gcp", "europe-west1"); r != "gcp-europe-west1" {
		t.Errorf("got %q", r)
	}
}

func TestCostBreakdown_Total(t *testing.T) {
	b := CostBreakdown{Storage: 1, Put: 2, Get: 3, Ingress: 4, Egress: 5}
	if b.Total() != 15 {
		t.Errorf("Total() = %v, want 15", b.Total())
	}
	if sum := b.Add(b); sum.Total() != 30 {
		t.Errorf("Add().Total() = %v, want 30", sum.Total())
	}
}
