package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/guimove/placefit/internal/migration"
	"github.com/guimove/placefit/internal/model"
	"github.com/guimove/placefit/internal/pricing"
)

func TestWriteMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := migration.NewMetrics(registry)
	m.DecisionsTotal.WithLabelValues("migrated").Add(2)

	var buf bytes.Buffer
	if err := writeMetrics(registry, "-", &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `placefit_migration_decisions_total{outcome="migrated"} 2`) {
		t.Errorf("unexpected exposition:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := writeMetrics(registry, path, &buf); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# TYPE placefit_migration_decisions_total counter") {
		t.Errorf("unexpected file contents:\n%s", data)
	}
}

func TestReadCandidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	doc := `[{"write_targets": ["aws-us-east-1-s3-std"], "read_targets": {"aws-us-east-1": "aws-us-east-1-s3-std"}}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	candidates, err := readCandidates(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 || candidates[0].ReadTargets["aws-us-east-1"] != "aws-us-east-1-s3-std" {
		t.Errorf("unexpected candidates: %+v", candidates)
	}

	if _, err := readCandidates(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSortStoreRows(t *testing.T) {
	rows := []storeRow{
		{id: "b", prices: pricing.StorePrices{Storage: 1, Put: 3, Get: 2}},
		{id: "a", prices: pricing.StorePrices{Storage: 3, Put: 1, Get: 3}},
		{id: "c", prices: pricing.StorePrices{Storage: 2, Put: 2, Get: 1}},
	}
	tests := []struct {
		by   string
		want []model.ObjectStoreID
	}{
		{"storage", []model.ObjectStoreID{"b", "c", "a"}},
		{"put", []model.ObjectStoreID{"a", "c", "b"}},
		{"get", []model.ObjectStoreID{"c", "b", "a"}},
		{"store", []model.ObjectStoreID{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.by, func(t *testing.T) {
			sorted := append([]storeRow(nil), rows...)
			sortStoreRows(sorted, tt.by)
			for i, id := range tt.want {
				if sorted[i].id != id {
					t.Fatalf("position %d = %s, want %s", i, sorted[i].id, id)
				}
			}
		})
	}
}
