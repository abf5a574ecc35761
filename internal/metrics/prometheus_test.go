package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prommodel "github.com/prometheus/common/model"

	"github.com/guimove/placefit/internal/model"
)

// fakeAPI answers instant queries by matching a fragment of the PromQL text.
type fakeAPI struct {
	promv1.API

	mu      sync.Mutex
	results map[string]prommodel.Value
	err     error
	queries []string
}

func (f *fakeAPI) Query(_ context.Context, query string, _ time.Time, _ ...promv1.Option) (prommodel.Value, promv1.Warnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, nil, f.err
	}
	for fragment, v := range f.results {
		if strings.Contains(query, fragment) {
			return v, nil, nil
		}
	}
	return prommodel.Vector{}, nil, nil
}

func sample(value float64, labels ...string) *prommodel.Sample {
	m := prommodel.Metric{}
	for i := 0; i+1 < len(labels); i += 2 {
		m[prommodel.LabelName(labels[i])] = prommodel.LabelValue(labels[i+1])
	}
	return &prommodel.Sample{Metric: m, Value: prommodel.SampleValue(value)}
}

func TestPrometheusCollector_Collect(t *testing.T) {
	api := &fakeAPI{results: map[string]prommodel.Value{
		"objectstore_stored_bytes": prommodel.Vector{
			sample(4096, "workload", "photos"),
			sample(100, "workload", "logs"),
		},
		"objectstore_objects": prommodel.Vector{
			sample(4, "workload", "photos"),
		},
		`operation="put"`: prommodel.Vector{
			sample(10, "workload", "photos", "region", "us-east-1"),
			sample(5, "workload", "photos", "region", "eu-west-1"),
		},
		`operation="get"`: prommodel.Vector{
			sample(50, "workload", "photos", "region", "eu-west-1"),
			sample(0, "workload", "photos", "region", "us-east-1"),
		},
		`direction="egress"`: prommodel.Vector{
			sample(2048, "workload", "photos", "region", "eu-west-1"),
			sample(1, "region", "eu-west-1"),
		},
	}}
	c := newPrometheusCollector(api, WithTimeout(time.Second))

	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	set, err := c.Collect(context.Background(), CollectOptions{
		End:               end,
		Window:            30 * 24 * time.Hour,
		ExcludeWorkloads:  []string{"logs"},
		DefaultObjectSize: 1 << 20,
	})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if !set.CollectedAt.Equal(end) || set.Window != 30*24*time.Hour {
		t.Errorf("unexpected set metadata: %v %v", set.CollectedAt, set.Window)
	}
	if len(set.Workloads) != 1 {
		t.Fatalf("expected 1 workload, got %d", len(set.Workloads))
	}

	w := set.Workloads[0]
	if w.ID != "photos" || w.Workload.Size != 4096 || w.Workload.Puts != 15 {
		t.Errorf("unexpected workload: %+v", w)
	}
	if w.ObjectCount != 4 || w.ObjectSize != 1024 {
		t.Errorf("object count/size = %d/%v, want 4/1024", w.ObjectCount, w.ObjectSize)
	}
	if got := w.Workload.Gets[model.Region("aws-eu-west-1")]; got != 50 {
		t.Errorf("gets[aws-eu-west-1] = %v, want 50", got)
	}
	if _, ok := w.Workload.Gets[model.Region("aws-us-east-1")]; ok {
		t.Error("zero samples should not create a region entry")
	}
	if got := w.Workload.Egress[model.Region("aws-eu-west-1")]; got != 2048 {
		t.Errorf("egress[aws-eu-west-1] = %v, want 2048", got)
	}

	for _, q := range api.queries {
		if strings.Contains(q, "[30d]") {
			return
		}
	}
	t.Error("expected queries over a 30d window")
}

func TestPrometheusCollector_NoData(t *testing.T) {
	c := newPrometheusCollector(&fakeAPI{err: errors.New("connection refused")})

	_, err := c.Collect(context.Background(), CollectOptions{Window: time.Hour})
	if !errors.Is(err, ErrNoMetricsFound) {
		t.Fatalf("expected ErrNoMetricsFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected query errors in message, got %v", err)
	}
}

func TestPrometheusCollector_InvalidWindow(t *testing.T) {
	c := newPrometheusCollector(&fakeAPI{})
	if _, err := c.Collect(context.Background(), CollectOptions{}); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestPrometheusCollector_Ping(t *testing.T) {
	api := &fakeAPI{results: map[string]prommodel.Value{
		"thanos_store_nodes_total": prommodel.Vector{sample(3)},
	}}
	c := newPrometheusCollector(api)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.BackendType() != "thanos" {
		t.Errorf("BackendType() = %q, want thanos", c.BackendType())
	}

	down := newPrometheusCollector(&fakeAPI{err: errors.New("dial tcp")})
	if err := down.Ping(context.Background()); !errors.Is(err, ErrPrometheusUnreachable) {
		t.Errorf("expected ErrPrometheusUnreachable, got %v", err)
	}
}

func TestBuildWorkloadSet_DerivesObjectCount(t *testing.T) {
	data := map[string]prommodel.Value{
		"size": prommodel.Vector{sample(10<<20, "workload", "backups")},
	}
	set, err := buildWorkloadSet(data, CollectOptions{DefaultObjectSize: 1 << 20}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w := set.Workloads[0]; w.ObjectCount != 10 || w.ObjectSize != 1<<20 {
		t.Errorf("object count/size = %d/%v, want 10/1MiB", w.ObjectCount, w.ObjectSize)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, ""},
		{30 * 24 * time.Hour, "30d"},
		{36 * time.Hour, "36h"},
		{15 * time.Minute, "15m"},
		{45 * time.Second, "45s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
