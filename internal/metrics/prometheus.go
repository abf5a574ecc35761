package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prommodel "github.com/prometheus/common/model"

	"github.com/guimove/placefit/internal/model"
)

// PrometheusCollector collects object store traffic from Prometheus, Thanos, or Cortex.
type PrometheusCollector struct {
	api     promv1.API
	backend string
	timeout time.Duration
}

// PrometheusOption configures the Prometheus collector.
type PrometheusOption func(*PrometheusCollector)

// WithTimeout sets the query timeout.
func WithTimeout(d time.Duration) PrometheusOption {
	return func(c *PrometheusCollector) { c.timeout = d }
}

// NewPrometheusCollector creates a collector connected to the given endpoint.
func NewPrometheusCollector(endpoint string, opts ...PrometheusOption) (*PrometheusCollector, error) {
	client, err := promapi.NewClient(promapi.Config{
		Address: endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating prometheus client: %w", err)
	}
	return newPrometheusCollector(promv1.NewAPI(client), opts...), nil
}

func newPrometheusCollector(api promv1.API, opts ...PrometheusOption) *PrometheusCollector {
	c := &PrometheusCollector{
		api:     api,
		backend: "prometheus",
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks connectivity and detects the backend type.
func (c *PrometheusCollector) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, _, err := c.api.Query(ctx, "up", time.Now()); err != nil {
		return fmt.Errorf("%w: %v", ErrPrometheusUnreachable, err)
	}

	c.detectBackend(ctx)
	return nil
}

// BackendType returns the detected backend type.
func (c *PrometheusCollector) BackendType() string {
	return c.backend
}

// detectBackend tries to identify Thanos or Cortex.
func (c *PrometheusCollector) detectBackend(ctx context.Context) {
	result, _, err := c.api.Query(ctx, "thanos_store_nodes_total", time.Now())
	if err == nil && result != nil && result.String() != "" {
		c.backend = "thanos"
		return
	}

	result, _, err = c.api.Query(ctx, "cortex_ingester_active_series", time.Now())
	if err == nil && result != nil && result.String() != "" {
		c.backend = "cortex"
	}
}

// Collect gathers one billing period of object store traffic per workload.
func (c *PrometheusCollector) Collect(ctx context.Context, opts CollectOptions) (*model.WorkloadSet, error) {
	if opts.Window <= 0 {
		return nil, fmt.Errorf("collection window must be positive, got %v", opts.Window)
	}
	end := opts.End
	if end.IsZero() {
		end = time.Now()
	}
	window := formatDuration(opts.Window)

	type queryResult struct {
		name string
		data prommodel.Value
		err  error
	}

	queries := map[string]string{
		"size":    queryStoredBytes(window),
		"objects": queryObjectCount(window),
		"puts":    queryRequests("put", window),
		"gets":    queryRequests("get", window),
		"ingress": queryTransfer("ingress", window),
		"egress":  queryTransfer("egress", window),
	}

	results := make(chan queryResult, len(queries))
	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for name, q := range queries {
		go func(n, query string) {
			data, _, err := c.api.Query(queryCtx, query, end)
			results <- queryResult{name: n, data: data, err: err}
		}(name, q)
	}

	collected := make(map[string]prommodel.Value)
	var errs []string
	for i := 0; i < len(queries); i++ {
		r := <-results
		if r.err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", r.name, r.err))
			continue
		}
		collected[r.name] = r.data
	}
	sort.Strings(errs)

	set, err := buildWorkloadSet(collected, opts, errs)
	if err != nil {
		return nil, err
	}
	set.CollectedAt = end
	return set, nil
}

// buildWorkloadSet assembles the workload profiles from query results.
func buildWorkloadSet(data map[string]prommodel.Value, opts CollectOptions, queryErrors []string) (*model.WorkloadSet, error) {
	vendor := opts.vendor()

	size := extractTotals(data["size"])
	objects := extractTotals(data["objects"])
	puts := extractTotals(data["puts"])
	gets := extractPerRegion(data["gets"], vendor)
	ingress := extractPerRegion(data["ingress"], vendor)
	egress := extractPerRegion(data["egress"], vendor)

	ids := make(map[string]bool)
	for _, m := range []map[string]float64{size, puts} {
		for id := range m {
			ids[id] = true
		}
	}
	for _, m := range []map[string]map[model.Region]float64{gets, ingress, egress} {
		for id := range m {
			ids[id] = true
		}
	}

	if len(ids) == 0 {
		errDetail := ""
		if len(queryErrors) > 0 {
			errDetail = "; query errors: " + strings.Join(queryErrors, ", ")
		}
		return nil, fmt.Errorf("%w%s", ErrNoMetricsFound, errDetail)
	}

	exclude := make(map[string]bool)
	for _, id := range opts.ExcludeWorkloads {
		exclude[id] = true
	}

	set := &model.WorkloadSet{Window: opts.Window}
	for id := range ids {
		if exclude[id] {
			continue
		}
		spec := model.WorkloadSpec{
			ID: id,
			Workload: model.Workload{
				Size:    size[id],
				Puts:    puts[id],
				Gets:    gets[id],
				Ingress: ingress[id],
				Egress:  egress[id],
			},
			ObjectSize: opts.DefaultObjectSize,
		}

		// Derive the mean object size when the object count is exported
		if n := objects[id]; n >= 1 && size[id] > 0 {
			spec.ObjectCount = int64(n)
			spec.ObjectSize = max(size[id]/n, opts.MinObjectSize)
		} else if spec.ObjectSize > 0 && size[id] > 0 {
			spec.ObjectCount = max(int64(size[id]/spec.ObjectSize), 1)
		}

		set.Workloads = append(set.Workloads, spec)
	}

	sort.Slice(set.Workloads, func(i, j int) bool {
		return set.Workloads[i].ID < set.Workloads[j].ID
	})
	return set, nil
}

// extractTotals converts a Prometheus Value to a map of workload → float64.
func extractTotals(v prommodel.Value) map[string]float64 {
	result := make(map[string]float64)
	vec, ok := v.(prommodel.Vector)
	if !ok {
		return result
	}

	for _, sample := range vec {
		id := string(sample.Metric["workload"])
		if id == "" {
			continue
		}
		result[id] += float64(sample.Value)
	}
	return result
}

// extractPerRegion converts a Prometheus Value to a map of workload → region → float64.
func extractPerRegion(v prommodel.Value, vendor string) map[string]map[model.Region]float64 {
	result := make(map[string]map[model.Region]float64)
	vec, ok := v.(prommodel.Vector)
	if !ok {
		return result
	}

	for _, sample := range vec {
		id := string(sample.Metric["workload"])
		region := string(sample.Metric["region"])
		if id == "" || region == "" || sample.Value == 0 {
			continue
		}
		if result[id] == nil {
			result[id] = make(map[model.Region]float64)
		}
		result[id][model.NewRegion(vendor, region)] += float64(sample.Value)
	}
	return result
}

// formatDuration formats a time.Duration to a Prometheus-compatible duration string.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%dd", hours/24)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	minutes := int(d.Minutes())
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
