package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/guimove/placefit/internal/model"
)

// StaticCollector loads workloads from a JSON file.
// Used for testing, offline analysis, and CI pipelines.
type StaticCollector struct {
	filePath string
	set      *model.WorkloadSet
}

// NewStaticCollector creates a collector that reads from a JSON file.
func NewStaticCollector(filePath string) *StaticCollector {
	return &StaticCollector{filePath: filePath}
}

// NewStaticCollectorFromSet creates a collector from a pre-built WorkloadSet.
func NewStaticCollectorFromSet(set *model.WorkloadSet) *StaticCollector {
	return &StaticCollector{set: set}
}

// Ping checks that the file exists.
func (s *StaticCollector) Ping(ctx context.Context) error {
	if s.set != nil {
		return nil
	}
	if _, err := os.Stat(s.filePath); err != nil {
		return fmt.Errorf("static workloads file: %w", err)
	}
	return nil
}

// BackendType returns "static".
func (s *StaticCollector) BackendType() string {
	return "static"
}

// Collect loads the workloads from the JSON file, dropping excluded ones.
func (s *StaticCollector) Collect(ctx context.Context, opts CollectOptions) (*model.WorkloadSet, error) {
	set := s.set
	if set == nil {
		data, err := os.ReadFile(s.filePath)
		if err != nil {
			return nil, fmt.Errorf("reading static workloads file: %w", err)
		}
		set = &model.WorkloadSet{}
		if err := json.Unmarshal(data, set); err != nil {
			return nil, fmt.Errorf("parsing static workloads file: %w", err)
		}
	}

	exclude := make(map[string]bool)
	for _, id := range opts.ExcludeWorkloads {
		exclude[id] = true
	}
	out := &model.WorkloadSet{CollectedAt: set.CollectedAt, Window: set.Window}
	for _, w := range set.Workloads {
		if exclude[w.ID] {
			continue
		}
		if w.ObjectSize == 0 {
			w.ObjectSize = opts.DefaultObjectSize
		}
		out.Workloads = append(out.Workloads, w)
	}

	if len(out.Workloads) == 0 {
		return nil, ErrNoMetricsFound
	}
	return out, nil
}
