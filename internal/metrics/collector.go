package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/guimove/placefit/internal/model"
)

var (
	ErrPrometheusUnreachable = errors.New("prometheus endpoint unreachable")
	ErrNoMetricsFound        = errors.New("no object store metrics found for the specified criteria")
)

// WorkloadCollector abstracts the collection of object store traffic per workload.
type WorkloadCollector interface {
	// Collect gathers one billing period of traffic for every workload.
	Collect(ctx context.Context, opts CollectOptions) (*model.WorkloadSet, error)

	// Ping validates connectivity to the metrics backend.
	Ping(ctx context.Context) error

	// BackendType returns the detected backend type.
	BackendType() string
}

// CollectOptions configures metrics collection.
type CollectOptions struct {
	End               time.Time     // Zero = now
	Window            time.Duration // Length of the billing period
	Vendor            string        // Vendor prefix of region labels, default "aws"
	ExcludeWorkloads  []string      // Workloads to skip
	MinObjectSize     float64       // Floor for derived object sizes
	DefaultObjectSize float64       // Used when the object count is unknown
}

func (o CollectOptions) vendor() string {
	if o.Vendor == "" {
		return "aws"
	}
	return o.Vendor
}
