package config

import (
	"fmt"
	"os"
	"time"

	"github.com/guimove/placefit/internal/model"
	"github.com/guimove/placefit/internal/pricing"
)

// Config is the top-level configuration for PlaceFit.
type Config struct {
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes"`
	Collection CollectionConfig `mapstructure:"collection"`
	Migration  MigrationConfig  `mapstructure:"migration"`
	Estimate   EstimateConfig   `mapstructure:"estimate"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
}

type PricingConfig struct {
	NetworkFile  string   `mapstructure:"network_file"`
	StorageFile  string   `mapstructure:"storage_file"`
	Regions      []string `mapstructure:"regions"` // empty = every region of the network table
	Stores       []string `mapstructure:"stores"`  // empty = every store in a selected region
	BytesPerUnit float64  `mapstructure:"bytes_per_unit"`

	// AWS price list fetches
	AWSRegion string        `mapstructure:"aws_region"`
	CacheDir  string        `mapstructure:"cache_dir"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type PrometheusConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type KubernetesConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Kubeconfig         string `mapstructure:"kubeconfig"`
	Context            string `mapstructure:"context"`
	DiscoveryNamespace string `mapstructure:"discovery_namespace"` // empty = all namespaces
}

type CollectionConfig struct {
	Window            time.Duration `mapstructure:"window"`
	ExcludeWorkloads  []string      `mapstructure:"exclude_workloads"`
	MinObjectSize     float64       `mapstructure:"min_object_size"`
	DefaultObjectSize float64       `mapstructure:"default_object_size"`
}

type MigrationConfig struct {
	ObjectCount int64   `mapstructure:"object_count"`
	ObjectSize  float64 `mapstructure:"object_size"`
}

type EstimateConfig struct {
	Parallelism int `mapstructure:"parallelism"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	TopN   int    `mapstructure:"top_n"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Pricing: PricingConfig{
			NetworkFile:  "pricing/network_cost.csv",
			StorageFile:  "pricing/storage_pricing.csv",
			BytesPerUnit: pricing.BytesPerGiB,
			AWSRegion:    detectRegion(),
			CacheTTL:     24 * time.Hour,
		},
		Prometheus: PrometheusConfig{
			Timeout: 60 * time.Second,
		},
		Collection: CollectionConfig{
			Window:            30 * 24 * time.Hour,
			DefaultObjectSize: 1 << 20,
		},
		Migration: MigrationConfig{
			ObjectCount: 1,
			ObjectSize:  1 << 20,
		},
		Estimate: EstimateConfig{
			Parallelism: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Output: OutputConfig{
			Format: "table",
			TopN:   5,
		},
	}
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	if c.Pricing.BytesPerUnit < 0 {
		return fmt.Errorf("bytes_per_unit must be non-negative, got %v", c.Pricing.BytesPerUnit)
	}
	if c.Pricing.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be non-negative, got %v", c.Pricing.CacheTTL)
	}
	if c.Collection.Window <= 0 {
		return fmt.Errorf("collection window must be positive, got %v", c.Collection.Window)
	}
	if c.Collection.DefaultObjectSize <= 0 {
		return fmt.Errorf("default_object_size must be positive, got %v", c.Collection.DefaultObjectSize)
	}
	if c.Migration.ObjectCount <= 0 {
		return fmt.Errorf("migration object_count must be positive, got %d", c.Migration.ObjectCount)
	}
	if c.Migration.ObjectSize <= 0 {
		return fmt.Errorf("migration object_size must be positive, got %v", c.Migration.ObjectSize)
	}
	validFormats := map[string]bool{"table": true, "json": true, "markdown": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output format must be table, json, or markdown, got %q", c.Output.Format)
	}
	validLogFormats := map[string]bool{"console": true, "json": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("log format must be console or json, got %q", c.Logging.Format)
	}
	if c.Output.TopN <= 0 {
		c.Output.TopN = 5
	}
	if c.Estimate.Parallelism <= 0 {
		c.Estimate.Parallelism = 8
	}
	return nil
}

// LoadOptions turns the pricing section into catalog load options.
func (p PricingConfig) LoadOptions() pricing.LoadOptions {
	opts := pricing.LoadOptions{
		NetworkFile:  p.NetworkFile,
		StorageFile:  p.StorageFile,
		BytesPerUnit: p.BytesPerUnit,
	}
	for _, r := range p.Regions {
		opts.Regions = append(opts.Regions, model.Region(r))
	}
	for _, s := range p.Stores {
		opts.Stores = append(opts.Stores, model.ObjectStoreID(s))
	}
	return opts
}

// detectRegion checks environment variables for the AWS region.
func detectRegion() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	if r := os.Getenv("AWS_DEFAULT_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}
