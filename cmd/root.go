package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/guimove/placefit/internal/config"
	"github.com/guimove/placefit/internal/cost"
	"github.com/guimove/placefit/internal/logging"
	"github.com/guimove/placefit/internal/pricing"
)

var (
	cfgFile string
	cfg     config.Config
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "placefit",
	Short: "Cost-aware data placement advisor for replicated object stores",
	Long: `PlaceFit prices where a dataset's replicas live across object stores and
regions, ranks candidate placements per workload, and decides online when
moving a workload to a cheaper placement pays for its migration.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return setupLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: placefit.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	// Global flags that map to config
	rootCmd.PersistentFlags().String("network-prices", "", "network cost CSV")
	rootCmd.PersistentFlags().String("storage-prices", "", "storage pricing CSV")
	rootCmd.PersistentFlags().StringSlice("regions", nil, "application regions to load (default: all)")
	rootCmd.PersistentFlags().StringSlice("stores", nil, "object stores to load (default: all in the selected regions)")
	rootCmd.PersistentFlags().String("aws-region", "", "AWS region for API calls")
	rootCmd.PersistentFlags().String("prometheus-url", "", "Prometheus/Thanos endpoint URL")
	rootCmd.PersistentFlags().String("kubeconfig", "", "path to kubeconfig file")
	rootCmd.PersistentFlags().String("kube-context", "", "Kubernetes context name")
	rootCmd.PersistentFlags().BoolP("discover", "d", false, "auto-discover Prometheus endpoint from Kubernetes")
	rootCmd.PersistentFlags().String("discovery-namespace", "", "limit service discovery to a namespace")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("pricing.network_file", rootCmd.PersistentFlags().Lookup("network-prices"))
	_ = viper.BindPFlag("pricing.storage_file", rootCmd.PersistentFlags().Lookup("storage-prices"))
	_ = viper.BindPFlag("pricing.regions", rootCmd.PersistentFlags().Lookup("regions"))
	_ = viper.BindPFlag("pricing.stores", rootCmd.PersistentFlags().Lookup("stores"))
	_ = viper.BindPFlag("pricing.aws_region", rootCmd.PersistentFlags().Lookup("aws-region"))
	_ = viper.BindPFlag("prometheus.url", rootCmd.PersistentFlags().Lookup("prometheus-url"))
	_ = viper.BindPFlag("kubernetes.kubeconfig", rootCmd.PersistentFlags().Lookup("kubeconfig"))
	_ = viper.BindPFlag("kubernetes.context", rootCmd.PersistentFlags().Lookup("kube-context"))
	_ = viper.BindPFlag("kubernetes.enabled", rootCmd.PersistentFlags().Lookup("discover"))
	_ = viper.BindPFlag("kubernetes.discovery_namespace", rootCmd.PersistentFlags().Lookup("discovery-namespace"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func loadConfig() error {
	// Start with defaults
	cfg = config.Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("placefit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.placefit")
	}

	// Unset flags must not shadow the defaults
	viper.SetDefault("pricing.network_file", cfg.Pricing.NetworkFile)
	viper.SetDefault("pricing.storage_file", cfg.Pricing.StorageFile)
	viper.SetDefault("pricing.aws_region", cfg.Pricing.AWSRegion)
	viper.SetDefault("logging.format", cfg.Logging.Format)

	// Environment variable overrides
	viper.SetEnvPrefix("PLACEFIT")
	viper.AutomaticEnv()

	// Read config file (not an error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return cfg.Validate()
}

func setupLogger() error {
	lc := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if verbose {
		lc.Level = "debug"
	}
	l, err := logging.New(lc)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger = l
	return nil
}

// loadModel loads the price tables and builds the cost model.
func loadModel() (*cost.Model, *pricing.Catalog, error) {
	catalog, err := pricing.LoadCatalog(cfg.Pricing.LoadOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("loading price catalog: %w", err)
	}
	logger.Debug("loaded price catalog",
		zap.Int("regions", len(catalog.Regions())),
		zap.Int("stores", len(catalog.Stores())))
	return cost.NewModel(catalog), catalog, nil
}
