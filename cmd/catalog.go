package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	awspkg "github.com/guimove/placefit/internal/aws"
	"github.com/guimove/placefit/internal/model"
	"github.com/guimove/placefit/internal/pricing"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List object store prices from the loaded price tables",
	RunE:  runCatalog,
}

var catalogFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch S3 prices from the AWS Price List API into a storage pricing CSV",
	RunE:  runCatalogFetch,
}

func init() {
	f := catalogCmd.Flags()
	f.String("sort-by", "storage", "sort by: storage, put, get, store")

	ff := catalogFetchCmd.Flags()
	ff.String("output", "", "storage pricing CSV to write (default: stdout)")
	ff.StringSlice("aws-regions", nil, "AWS regions to fetch (default: all enabled regions)")

	catalogCmd.AddCommand(catalogFetchCmd)
	rootCmd.AddCommand(catalogCmd)
}

type storeRow struct {
	id     model.ObjectStoreID
	prices pricing.StorePrices
}

func runCatalog(cmd *cobra.Command, args []string) error {
	_, catalog, err := loadModel()
	if err != nil {
		return err
	}

	var rows []storeRow
	for _, s := range catalog.Stores() {
		p, err := catalog.Store(s)
		if err != nil {
			return err
		}
		rows = append(rows, storeRow{id: s, prices: p})
	}

	sortBy, _ := cmd.Flags().GetString("sort-by")
	sortStoreRows(rows, sortBy)

	unit := cfg.Pricing.BytesPerUnit
	if unit <= 0 {
		unit = 1
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-44s %-20s %12s %12s %12s %10s %10s\n",
		"STORE", "REGION", "STORAGE/UNIT", "$/PUT", "$/GET", "PUT XFER", "GET XFER")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 126))
	for _, r := range rows {
		p := r.prices
		fmt.Fprintf(w, "%-44s %-20s %12.6f %12.8f %12.8f %10.6f %10.6f\n",
			r.id, p.Region, p.Storage*unit, p.Put, p.Get, p.PutTransfer*unit, p.GetTransfer*unit)
	}

	fmt.Fprintf(w, "\n%d stores across %d regions\n", len(rows), len(catalog.Regions()))
	return nil
}

func sortStoreRows(rows []storeRow, by string) {
	switch by {
	case "put":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].prices.Put < rows[j].prices.Put })
	case "get":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].prices.Get < rows[j].prices.Get })
	case "store":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
	default: // storage
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].prices.Storage < rows[j].prices.Storage })
	}
}

func runCatalogFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	provider, err := newAWSProvider(ctx)
	if err != nil {
		return err
	}

	regions, _ := cmd.Flags().GetStringSlice("aws-regions")
	if len(regions) == 0 {
		if regions, err = provider.ListRegions(ctx); err != nil {
			return err
		}
	}

	logger.Info("fetching S3 prices", zap.Int("regions", len(regions)))
	records, err := provider.FetchStoragePrices(ctx, regions)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := pricing.WriteStorageRecords(w, records); err != nil {
		return err
	}
	logger.Info("wrote storage prices", zap.Int("records", len(records)))
	return nil
}

// newAWSProvider builds the AWS provider with the configured price cache.
func newAWSProvider(ctx context.Context) (*awspkg.AWSProvider, error) {
	cacheDir := cfg.Pricing.CacheDir
	if cacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(dir, "placefit")
		}
	}
	return awspkg.NewAWSProvider(ctx, cfg.Pricing.AWSRegion, cacheDir, cfg.Pricing.CacheTTL)
}
