package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"

	"github.com/guimove/placefit/internal/pricing"
)

const (
	s3ServiceCode = "AmazonS3"
	s3StoreName   = "s3"

	// API request groups of the S3 price list
	s3WriteRequests = "S3-API-Tier1"
	s3ReadRequests  = "S3-API-Tier2"
)

// priceListProduct maps the price list document fields we need.
type priceListProduct struct {
	Product struct {
		ProductFamily string            `json:"productFamily"`
		Attributes    map[string]string `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				BeginRange   string            `json:"beginRange"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// FetchStoragePrices retrieves S3 storage and request prices for the given
// AWS regions. Only the first usage tier of each price is kept. Results are
// cached when the provider has a cache.
func (p *AWSProvider) FetchStoragePrices(ctx context.Context, regions []string) ([]pricing.StorageRecord, error) {
	sorted := append([]string(nil), regions...)
	sort.Strings(sorted)
	cacheKey := "s3-prices-" + strings.Join(sorted, "_")

	if p.cache != nil {
		var cached []pricing.StorageRecord
		if p.cache.Get(cacheKey, p.cacheTTL, &cached) {
			return cached, nil
		}
	}

	var records []pricing.StorageRecord
	for _, region := range sorted {
		recs, err := p.fetchRegion(ctx, region)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	if len(records) == 0 {
		return nil, ErrNoPrices
	}

	if p.cache != nil {
		_ = p.cache.Set(cacheKey, records)
	}
	return records, nil
}

func (p *AWSProvider) fetchRegion(ctx context.Context, region string) ([]pricing.StorageRecord, error) {
	var records []pricing.StorageRecord
	var nextToken *string

	for {
		output, err := p.pricingClient.GetProducts(ctx, &awspricing.GetProductsInput{
			ServiceCode:   aws.String(s3ServiceCode),
			FormatVersion: aws.String("aws_v1"),
			Filters: []pricingtypes.Filter{{
				Field: aws.String("regionCode"),
				Type:  pricingtypes.FilterTypeTermMatch,
				Value: aws.String(region),
			}},
			NextToken:  nextToken,
			MaxResults: aws.Int32(100),
		})
		if err != nil {
			return nil, fmt.Errorf("getting S3 prices for %s: %w", region, err)
		}

		for _, doc := range output.PriceList {
			recs, err := parsePriceListItem(doc, region)
			if err != nil {
				return nil, err
			}
			records = append(records, recs...)
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return records, nil
}

// parsePriceListItem converts one price list document into storage records.
// Products that are neither storage nor put/get requests yield nothing.
func parsePriceListItem(doc, region string) ([]pricing.StorageRecord, error) {
	var item priceListProduct
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return nil, fmt.Errorf("parsing price list item: %w", err)
	}

	attrs := item.Product.Attributes
	var group string
	switch item.Product.ProductFamily {
	case "Storage":
		group = pricing.GroupStorage
	case "API Request":
		switch attrs["group"] {
		case s3WriteRequests:
			group = pricing.GroupPutRequest
		case s3ReadRequests:
			group = pricing.GroupGetRequest
		default:
			return nil, nil
		}
	default:
		return nil, nil
	}

	tier := attrs["volumeType"]
	if tier == "" {
		tier = attrs["storageClass"]
	}
	if tier == "" {
		return nil, nil
	}

	var records []pricing.StorageRecord
	for _, term := range item.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			if dim.BeginRange != "" && dim.BeginRange != "0" {
				continue
			}
			usd, ok := dim.PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing price %q: %w", usd, err)
			}
			records = append(records, pricing.StorageRecord{
				Vendor:       Vendor,
				Region:       region,
				Name:         s3StoreName,
				Tier:         tier,
				Group:        group,
				PricePerUnit: price,
			})
		}
	}
	return records, nil
}
