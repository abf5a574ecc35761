package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"

	"github.com/guimove/placefit/internal/pricing"
)

const credentialCheckTimeout = 3 * time.Second

var (
	ErrAWSCredentials = errors.New("AWS credentials not found; set AWS_PROFILE, run 'aws sso login', or configure ~/.aws/credentials")
	ErrNoPrices       = errors.New("no S3 prices returned for the requested regions")
)

// PriceListProvider abstracts the retrieval of the AWS region universe and
// of S3 prices in the storage pricing table format.
type PriceListProvider interface {
	ListRegions(ctx context.Context) ([]string, error)
	FetchStoragePrices(ctx context.Context, regions []string) ([]pricing.StorageRecord, error)
	Region() string
}

// ec2API is a minimal interface for the EC2 calls we need.
type ec2API interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// pricingAPI is a minimal interface for the Pricing API calls we need.
type pricingAPI interface {
	GetProducts(ctx context.Context, params *awspricing.GetProductsInput, optFns ...func(*awspricing.Options)) (*awspricing.GetProductsOutput, error)
}

// AWSProvider implements PriceListProvider using the AWS SDK.
type AWSProvider struct {
	ec2Client     ec2API
	pricingClient pricingAPI
	region        string
	cache         *FileCache
	cacheTTL      time.Duration
}

// NewAWSProvider creates a provider using the default AWS SDK config chain.
// IMDS (EC2 metadata) is disabled to avoid long timeouts when running locally.
// On EC2, use environment variables or instance profile via AWS_PROFILE.
func NewAWSProvider(ctx context.Context, region, cacheDir string, cacheTTL time.Duration) (*AWSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithEC2IMDSClientEnableState(imds.ClientDisabled),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAWSCredentials, err)
	}

	// Verify credentials are available before making any API calls
	credCtx, cancel := context.WithTimeout(ctx, credentialCheckTimeout)
	defer cancel()
	if _, err := cfg.Credentials.Retrieve(credCtx); err != nil {
		return nil, ErrAWSCredentials
	}

	// Pricing API is only available in us-east-1
	pricingCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithEC2IMDSClientEnableState(imds.ClientDisabled),
	)
	if err != nil {
		return nil, fmt.Errorf("loading pricing config: %w", err)
	}

	return newProvider(ec2.NewFromConfig(cfg), awspricing.NewFromConfig(pricingCfg), region, cacheDir, cacheTTL), nil
}

func newProvider(ec2Client ec2API, pricingClient pricingAPI, region, cacheDir string, cacheTTL time.Duration) *AWSProvider {
	var cache *FileCache
	if cacheDir != "" {
		cache = NewFileCache(cacheDir)
	}
	return &AWSProvider{
		ec2Client:     ec2Client,
		pricingClient: pricingClient,
		region:        region,
		cache:         cache,
		cacheTTL:      cacheTTL,
	}
}

// Region returns the AWS region.
func (p *AWSProvider) Region() string {
	return p.region
}
