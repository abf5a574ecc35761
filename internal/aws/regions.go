package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/guimove/placefit/internal/model"
)

// Vendor is the vendor prefix of AWS regions and stores.
const Vendor = "aws"

// ListRegions returns the sorted names of the regions enabled for the account.
func (p *AWSProvider) ListRegions(ctx context.Context) ([]string, error) {
	output, err := p.ec2Client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describing regions: %w", err)
	}

	var names []string
	for _, r := range output.Regions {
		if r.RegionName == nil {
			continue
		}
		if r.OptInStatus != nil && *r.OptInStatus == "not-opted-in" {
			continue
		}
		names = append(names, *r.RegionName)
	}
	sort.Strings(names)
	return names, nil
}

// ToRegions converts AWS region names to application regions.
func ToRegions(names []string) []model.Region {
	regions := make([]model.Region, len(names))
	for i, n := range names {
		regions[i] = model.NewRegion(Vendor, n)
	}
	return regions
}
