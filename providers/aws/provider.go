// Package aws collects EC2 instance and EBS volume telemetry for the
// waste estimation engine.
package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// EC2API is the slice of the EC2 client the provider uses.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
}

// CloudWatchAPI is the slice of the CloudWatch client the provider uses.
type CloudWatchAPI interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// Provider implements providers.Provider over AWS SDK v2.
type Provider struct {
	ec2Client EC2API
	cwClient  CloudWatchAPI
	region    string
}

// NewProvider creates a provider using the default AWS credential chain.
func NewProvider(ctx context.Context, region string) (*Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Provider{
		ec2Client: ec2.NewFromConfig(cfg),
		cwClient:  cloudwatch.NewFromConfig(cfg),
		region:    region,
	}, nil
}

// NewProviderWithClients creates a provider over injected clients.
func NewProviderWithClients(ec2Client EC2API, cwClient CloudWatchAPI, region string) *Provider {
	return &Provider{ec2Client: ec2Client, cwClient: cwClient, region: region}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "aws"
}

// Region returns the AWS region
func (p *Provider) Region() string {
	return p.region
}

// ListComputeInstances discovers running EC2 instances. Stopped instances
// accrue no compute charge, so they are not scan candidates.
func (p *Provider) ListComputeInstances(ctx context.Context) ([]types.ResourceDescriptor, error) {
	var descriptors []types.ResourceDescriptor

	paginator := ec2.NewDescribeInstancesPaginator(p.ec2Client, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list EC2 instances: %w", err)
		}
		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				descriptors = append(descriptors, p.convertInstance(instance))
			}
		}
	}

	return descriptors, nil
}

// ListBlockVolumes discovers EBS volumes, attached or not.
func (p *Provider) ListBlockVolumes(ctx context.Context) ([]types.ResourceDescriptor, error) {
	var descriptors []types.ResourceDescriptor

	paginator := ec2.NewDescribeVolumesPaginator(p.ec2Client, &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list EBS volumes: %w", err)
		}
		for _, volume := range output.Volumes {
			descriptors = append(descriptors, p.convertVolume(volume))
		}
	}

	return descriptors, nil
}

// convertInstance maps one EC2 instance to a descriptor
func (p *Provider) convertInstance(instance ec2types.Instance) types.ResourceDescriptor {
	return types.ResourceDescriptor{
		ID:        aws.ToString(instance.InstanceId),
		Kind:      types.KindComputeInstance,
		Class:     string(instance.InstanceType),
		Region:    p.region,
		Tags:      convertTags(instance.Tags),
		CreatedAt: safeTime(instance.LaunchTime),
	}
}

// convertVolume maps one EBS volume to a descriptor
func (p *Provider) convertVolume(volume ec2types.Volume) types.ResourceDescriptor {
	return types.ResourceDescriptor{
		ID:        aws.ToString(volume.VolumeId),
		Kind:      types.KindBlockVolume,
		Class:     string(volume.VolumeType),
		Region:    p.region,
		SizeGB:    int(aws.ToInt32(volume.Size)),
		Attached:  len(volume.Attachments) > 0 && volume.State != ec2types.VolumeStateAvailable,
		Tags:      convertTags(volume.Tags),
		CreatedAt: safeTime(volume.CreateTime),
	}
}

func convertTags(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return out
}

func safeTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
