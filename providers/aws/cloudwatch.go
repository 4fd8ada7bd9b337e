package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// metricPeriod is the CloudWatch aggregation period per datapoint.
const metricPeriod = time.Hour

const (
	queryIDCPU     = "cpu"
	queryIDNetwork = "netin"
)

// FetchMetrics pulls CPU utilization and inbound network volume for one
// instance over the window. NetworkIn arrives as bytes summed per period
// and is converted to bytes per second here, so downstream thresholds
// compare in one unit.
func (p *Provider) FetchMetrics(ctx context.Context, d types.ResourceDescriptor, window types.Window) (map[types.MetricName][]types.MetricSample, error) {
	input := &cloudwatch.GetMetricDataInput{
		StartTime:         aws.Time(window.Start),
		EndTime:           aws.Time(window.End),
		MetricDataQueries: metricQueries(d.ID),
	}

	metrics := map[types.MetricName][]types.MetricSample{
		types.MetricCPUPct:     nil,
		types.MetricNetworkBps: nil,
	}

	paginator := cloudwatch.NewGetMetricDataPaginator(p.cwClient, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch metrics for %s: %w", d.ID, err)
		}
		for _, result := range output.MetricDataResults {
			name, convert := resultMapping(aws.ToString(result.Id))
			if convert == nil {
				continue
			}
			metrics[name] = append(metrics[name], convertDatapoints(result, convert)...)
		}
	}

	return metrics, nil
}

func metricQueries(instanceID string) []cwtypes.MetricDataQuery {
	dimension := []cwtypes.Dimension{
		{Name: aws.String("InstanceId"), Value: aws.String(instanceID)},
	}
	period := aws.Int32(int32(metricPeriod.Seconds()))

	return []cwtypes.MetricDataQuery{
		{
			Id: aws.String(queryIDCPU),
			MetricStat: &cwtypes.MetricStat{
				Metric: &cwtypes.Metric{
					Namespace:  aws.String("AWS/EC2"),
					MetricName: aws.String("CPUUtilization"),
					Dimensions: dimension,
				},
				Period: period,
				Stat:   aws.String("Average"),
			},
		},
		{
			Id: aws.String(queryIDNetwork),
			MetricStat: &cwtypes.MetricStat{
				Metric: &cwtypes.Metric{
					Namespace:  aws.String("AWS/EC2"),
					MetricName: aws.String("NetworkIn"),
					Dimensions: dimension,
				},
				Period: period,
				Stat:   aws.String("Sum"),
			},
		},
	}
}

// resultMapping resolves a query id to its metric name and unit conversion.
func resultMapping(id string) (types.MetricName, func(float64) float64) {
	switch id {
	case queryIDCPU:
		return types.MetricCPUPct, func(v float64) float64 { return v }
	case queryIDNetwork:
		return types.MetricNetworkBps, func(v float64) float64 { return v / metricPeriod.Seconds() }
	default:
		return "", nil
	}
}

// convertDatapoints zips CloudWatch's parallel timestamp and value slices
// into samples.
func convertDatapoints(result cwtypes.MetricDataResult, convert func(float64) float64) []types.MetricSample {
	n := min(len(result.Timestamps), len(result.Values))
	samples := make([]types.MetricSample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, types.MetricSample{
			Timestamp: result.Timestamps[i],
			Value:     convert(result.Values[i]),
		})
	}
	return samples
}
