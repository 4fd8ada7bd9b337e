// Package normalizer converts raw, irregular metric samples into uniform
// fixed-interval utilization series.
package normalizer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// InsufficientSamplesError reports that a metric had too little usable data
// to normalize. It is recoverable: the classifier downgrades it to an
// INSUFFICIENT_DATA verdict instead of failing the scan.
type InsufficientSamplesError struct {
	Metric types.MetricName
	Got    int
	Want   int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples for %s: got %d, need %d", e.Metric, e.Got, e.Want)
}

// Normalizer resamples raw metric data onto a fixed-interval grid.
type Normalizer struct {
	interval   time.Duration
	minSamples int
}

// New creates a normalizer with the given target interval and minimum
// usable raw sample count.
func New(interval time.Duration, minSamples int) *Normalizer {
	return &Normalizer{interval: interval, minSamples: minSamples}
}

// Normalize produces a fixed-interval series covering the raw data's
// timestamp range clipped to the scan window.
//
// Malformed samples (zero timestamps, NaN or infinite values) are rejected
// at this boundary. Duplicate timestamps are averaged. Gaps shorter than
// twice the interval are linearly interpolated; longer gaps become missing
// slots that downstream evidence windows exclude rather than read as zero.
func (n *Normalizer) Normalize(metric types.MetricName, raw []types.MetricSample, window types.Window) (*types.UtilizationSeries, error) {
	usable := cleanSamples(raw, window)
	if len(usable) < n.minSamples {
		return nil, &InsufficientSamplesError{Metric: metric, Got: len(usable), Want: n.minSamples}
	}

	samples := mergeDuplicates(usable)

	series := &types.UtilizationSeries{Metric: metric, Interval: n.interval}
	first := samples[0].Timestamp
	last := samples[len(samples)-1].Timestamp

	j := 0
	for ts := first; !ts.After(last); ts = ts.Add(n.interval) {
		for j+1 < len(samples) && !samples[j+1].Timestamp.After(ts) {
			j++
		}
		series.Points = append(series.Points, pointAt(ts, samples, j, n.interval))
	}

	return series, nil
}

// cleanSamples drops malformed entries and clips to the scan window.
// Sorted by (timestamp, value) so duplicate averaging is order-independent.
func cleanSamples(raw []types.MetricSample, window types.Window) []types.MetricSample {
	usable := make([]types.MetricSample, 0, len(raw))
	for _, s := range raw {
		if s.Timestamp.IsZero() || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			continue
		}
		if !window.Contains(s.Timestamp) {
			continue
		}
		usable = append(usable, s)
	}
	sort.Slice(usable, func(i, k int) bool {
		if usable[i].Timestamp.Equal(usable[k].Timestamp) {
			return usable[i].Value < usable[k].Value
		}
		return usable[i].Timestamp.Before(usable[k].Timestamp)
	})
	return usable
}

// mergeDuplicates averages runs of samples sharing one timestamp.
func mergeDuplicates(sorted []types.MetricSample) []types.MetricSample {
	merged := make([]types.MetricSample, 0, len(sorted))
	for i := 0; i < len(sorted); {
		k := i
		var sum float64
		for k < len(sorted) && sorted[k].Timestamp.Equal(sorted[i].Timestamp) {
			sum += sorted[k].Value
			k++
		}
		merged = append(merged, types.MetricSample{
			Timestamp: sorted[i].Timestamp,
			Value:     sum / float64(k-i),
		})
		i = k
	}
	return merged
}

// pointAt fills one grid slot from the samples bracketing ts. samples[j] is
// the latest sample at or before ts.
func pointAt(ts time.Time, samples []types.MetricSample, j int, interval time.Duration) types.SeriesPoint {
	prev := samples[j]
	if prev.Timestamp.Equal(ts) {
		return types.SeriesPoint{Timestamp: ts, Value: prev.Value}
	}

	if j+1 >= len(samples) {
		return types.SeriesPoint{Timestamp: ts, Missing: true}
	}
	next := samples[j+1]

	gap := next.Timestamp.Sub(prev.Timestamp)
	if gap >= 2*interval {
		return types.SeriesPoint{Timestamp: ts, Missing: true}
	}

	frac := float64(ts.Sub(prev.Timestamp)) / float64(gap)
	return types.SeriesPoint{
		Timestamp: ts,
		Value:     prev.Value + frac*(next.Value-prev.Value),
	}
}
