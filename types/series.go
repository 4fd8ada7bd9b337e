package types

import "time"

// MetricName identifies a utilization signal.
type MetricName string

const (
	MetricCPUPct     MetricName = "cpu_utilization_pct"
	MetricNetworkBps MetricName = "network_bytes_per_sec"
	MetricVolumeOps  MetricName = "volume_io_ops_per_sec"
)

// MetricSample is one raw (timestamp, value) observation for a metric.
type MetricSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// SeriesPoint is one slot of a normalized series. Missing marks spans the
// normalizer could not fill; they are excluded from evidence, never zeroed.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Missing   bool      `json:"missing,omitempty"`
}

// UtilizationSeries is a fixed-interval, gap-marked series for one
// (resource, metric) pair. Timestamps are strictly increasing and adjacent
// points are exactly one interval apart.
type UtilizationSeries struct {
	Metric   MetricName    `json:"metric"`
	Interval time.Duration `json:"interval"`
	Points   []SeriesPoint `json:"points"`
}

// Start returns the timestamp of the first point.
func (s *UtilizationSeries) Start() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Timestamp
}

// End returns the timestamp of the last point.
func (s *UtilizationSeries) End() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Timestamp
}

// MeanOver computes the mean of non-missing points inside w.
// ok is false when no usable point falls inside the window.
func (s *UtilizationSeries) MeanOver(w Window) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, p := range s.Points {
		if p.Missing || !w.Contains(p.Timestamp) {
			continue
		}
		sum += p.Value
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// PeakOver computes the maximum of non-missing points inside w.
func (s *UtilizationSeries) PeakOver(w Window) (peak float64, ok bool) {
	for _, p := range s.Points {
		if p.Missing || !w.Contains(p.Timestamp) {
			continue
		}
		if !ok || p.Value > peak {
			peak = p.Value
			ok = true
		}
	}
	return peak, ok
}

// Coverage returns the count of non-missing points.
func (s *UtilizationSeries) Coverage() int {
	var n int
	for _, p := range s.Points {
		if !p.Missing {
			n++
		}
	}
	return n
}
