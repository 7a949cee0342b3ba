// Package stats reduces latency samples to summary statistics.
package stats

import (
	"math"
	"sort"

	"github.com/m-lab/pingslo/pkg/model"
)

// Compute returns count, mean, extremes and the 95th and 99th percentiles of
// the given latencies (milliseconds). With no latencies it returns a zero
// Count and nil fields.
//
// Percentiles use the nearest-rank-upward rule: with the values sorted into
// v[0..n-1], percentile p is v[ceil((n-1)*p/100)]. The result is always an
// observed value.
func Compute(latencies []float64) model.Statistics {
	n := len(latencies)
	if n == 0 {
		return model.Statistics{}
	}

	sorted := make([]float64, n)
	copy(sorted, latencies)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range latencies {
		sum += v
	}
	avg := sum / float64(n)
	min := sorted[0]
	max := sorted[n-1]
	p95 := Percentile(sorted, 95)
	p99 := Percentile(sorted, 99)

	return model.Statistics{
		Count: n,
		AvgMs: &avg,
		P95Ms: &p95,
		P99Ms: &p99,
		MinMs: &min,
		MaxMs: &max,
	}
}

// Percentile returns the p-th percentile of an ascending slice using the
// nearest-rank-upward rule. It panics if sorted is empty.
func Percentile(sorted []float64, p float64) float64 {
	last := len(sorted) - 1
	rank := float64(last) * p / 100
	idx := int(math.Ceil(rank))
	if idx > last {
		idx = last
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
