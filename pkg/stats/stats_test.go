package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/m-lab/pingslo/pkg/model"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		latencies []float64
		count     int
		avg       float64
		p95       float64
		p99       float64
		min       float64
		max       float64
	}{
		{
			name:      "basic",
			latencies: []float64{10, 20, 30, 40, 50},
			count:     5, avg: 30, p95: 50, p99: 50, min: 10, max: 50,
		},
		{
			name:      "unsorted input",
			latencies: []float64{50, 10, 40, 20, 30},
			count:     5, avg: 30, p95: 50, p99: 50, min: 10, max: 50,
		},
		{
			name:      "outliers",
			latencies: append(repeat(15, 95), repeat(200, 5)...),
			count:     100, avg: 24.25, p95: 200, p99: 200, min: 15, max: 200,
		},
		{
			name:      "single value",
			latencies: []float64{42.5},
			count:     1, avg: 42.5, p95: 42.5, p99: 42.5, min: 42.5, max: 42.5,
		},
		{
			name:      "exact rank does not round up",
			latencies: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21},
			count:     21, avg: 11, p95: 20, p99: 21, min: 1, max: 21,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.latencies)
			if got.Count != tt.count {
				t.Fatalf("Compute() count = %d, want %d", got.Count, tt.count)
			}
			check := func(field string, got *float64, want float64) {
				if got == nil {
					t.Errorf("Compute() %s is nil, want %v", field, want)
					return
				}
				if math.Abs(*got-want) > 1e-9 {
					t.Errorf("Compute() %s = %v, want %v", field, *got, want)
				}
			}
			check("avg", got.AvgMs, tt.avg)
			check("p95", got.P95Ms, tt.p95)
			check("p99", got.P99Ms, tt.p99)
			check("min", got.MinMs, tt.min)
			check("max", got.MaxMs, tt.max)
		})
	}
}

func TestCompute_empty(t *testing.T) {
	got := Compute(nil)
	if got != (model.Statistics{}) {
		t.Errorf("Compute(nil) = %+v, want all fields absent", got)
	}
	got = Compute([]float64{})
	if got.Count != 0 || got.AvgMs != nil || got.P95Ms != nil || got.P99Ms != nil ||
		got.MinMs != nil || got.MaxMs != nil {
		t.Errorf("Compute([]) = %+v, want all fields absent", got)
	}
}

func TestCompute_doesNotModifyInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Compute(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("Compute() reordered its input: %v", in)
	}
}

func TestCompute_percentilesAreObserved(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := 1 + r.Intn(300)
		latencies := make([]float64, n)
		for j := range latencies {
			latencies[j] = r.Float64() * 500
		}
		s := Compute(latencies)
		for _, p := range []*float64{s.P95Ms, s.P99Ms} {
			found := false
			for _, v := range latencies {
				if v == *p {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("percentile %v is not an observed value (n=%d)", *p, n)
			}
			if *p < *s.MinMs || *p > *s.MaxMs {
				t.Fatalf("percentile %v outside [%v, %v]", *p, *s.MinMs, *s.MaxMs)
			}
		}
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{50, 3},
		{95, 4},
		{100, 4},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); got != tt.want {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
