// Package slo resolves per-target thresholds and evaluates probe results
// against them.
package slo

import (
	"fmt"

	"github.com/m-lab/pingslo/pkg/model"
)

// Threshold keys, as they appear in threshold files and overrides.
const (
	KeyLatencyP95 = "latency_p95_ms"
	KeyLatencyP99 = "latency_p99_ms"
	KeyMaxLoss    = "max_loss_pct"
)

// AllProbesFailed is the single reason given when a target has no samples.
const AllProbesFailed = "All probes failed - no data to evaluate"

// Override replaces the thresholds named by its keys. A nil value disables
// that threshold.
type Override map[string]*float64

// Config holds the default thresholds and the per-host overrides. It is
// not modified after construction and is safe for concurrent use.
type Config struct {
	defaults  model.Thresholds
	overrides map[string]Override
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// DefaultThresholds returns the built-in defaults: p95 at most 100ms, loss
// at most 5%, p99 not enforced.
func DefaultThresholds() model.Thresholds {
	return model.Thresholds{
		LatencyP95Ms: Float(100),
		MaxLossPct:   Float(5),
	}
}

// NewConfig returns a Config with the given defaults and overrides. The
// overrides map is copied.
func NewConfig(defaults model.Thresholds, overrides map[string]Override) *Config {
	c := &Config{
		defaults:  defaults,
		overrides: make(map[string]Override, len(overrides)),
	}
	for host, o := range overrides {
		c.overrides[host] = o
	}
	return c
}

// DefaultConfig returns a Config with the built-in defaults and no
// overrides.
func DefaultConfig() *Config {
	return NewConfig(DefaultThresholds(), nil)
}

// Defaults returns the default thresholds.
func (c *Config) Defaults() model.Thresholds {
	return c.defaults
}

// For returns the thresholds for host: the defaults with the host's
// override keys, if any, applied on top.
func (c *Config) For(host string) model.Thresholds {
	o, ok := c.overrides[host]
	if !ok {
		return c.defaults
	}
	return o.apply(c.defaults)
}

// Evaluate judges r against the thresholds resolved for its host.
func (c *Config) Evaluate(r model.TargetResult) model.Verdict {
	return Evaluate(r, c.For(r.Target.Host))
}

func (o Override) apply(t model.Thresholds) model.Thresholds {
	for k, v := range o {
		switch k {
		case KeyLatencyP95:
			t.LatencyP95Ms = v
		case KeyLatencyP99:
			t.LatencyP99Ms = v
		case KeyMaxLoss:
			t.MaxLossPct = v
		}
	}
	return t
}

// Evaluate judges r against th. A result without samples fails with the
// single AllProbesFailed reason. Otherwise each configured threshold is
// checked independently and every violation is reported. A latency
// threshold is not checked when the matching statistic is nil.
func Evaluate(r model.TargetResult, th model.Thresholds) model.Verdict {
	if r.Stats.Count == 0 {
		return model.Verdict{
			Passed:     false,
			Failures:   []string{AllProbesFailed},
			Thresholds: th,
		}
	}

	failures := []string{}
	if th.LatencyP95Ms != nil && r.Stats.P95Ms != nil && *r.Stats.P95Ms > *th.LatencyP95Ms {
		failures = append(failures, fmt.Sprintf("p95 latency %.2fms exceeds threshold %.2fms",
			*r.Stats.P95Ms, *th.LatencyP95Ms))
	}
	if th.LatencyP99Ms != nil && r.Stats.P99Ms != nil && *r.Stats.P99Ms > *th.LatencyP99Ms {
		failures = append(failures, fmt.Sprintf("p99 latency %.2fms exceeds threshold %.2fms",
			*r.Stats.P99Ms, *th.LatencyP99Ms))
	}
	if th.MaxLossPct != nil && r.LossPct > *th.MaxLossPct {
		failures = append(failures, fmt.Sprintf("Loss %.1f%% exceeds threshold %.1f%%",
			r.LossPct, *th.MaxLossPct))
	}
	return model.Verdict{
		Passed:     len(failures) == 0,
		Failures:   failures,
		Thresholds: th,
	}
}
