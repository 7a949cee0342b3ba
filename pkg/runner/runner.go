// Package runner drives the probing of a set of targets: each target is
// sampled sequentially by its own goroutine, and a fixed pool of tickets
// bounds how many targets are sampled at once.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/m-lab/pingslo/internal/metrics"
	"github.com/m-lab/pingslo/pkg/model"
	"github.com/m-lab/pingslo/pkg/probe"
	"github.com/m-lab/pingslo/pkg/stats"
	"golang.org/x/sync/semaphore"
)

// Runner probes targets according to its Config.
type Runner struct {
	config  Config
	prober  probe.Prober
	emitter Emitter

	// sleep pauses between probes. Tests replace it with a synthetic clock.
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Runner for the given config. It returns ErrInvalidConfig
// if the config violates its contract, before anything is probed.
func New(cfg Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	p := cfg.Prober
	if p == nil {
		var err error
		p, err = probe.New(cfg.Mode, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	var e Emitter = nopEmitter{}
	if cfg.Emitter != nil {
		e = cfg.Emitter
	}
	return &Runner{
		config:  cfg,
		prober:  p,
		emitter: e,
		sleep:   sleep,
	}, nil
}

// Run samples every target and returns one result per target, in the same
// order as targets. All targets are dispatched at once; at most
// MaxConcurrent of them are sampled at the same time. Run returns when
// every target has been sampled.
//
// Targets that cannot obtain a ticket because ctx is done are reported
// with every probe lost.
func (r *Runner) Run(ctx context.Context, targets []model.Target) []model.TargetResult {
	r.emitter.OnRunStart(len(targets), r.config)

	results := make([]model.TargetResult, len(targets))
	tickets := semaphore.NewWeighted(int64(r.config.MaxConcurrent))
	wg := &sync.WaitGroup{}

	for i, t := range targets {
		wg.Add(1)
		go func(idx int, t model.Target) {
			defer wg.Done()
			if err := tickets.Acquire(ctx, 1); err != nil {
				log.Warn("target not sampled", "target", t.String(), "error", err)
				results[idx] = r.result(t, nil, r.config.NumProbes)
				return
			}
			defer tickets.Release(1)
			results[idx] = r.Sample(ctx, t)
		}(i, t)
	}

	wg.Wait()
	return results
}

// Sample sends NumProbes probes to t, one at a time, pausing Interval
// between consecutive probes. A failed probe is counted and the loop goes
// on. If ctx is done before all probes are sent, the remaining probes are
// counted as lost.
func (r *Runner) Sample(ctx context.Context, t model.Target) model.TargetResult {
	metrics.SamplersActive.Inc()
	defer metrics.SamplersActive.Dec()
	r.emitter.OnStart(t, r.config)

	n := r.config.NumProbes
	samples := make([]model.Sample, 0, n)
	missing := 0
	for i := 0; i < n; i++ {
		if i > 0 {
			r.sleep(ctx, r.config.Interval)
		}
		if err := ctx.Err(); err != nil {
			missing = n - i
			log.Warn("sampling interrupted", "target", t.String(), "lost", missing, "error", err)
			break
		}
		s := r.probeOnce(ctx, t)
		samples = append(samples, s)
		r.emitter.OnSample(t, i, s)
	}

	result := r.result(t, samples, missing)
	metrics.TargetsTotal.WithLabelValues(string(r.config.Mode)).Inc()
	r.emitter.OnResult(result)
	return result
}

// probeOnce runs a single probe, logs its error and drops it. A panicking
// probe is recorded as a transport failure.
func (r *Runner) probeOnce(ctx context.Context, t model.Target) (s model.Sample) {
	mode := string(r.config.Mode)
	defer func() {
		if p := recover(); p != nil {
			log.Error("probe panicked", "target", t.String(), "panic", p)
			metrics.ProbesTotal.WithLabelValues(mode, string(model.FailureTransport)).Inc()
			s = model.Sample{Failure: model.FailureTransport}
		}
	}()

	o := r.prober.Probe(ctx, t)
	if !o.OK() {
		kv := []interface{}{"target", t.String(), "kind", string(o.Failure)}
		if o.Method != "" {
			kv = append(kv, "method", o.Method)
		}
		log.Warn("probe failed", append(kv, "error", o.Err)...)
		metrics.ProbesTotal.WithLabelValues(mode, string(o.Failure)).Inc()
		return o.Sample
	}
	log.Debug("probe", "target", t.String(), "latency_ms", o.LatencyMs, "method", o.Method)
	metrics.ProbesTotal.WithLabelValues(mode, "ok").Inc()
	metrics.ProbeLatency.WithLabelValues(mode).Observe(o.LatencyMs / 1000)
	return o.Sample
}

// result builds the TargetResult for t from its collected samples plus
// missing probes that were never sent.
func (r *Runner) result(t model.Target, samples []model.Sample, missing int) model.TargetResult {
	n := r.config.NumProbes
	latencies := make([]float64, 0, len(samples))
	failures := missing
	for _, s := range samples {
		if s.OK() {
			latencies = append(latencies, s.LatencyMs)
		} else {
			failures++
		}
	}
	return model.TargetResult{
		Target:    t,
		Samples:   samples,
		Stats:     stats.Compute(latencies),
		NumProbes: n,
		Failures:  failures,
		LossPct:   float64(failures) / float64(n) * 100,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
