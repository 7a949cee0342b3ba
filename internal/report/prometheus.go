package report

import (
	"strconv"

	"github.com/m-lab/pingslo/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Gatherer returns a Prometheus gatherer exposing per-target gauges for
// results and verdicts. Latency gauges are omitted for targets without
// samples.
func Gatherer(results []model.TargetResult, verdicts []model.Verdict) (prometheus.Gatherer, error) {
	labels := []string{"target", "host", "port"}
	avg := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pingslo_target_avg_ms",
		Help: "Mean latency of the target's successful probes.",
	}, labels)
	p95 := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pingslo_target_p95_ms",
		Help: "95th percentile latency of the target's successful probes.",
	}, labels)
	p99 := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pingslo_target_p99_ms",
		Help: "99th percentile latency of the target's successful probes.",
	}, labels)
	loss := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pingslo_target_loss_pct",
		Help: "Percentage of the target's probes that produced no sample.",
	}, labels)
	passed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pingslo_target_slo_passed",
		Help: "1 if the target met its SLO, 0 otherwise.",
	}, labels)

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{avg, p95, p99, loss, passed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	for i, r := range results {
		lv := []string{r.Target.String(), r.Target.Host, portLabel(r.Target.Port)}
		loss.WithLabelValues(lv...).Set(r.LossPct)
		if verdicts[i].Passed {
			passed.WithLabelValues(lv...).Set(1)
		} else {
			passed.WithLabelValues(lv...).Set(0)
		}
		if r.Stats.Count == 0 {
			continue
		}
		avg.WithLabelValues(lv...).Set(*r.Stats.AvgMs)
		p95.WithLabelValues(lv...).Set(*r.Stats.P95Ms)
		p99.WithLabelValues(lv...).Set(*r.Stats.P99Ms)
	}
	return reg, nil
}

// WritePrometheus writes the per-target gauges, together with the
// process-wide instruments of the default registry, to path in the text
// exposition format.
func WritePrometheus(path string, results []model.TargetResult, verdicts []model.Verdict) error {
	g, err := Gatherer(results, verdicts)
	if err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, prometheus.Gatherers{g, prometheus.DefaultGatherer})
}

func portLabel(port int) string {
	return strconv.Itoa(port)
}
