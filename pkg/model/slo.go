package model

// Thresholds is a set of SLO thresholds. A nil field is not enforced.
type Thresholds struct {
	LatencyP95Ms *float64 `json:"latency_p95_ms" yaml:"latency_p95_ms"`
	LatencyP99Ms *float64 `json:"latency_p99_ms" yaml:"latency_p99_ms"`
	MaxLossPct   *float64 `json:"max_loss_pct" yaml:"max_loss_pct"`
}

// Verdict is the outcome of evaluating one TargetResult against its
// thresholds.
type Verdict struct {
	// Passed is true when Failures is empty.
	Passed bool `json:"passed"`
	// Failures lists one human-readable reason per violated threshold.
	Failures []string `json:"failures"`
	// Thresholds are the resolved thresholds the result was judged with.
	Thresholds Thresholds `json:"thresholds"`
}
