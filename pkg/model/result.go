package model

// FailureKind says why a probe produced no latency sample.
type FailureKind string

const (
	// FailureNone marks a successful sample.
	FailureNone = FailureKind("")

	// FailureTimeout means the probe exceeded its deadline.
	FailureTimeout = FailureKind("timeout")

	// FailureTransport covers connection refusals, unreachable networks,
	// name resolution failures and HTTP-layer errors.
	FailureTransport = FailureKind("transport")
)

// Method values recorded on HTTP samples.
const (
	MethodHEAD   = "HEAD"
	MethodGET    = "GET"
	MethodFailed = "FAILED"
)

// Sample is the outcome of a single probe. Either LatencyMs is valid
// (Failure is FailureNone) or the probe failed and LatencyMs is zero.
type Sample struct {
	// LatencyMs is the elapsed time in milliseconds.
	LatencyMs float64 `json:",omitempty"`
	// Failure is the failure kind, empty on success.
	Failure FailureKind `json:",omitempty"`
	// Method is the HTTP method that produced the sample (HTTP mode only).
	Method string `json:",omitempty"`
}

// OK reports whether the sample carries a latency.
func (s Sample) OK() bool {
	return s.Failure == FailureNone
}

// Statistics summarizes the successful samples of a target. When Count is
// zero every other field is nil.
type Statistics struct {
	Count int      `json:"count"`
	AvgMs *float64 `json:"avg_ms"`
	P95Ms *float64 `json:"p95_ms"`
	P99Ms *float64 `json:"p99_ms"`
	MinMs *float64 `json:"min_ms"`
	MaxMs *float64 `json:"max_ms"`
}

// TargetResult is the aggregate result for one target.
type TargetResult struct {
	// Target is the probed endpoint.
	Target Target
	// Samples are the probe outcomes, in the order they were collected.
	Samples []Sample
	// Stats is computed from the successful samples.
	Stats Statistics
	// NumProbes is the number of probes attempted.
	NumProbes int
	// Failures is the number of probes that produced no sample.
	Failures int
	// LossPct is Failures / NumProbes * 100.
	LossPct float64
}

// Successes returns the number of probes that produced a latency sample.
func (r TargetResult) Successes() int {
	return r.NumProbes - r.Failures
}
