package model

import "time"

// ArchivalRow is a flat, per-target record suitable for loading into
// BigQuery. It has no nullable scalars: when Count is zero the latency
// fields are zero and must be ignored. Threshold fields are zero when the
// corresponding Has* field is false.
type ArchivalRow struct {
	// RunID identifies the run this row belongs to.
	RunID string
	// Timestamp is the report time.
	Timestamp time.Time
	// Version is the symbolic version of the running code.
	Version string
	// GitShortCommit is the Git commit (short form) of the running code.
	GitShortCommit string

	Mode      string
	Host      string
	Port      int64
	NumProbes int64
	Failures  int64
	LossPct   float64

	Count int64
	AvgMs float64
	P95Ms float64
	P99Ms float64
	MinMs float64
	MaxMs float64

	HasLatencyP95 bool
	LatencyP95Ms  float64
	HasLatencyP99 bool
	LatencyP99Ms  float64
	HasMaxLoss    bool
	MaxLossPct    float64

	Passed      bool
	SLOFailures []string
}
