package model

import "time"

// Report is the JSON document written at the end of a run.
type Report struct {
	Metadata Metadata       `json:"metadata"`
	Summary  Summary        `json:"summary"`
	Targets  []TargetReport `json:"targets"`
}

// Metadata describes the run that produced a Report.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Tool      string    `json:"tool"`
	Version   string    `json:"version"`
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`
	// GitCommit is the short commit of the running code, if known.
	GitCommit string    `json:"git_commit,omitempty"`
	Config    RunConfig `json:"config"`
}

// RunConfig is the probe configuration recorded in report metadata.
// Timeout and Interval are in seconds.
type RunConfig struct {
	Mode          string  `json:"mode"`
	Samples       int     `json:"samples"`
	Timeout       float64 `json:"timeout"`
	Interval      float64 `json:"interval"`
	MaxConcurrent int     `json:"max_concurrent"`
}

// Summary counts verdicts.
type Summary struct {
	TotalTargets int `json:"total_targets"`
	SLOPassed    int `json:"slo_passed"`
	SLOFailed    int `json:"slo_failed"`
}

// TargetReport is the per-target section of a Report.
type TargetReport struct {
	Host       string     `json:"host"`
	Port       int        `json:"port"`
	Target     string     `json:"target"`
	Statistics Statistics `json:"statistics"`
	LossPct    float64    `json:"loss_pct"`
	SLO        Verdict    `json:"slo"`
}
