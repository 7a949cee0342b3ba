package report

import (
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/pingslo/internal/persistence"
	"github.com/m-lab/pingslo/pkg/model"
	"github.com/m-lab/pingslo/pkg/version"
)

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Rows flattens results and verdicts into one ArchivalRow per target.
func Rows(run Run, results []model.TargetResult, verdicts []model.Verdict) []model.ArchivalRow {
	rows := make([]model.ArchivalRow, 0, len(results))
	for i, r := range results {
		v := verdicts[i]
		rows = append(rows, model.ArchivalRow{
			RunID:          run.ID,
			Timestamp:      run.Timestamp.UTC(),
			Version:        version.Version,
			GitShortCommit: prometheusx.GitShortCommit,

			Mode:      run.Config.Mode,
			Host:      r.Target.Host,
			Port:      int64(r.Target.Port),
			NumProbes: int64(r.NumProbes),
			Failures:  int64(r.Failures),
			LossPct:   r.LossPct,

			Count: int64(r.Stats.Count),
			AvgMs: value(r.Stats.AvgMs),
			P95Ms: value(r.Stats.P95Ms),
			P99Ms: value(r.Stats.P99Ms),
			MinMs: value(r.Stats.MinMs),
			MaxMs: value(r.Stats.MaxMs),

			HasLatencyP95: v.Thresholds.LatencyP95Ms != nil,
			LatencyP95Ms:  value(v.Thresholds.LatencyP95Ms),
			HasLatencyP99: v.Thresholds.LatencyP99Ms != nil,
			LatencyP99Ms:  value(v.Thresholds.LatencyP99Ms),
			HasMaxLoss:    v.Thresholds.MaxLossPct != nil,
			MaxLossPct:    value(v.Thresholds.MaxLossPct),

			Passed:      v.Passed,
			SLOFailures: v.Failures,
		})
	}
	return rows
}

// WriteRows writes rows as newline-delimited JSON to path.
func WriteRows(path string, rows []model.ArchivalRow) error {
	df, err := persistence.New(path)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := df.WriteLine(r); err != nil {
			df.Close()
			return err
		}
	}
	return df.Close()
}
