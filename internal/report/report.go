// Package report turns probe results and SLO verdicts into tables, JSON
// reports, archival rows and Prometheus textfiles.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/pingslo/pkg/model"
	"github.com/m-lab/pingslo/pkg/spec"
	"github.com/m-lab/pingslo/pkg/version"
)

// Run describes the run being reported.
type Run struct {
	ID        string
	Timestamp time.Time
	Config    model.RunConfig
}

// Build assembles the JSON report for results and their verdicts, which
// must have the same length and order.
func Build(run Run, results []model.TargetResult, verdicts []model.Verdict) *model.Report {
	r := &model.Report{
		Metadata: model.Metadata{
			Timestamp: run.Timestamp.UTC(),
			Tool:      spec.ToolName,
			Version:   version.Version,
			RunID:     run.ID,
			GitCommit: prometheusx.GitShortCommit,
			Config:    run.Config,
		},
		Summary: Summarize(verdicts),
		Targets: make([]model.TargetReport, 0, len(results)),
	}
	for i, res := range results {
		r.Targets = append(r.Targets, model.TargetReport{
			Host:       res.Target.Host,
			Port:       res.Target.Port,
			Target:     res.Target.String(),
			Statistics: res.Stats,
			LossPct:    res.LossPct,
			SLO:        verdicts[i],
		})
	}
	return r
}

// Summarize counts passed and failed verdicts.
func Summarize(verdicts []model.Verdict) model.Summary {
	s := model.Summary{TotalTargets: len(verdicts)}
	for _, v := range verdicts {
		if v.Passed {
			s.SLOPassed++
		} else {
			s.SLOFailed++
		}
	}
	return s
}

// PrintSaved prints a short summary of a report saved at path.
func PrintSaved(w io.Writer, path string, r *model.Report) {
	fmt.Fprintf(w, "\nReport saved: %s\n", path)
	fmt.Fprintf(w, "   Timestamp: %s\n", r.Metadata.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "   Total targets: %d\n", r.Summary.TotalTargets)
	fmt.Fprintf(w, "   SLO passed: %d\n", r.Summary.SLOPassed)
	fmt.Fprintf(w, "   SLO failed: %d\n", r.Summary.SLOFailed)
}
