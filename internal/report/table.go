package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/m-lab/pingslo/pkg/model"
)

const tableWidth = 90

func formatMs(v *float64) string {
	if v == nil {
		return "FAILED"
	}
	return fmt.Sprintf("%.2f", *v)
}

// PrintTable writes a results table to w. If verdicts is non-nil, it must
// match results one to one, and an SLO column plus the failure reasons of
// failed verdicts are included.
func PrintTable(w io.Writer, results []model.TargetResult, verdicts []model.Verdict) {
	rule := strings.Repeat("=", tableWidth)
	fmt.Fprintf(w, "\n%s\nRESULTS\n%s\n", rule, rule)
	header := fmt.Sprintf("%-30s %-12s %-12s %-12s %-10s", "Target", "Avg (ms)", "P95 (ms)", "P99 (ms)", "Loss %")
	if verdicts != nil {
		header += fmt.Sprintf(" %-8s", "SLO")
	}
	fmt.Fprintln(w, strings.TrimRight(header, " "))
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))

	for i, r := range results {
		// All probes failed: every latency column shows FAILED.
		avg, p95, p99 := formatMs(r.Stats.AvgMs), formatMs(r.Stats.P95Ms), formatMs(r.Stats.P99Ms)
		row := fmt.Sprintf("%-30s %-12s %-12s %-12s %.1f%%", r.Target, avg, p95, p99, r.LossPct)
		if verdicts == nil {
			fmt.Fprintln(w, row)
			continue
		}
		v := verdicts[i]
		status := "PASS"
		if !v.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s      %s\n", row, status)
		if !v.Passed {
			for _, f := range v.Failures {
				fmt.Fprintf(w, "  ! %s\n", f)
			}
		}
	}
	fmt.Fprintln(w, rule)
}
