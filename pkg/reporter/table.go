package reporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"autolytics/pkg/core"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(result *core.Result) error {
	summary := tablewriter.NewWriter(r.Writer)
	summary.Header([]string{"Field", "Value"})
	summary.Append([]string{"Task", result.TaskName})
	summary.Append([]string{"Run", result.RunID})
	summary.Append([]string{"Succeeded trials", fmt.Sprintf("%d", len(result.Leaderboard))})
	summary.Append([]string{"Failed trials", fmt.Sprintf("%d", len(result.Failures))})
	if result.BestTrialID != "" {
		summary.Append([]string{"Best trial", result.BestTrialID})
	}
	if result.Summary != nil {
		summary.Append([]string{
			result.Summary.Metric,
			fmt.Sprintf("%.4f [%.4f, %.4f]", result.Summary.Mean, result.Summary.Lower, result.Summary.Upper),
		})
	}
	summary.Append([]string{"Runtime", result.Runtime.String()})
	summary.Render()

	if len(result.Leaderboard) > 0 {
		board := tablewriter.NewWriter(r.Writer)
		board.Header([]string{"Rank", "Trial", "Config", "Metrics"})
		for i, entry := range result.Leaderboard {
			board.Append([]string{
				fmt.Sprintf("%d", i+1),
				entry.TrialID,
				formatMap(entry.Config),
				formatMetrics(entry.Metrics),
			})
		}
		board.Render()
	}

	if len(result.Failures) > 0 {
		failures := tablewriter.NewWriter(r.Writer)
		failures.Header([]string{"Trial", "Reason"})
		for _, f := range result.Failures {
			failures.Append([]string{f.TrialID, f.Reason})
		}
		failures.Render()
	}
	return nil
}

func formatMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%v", k, m[k])
	}
	return out
}

func formatMetrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%.4f", k, m[k])
	}
	return out
}
