package reporter

import (
	"fmt"
	"io"

	"autolytics/pkg/core"
)

type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(result *core.Result) error {
	w := r.Writer
	fmt.Fprintf(w, "# %s run %s\n\n", result.TaskName, result.RunID)
	fmt.Fprintf(w, "- Succeeded trials: %d\n", len(result.Leaderboard))
	fmt.Fprintf(w, "- Failed trials: %d\n", len(result.Failures))
	if result.BestTrialID != "" {
		fmt.Fprintf(w, "- Best trial: `%s`\n", result.BestTrialID)
	}
	if result.Summary != nil {
		fmt.Fprintf(w, "- %s: %.4f (95%% CI %.4f to %.4f, %d resamples)\n",
			result.Summary.Metric, result.Summary.Mean, result.Summary.Lower,
			result.Summary.Upper, result.Summary.Resamples)
	}
	fmt.Fprintf(w, "- Runtime: %s\n\n", result.Runtime)

	if len(result.Leaderboard) > 0 {
		fmt.Fprintln(w, "| Rank | Trial | Config | Metrics |")
		fmt.Fprintln(w, "|------|-------|--------|---------|")
		for i, entry := range result.Leaderboard {
			fmt.Fprintf(w, "| %d | %s | %s | %s |\n",
				i+1, entry.TrialID, formatMap(entry.Config), formatMetrics(entry.Metrics))
		}
		fmt.Fprintln(w)
	}

	if len(result.Failures) > 0 {
		fmt.Fprintln(w, "## Failures")
		fmt.Fprintln(w)
		for _, f := range result.Failures {
			fmt.Fprintf(w, "- `%s`: %s\n", f.TrialID, f.Reason)
		}
	}
	return nil
}
