package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"autolytics/pkg/core"
)

type CSVReporter struct {
	Writer io.Writer
}

// Report writes the leaderboard as CSV, one row per succeeded trial with one
// column per metric (union across trials, sorted for a stable header).
func (r CSVReporter) Report(result *core.Result) error {
	writer := csv.NewWriter(r.Writer)
	defer writer.Flush()

	metricSet := map[string]bool{}
	for _, entry := range result.Leaderboard {
		for name := range entry.Metrics {
			metricSet[name] = true
		}
	}
	metrics := make([]string, 0, len(metricSet))
	for name := range metricSet {
		metrics = append(metrics, name)
	}
	sort.Strings(metrics)

	header := append([]string{"rank", "trial_id", "config"}, metrics...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, entry := range result.Leaderboard {
		row := []string{fmt.Sprintf("%d", i+1), entry.TrialID, formatMap(entry.Config)}
		for _, name := range metrics {
			row = append(row, fmt.Sprintf("%.6f", entry.Metrics[name]))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}
