package reporter

import "autolytics/pkg/core"

// Reporter writes a task result.
type Reporter interface {
	Report(result *core.Result) error
}

const (
	FormatJSON     = "json"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)
