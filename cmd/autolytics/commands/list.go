package commands

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"autolytics/pkg/reporter"
	"autolytics/pkg/tasks"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tasks and output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := tasks.DefaultRegistry(logger, nil)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Task", "Metric", "Direction", "Search", "Min Rows", "Preprocessing"})
			for _, name := range registry.List() {
				factory, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				caps := factory().Capabilities()
				table.Append([]string{
					name,
					caps.RankingMetric.Name,
					string(caps.RankingMetric.Direction),
					fmt.Sprintf("%t", caps.NeedsSearch),
					fmt.Sprintf("%d", caps.MinRows),
					strings.Join(caps.PreprocessingSteps, ", "),
				})
			}
			table.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "\nOutput formats: %s\n", strings.Join([]string{
				reporter.FormatTable,
				reporter.FormatJSON,
				reporter.FormatMarkdown,
				reporter.FormatCSV,
			}, ", "))
			return nil
		},
	}
	return cmd
}
