package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
	"autolytics/pkg/reporter"
	"autolytics/pkg/runlog"
	"autolytics/pkg/tasks"
)

func newRunCommand() *cobra.Command {
	var (
		taskName    string
		datasetPath string
		target      string
		workers     int
		outputPath  string
		format      string
		runDir      string
		maxTrials   int
		timeBudget  time.Duration
		cvFolds     int
		metricName  string
		direction   string
		ensemble    bool
		seed        int64
		split       float64
		earlyStop   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an analytics task on a CSV dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveString(datasetPath, appConfig.Dataset)
			if path == "" {
				return errors.New("dataset path is required")
			}
			taskResolved := resolveString(taskName, appConfig.Task)
			if taskResolved == "" {
				return errors.New("task name is required")
			}
			targetResolved := resolveString(target, appConfig.Target)
			formatResolved := resolveString(format, appConfig.Format)
			if formatResolved == "" {
				formatResolved = "table"
			}
			outputResolved := resolveString(outputPath, appConfig.Output)
			runDirResolved := resolveString(runDir, appConfig.RunDir)

			ds, err := dataset.LoadCSV(path)
			if err != nil {
				return err
			}

			var store *runlog.Store
			if runDirResolved != "" {
				store = &runlog.Store{Dir: runDirResolved}
			}
			registry := tasks.DefaultRegistry(logger, store)
			factory, err := registry.Lookup(taskResolved)
			if err != nil {
				return err
			}
			task := factory()

			budget := timeBudget
			if budget == 0 && appConfig.TimeBudget > 0 {
				budget = time.Duration(appConfig.TimeBudget) * time.Second
			}

			cfg := core.RunConfig{
				TimeBudget:      budget,
				MaxTrials:       resolveInt(maxTrials, appConfig.MaxTrials, 0),
				CVFolds:         resolveInt(cvFolds, appConfig.CVFolds, 0),
				Parallelism:     resolveInt(workers, appConfig.Workers, 0),
				Ensemble:        ensemble || appConfig.Ensemble,
				Seed:            seed,
				ValidationSplit: split,
				EarlyStop:       earlyStop,
			}
			if cfg.Seed == 0 {
				cfg.Seed = appConfig.Seed
			}
			if cfg.ValidationSplit == 0 {
				cfg.ValidationSplit = appConfig.Split
			}
			metricResolved := resolveString(metricName, appConfig.Metric)
			if metricResolved != "" {
				dir := core.Direction(resolveString(direction, appConfig.Direction))
				if dir != core.Minimize {
					dir = core.Maximize
				}
				cfg.Metric = core.Metric{Name: metricResolved, Direction: dir}
			}

			progress := newProgressBar(progressWriter(cmd), cfg.MaxTrials)
			if task.Capabilities().NeedsSearch {
				cfg.Progress = func(completed, total int) {
					progress.Update(completed, total)
				}
			}

			result, err := task.Run(context.Background(), ds, targetResolved, cfg)
			if err != nil {
				return err
			}

			writer := cmd.OutOrStdout()
			if outputResolved != "" {
				file, err := os.Create(outputResolved)
				if err != nil {
					return err
				}
				defer file.Close()
				writer = file
			}

			rep, err := buildReporter(formatResolved, writer)
			if err != nil {
				return err
			}
			return rep.Report(result)
		},
	}

	cmd.Flags().StringVar(&taskName, "task", "", "task name (classification, regression, correlation)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to CSV dataset")
	cmd.Flags().StringVar(&target, "target", "", "target column name")
	cmd.Flags().IntVar(&workers, "workers", 0, "trial parallelism")
	cmd.Flags().StringVar(&outputPath, "output", "", "output file path")
	cmd.Flags().StringVar(&format, "format", "", "output format (table, json, markdown, csv)")
	cmd.Flags().StringVar(&runDir, "run-dir", "", "directory for persisted run state")
	cmd.Flags().IntVar(&maxTrials, "max-trials", 0, "cap on search-space size")
	cmd.Flags().DurationVar(&timeBudget, "time-budget", 0, "wall-clock budget (0 = unlimited)")
	cmd.Flags().IntVar(&cvFolds, "cv-folds", 0, "cross-validation fold count")
	cmd.Flags().StringVar(&metricName, "metric", "", "optimization metric name")
	cmd.Flags().StringVar(&direction, "direction", "", "metric direction (maximize, minimize)")
	cmd.Flags().BoolVar(&ensemble, "ensemble", false, "combine top trials into an ensemble")
	cmd.Flags().Int64Var(&seed, "seed", 0, "root random seed for reproducibility")
	cmd.Flags().Float64Var(&split, "validation-split", 0, "holdout fraction")
	cmd.Flags().BoolVar(&earlyStop, "early-stop", false, "prune trials dominated by the current best")

	return cmd
}

func buildReporter(format string, writer io.Writer) (reporter.Reporter, error) {
	switch format {
	case reporter.FormatJSON:
		return reporter.JSONReporter{Writer: writer, Pretty: true}, nil
	case reporter.FormatTable:
		return reporter.TableReporter{Writer: writer}, nil
	case reporter.FormatMarkdown:
		return reporter.MarkdownReporter{Writer: writer}, nil
	case reporter.FormatCSV:
		return reporter.CSVReporter{Writer: writer}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

type progressBar struct {
	writer io.Writer
	total  int
	start  time.Time
	isTTY  bool
}

func newProgressBar(writer io.Writer, total int) *progressBar {
	return &progressBar{
		writer: writer,
		total:  total,
		start:  time.Now(),
		isTTY:  isTerminal(writer),
	}
}

func (p *progressBar) Update(completed, total int) {
	if total <= 0 {
		total = p.total
	}
	width := 30
	if total <= 0 {
		elapsed := time.Since(p.start).Truncate(time.Second)
		if p.isTTY {
			fmt.Fprintf(p.writer, "\rCompleted %d trials (%s)", completed, elapsed)
		} else {
			fmt.Fprintf(p.writer, "Completed %d trials (%s)\n", completed, elapsed)
		}
		return
	}

	ratio := float64(completed) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))

	bar := strings.Repeat("=", filled) + strings.Repeat(".", width-filled)
	percent := int(ratio * 100)
	elapsed := time.Since(p.start).Truncate(time.Second)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	line := fmt.Sprintf("[%s] %3d%% (%d/%d trials) %s", barStyle.Render(bar), percent, completed, total, elapsed)
	if p.isTTY {
		fmt.Fprintf(p.writer, "\r%s", line)
	} else {
		fmt.Fprintf(p.writer, "%s\n", line)
	}

	if completed >= total {
		fmt.Fprintln(p.writer)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func progressWriter(cmd *cobra.Command) io.Writer {
	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()

	if isTerminal(stderr) {
		return stderr
	}
	if isTerminal(stdout) {
		return stdout
	}
	return stderr
}

func resolveString(value string, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func resolveInt(value int, fallback int, defaultValue int) int {
	if value > 0 {
		return value
	}
	if fallback > 0 {
		return fallback
	}
	return defaultValue
}
