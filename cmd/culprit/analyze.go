package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"culprit/internal/analyzer"
	"culprit/internal/output"
	"culprit/internal/progress"
	"culprit/internal/trace"
	"culprit/pkg/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [trace-file]",
	Short: "Analyze a stack trace against git history",
	Long: `Analyze reads a stack trace from a file (or stdin when no argument or "-"
is given), resolves each frame to a source file and method span, and reports
the commits that touched those lines on or after the --since date.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("since", "", "Start date for the change window (YYYY-MM-DD, required)")
	analyzeCmd.Flags().String("root", ".", "Project root to search for source files")
	analyzeCmd.Flags().Int("workers", 0, "Parallel frame workers (default from config; 1 = sequential)")
	analyzeCmd.MarkFlagRequired("since")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sinceStr, _ := cmd.Flags().GetString("since")
	since, err := time.Parse("2006-01-02", sinceStr)
	if err != nil {
		return fmt.Errorf("invalid --since date %q: expected YYYY-MM-DD", sinceStr)
	}

	traceText, err := readTrace(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Analysis.Workers = workers
	}
	root, _ := cmd.Flags().GetString("root")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.History.GitTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.History.GitTimeoutSeconds)*time.Second)
		defer cancel()
	}

	rec := progress.NewRecorder()
	spinner := progress.NewSpinner("Parsing trace...")

	// The spinner covers parsing; once the frame count is known it is
	// swapped for a counted bar over the frame pipeline.
	var tracker *progress.Tracker
	ta := analyzer.New(
		analyzer.WithConfig(cfg),
		analyzer.WithFrameProgress(func(total int) func() {
			spinner.FinishSuccess()
			tracker = progress.NewTracker("Analyzing frames", total)
			return tracker.Tick
		}),
	)

	report, err := ta.Analyze(ctx, traceText, since, root, rec)
	if err != nil {
		if tracker != nil {
			tracker.FinishError(err)
		} else {
			spinner.FinishSuccess()
		}
		if errors.Is(err, trace.ErrNoFrames) {
			return fmt.Errorf("no actionable stack frames found in trace")
		}
		return err
	}
	if tracker != nil {
		tracker.FinishSuccess()
	} else {
		spinner.FinishSuccess()
	}

	if verbose {
		for _, step := range rec.Steps() {
			fmt.Fprintf(os.Stderr, "  %s %s\n", step.Time.Format("15:04:05"), step.Message)
		}
	}

	format := output.ParseFormat(getFormat(cmd, cfg))
	formatter, err := output.NewFormatter(format, getOutputFile(cmd), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(frameTable(report)); err != nil {
		return err
	}

	// Structured formats already carry the full report; the per-frame
	// commit tables are a text/markdown detail view.
	if format == output.FormatText || format == output.FormatMarkdown {
		for _, result := range report.Results {
			if len(result.Commits) == 0 {
				continue
			}
			if err := formatter.Output(commitTable(result)); err != nil {
				return err
			}
		}
	}
	return nil
}

// frameTable builds the per-frame overview table wrapping the full report.
func frameTable(report *models.Report) *output.Table {
	var rows [][]string
	for _, result := range report.Results {
		file := "-"
		span := "-"
		if result.Location.Found {
			file = result.Location.FilePath
		}
		if result.Location.Span != nil {
			span = spanString(result.Location.Span.Start, result.Location.Span.End)
		}

		status := ""
		switch {
		case result.Error != "":
			status = color.YellowString(result.Error)
		case result.HasInRangeChanges():
			status = color.RedString("changed in range")
		}

		rows = append(rows, []string{
			result.Frame.Key(),
			file,
			span,
			fmt.Sprintf("%d", len(result.Commits)),
			status,
		})
	}

	return output.NewTable(
		fmt.Sprintf("Stack Trace Analysis (since %s)", report.StartDate.Format("2006-01-02")),
		[]string{"Frame", "File", "Lines", "Commits", "Status"},
		rows,
		[]string{
			fmt.Sprintf("Frames: %d", report.Summary.TotalFrames),
			fmt.Sprintf("Files Found: %d", report.Summary.FilesFound),
			fmt.Sprintf("Methods Found: %d", report.Summary.MethodsFound),
			fmt.Sprintf("Changed In Range: %d", report.Summary.FramesWithChanges),
		},
		report,
	)
}

// commitTable builds the commit detail table for one frame.
func commitTable(result models.AnalysisResult) *output.Table {
	var rows [][]string
	for _, c := range result.Commits {
		inRange := ""
		if c.InDateRange {
			inRange = color.RedString("yes")
		}
		pr := "-"
		if c.PRNumber != "" {
			pr = c.Link
		}
		rows = append(rows, []string{
			c.Date.Format("2006-01-02"),
			c.ShortHash(),
			c.Author,
			truncate(firstLine(c.Message), 60),
			inRange,
			pr,
		})
	}

	return output.NewTable(
		fmt.Sprintf("Commits for %s", result.Frame.Key()),
		[]string{"Date", "Hash", "Author", "Message", "In Range", "PR"},
		rows,
		nil,
		result,
	)
}
