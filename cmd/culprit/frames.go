package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"culprit/internal/output"
	"culprit/internal/trace"
)

var framesCmd = &cobra.Command{
	Use:   "frames [trace-file]",
	Short: "Parse a stack trace and print the extracted frames",
	Long: `Frames runs only the trace parser: it extracts, normalizes, and
deduplicates the stack frames without touching the filesystem or git.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFrames,
}

func init() {
	rootCmd.AddCommand(framesCmd)
}

func runFrames(cmd *cobra.Command, args []string) error {
	traceText, err := readTrace(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	parser := trace.NewParser(
		trace.WithMarkers(cfg.Trace.Markers),
		trace.WithNoisePrefixes(cfg.Trace.NoisePrefixes),
	)
	frames, err := parser.Parse(traceText)
	if err != nil {
		if errors.Is(err, trace.ErrNoFrames) {
			return fmt.Errorf("no actionable stack frames found in trace")
		}
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd, cfg)), getOutputFile(cmd), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, frame := range frames {
		line := "-"
		if frame.Line > 0 {
			line = fmt.Sprintf("%d", frame.Line)
		}
		rows = append(rows, []string{frame.Namespace, frame.Method, line})
	}

	return formatter.Output(output.NewTable(
		fmt.Sprintf("Stack Frames (%d)", len(frames)),
		[]string{"Namespace", "Method", "Line"},
		rows,
		nil,
		frames,
	))
}
