package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"culprit/pkg/config"
)

// errEmptyTrace rejects requests with no trace text at all.
var errEmptyTrace = errors.New("trace text is empty")

// readTrace reads the trace from the first positional argument or stdin.
func readTrace(args []string) (string, error) {
	var data []byte
	var err error
	if len(args) > 0 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return "", err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errEmptyTrace
	}
	return text, nil
}

// getFormat returns the output format from the flag, falling back to config.
func getFormat(cmd *cobra.Command, cfg *config.Config) string {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return f
	}
	return cfg.Output.Format
}

// getOutputFile returns the --output flag value.
func getOutputFile(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("output")
	return f
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// firstLine returns the first line of a commit message.
func firstLine(s string) string {
	if idx := strings.Index(s, "\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}

// spanString formats a line span for display.
func spanString(start, end int) string {
	return fmt.Sprintf("%d-%d", start, end)
}
