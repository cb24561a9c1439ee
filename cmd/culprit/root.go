package main

import (
	"github.com/spf13/cobra"

	"culprit/pkg/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "culprit",
	Short: "Trace exception stack frames back to the commits that touched them",
	Long: `Culprit ingests a pasted exception stack trace, resolves each frame to its
source file and method body, and queries git history for the commits, authors,
and pull requests that touched those lines since a given start date.`,
}

func init() {
	rootCmd.Version = version
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print the step log after analysis")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format: text, json, markdown, yaml")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Write output to file instead of stdout")
}

// loadConfig loads the config file named by --config, or the defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(), nil
}
