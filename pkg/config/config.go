// Package config loads culprit configuration from TOML, YAML, or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for culprit.
type Config struct {
	// Trace controls stack-trace parsing.
	Trace TraceConfig `koanf:"trace"`

	// Source controls how frames map onto source files.
	Source SourceConfig `koanf:"source"`

	// History controls commit-history extraction.
	History HistoryConfig `koanf:"history"`

	// Links holds pull-request URL templates.
	Links LinkConfig `koanf:"links"`

	// Analysis controls pipeline execution.
	Analysis AnalysisConfig `koanf:"analysis"`

	// Exclude defines file exclusion patterns for the source search.
	Exclude ExcludeConfig `koanf:"exclude"`

	// Output controls output formatting.
	Output OutputConfig `koanf:"output"`
}

// TraceConfig controls stack-trace parsing.
type TraceConfig struct {
	// Markers are the locale-specific frame prefixes, e.g. "at ".
	Markers []string `koanf:"markers"`
	// NoisePrefixes are top-level namespace segments treated as
	// runtime/base-library noise rather than user code.
	NoisePrefixes []string `koanf:"noise_prefixes"`
}

// SourceConfig controls source file resolution.
type SourceConfig struct {
	// Extension is the source file extension, including the dot.
	Extension string `koanf:"extension"`
}

// HistoryConfig controls commit-history extraction.
type HistoryConfig struct {
	// RetentionDays is the trailing window beyond which commits are
	// discarded regardless of the user's date filter.
	RetentionDays int `koanf:"retention_days"`
	// GitTimeoutSeconds bounds a single git invocation.
	GitTimeoutSeconds int `koanf:"git_timeout_seconds"`
}

// LinkConfig holds pull-request URL templates. Each template receives the
// numeric PR identifier via %s.
type LinkConfig struct {
	GitHubPRURL string `koanf:"github_pr_url"`
	AzurePRURL  string `koanf:"azure_pr_url"`
}

// AnalysisConfig controls pipeline execution.
type AnalysisConfig struct {
	// Workers is the bounded fan-out across independent frames. 1 keeps
	// the strictly sequential reference behavior.
	Workers int `koanf:"workers"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown, yaml
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Trace: TraceConfig{
			Markers:       []string{"at "},
			NoisePrefixes: []string{"System", "Microsoft"},
		},
		Source: SourceConfig{
			Extension: ".cs",
		},
		History: HistoryConfig{
			RetentionDays:     365,
			GitTimeoutSeconds: 300,
		},
		Links: LinkConfig{
			GitHubPRURL: "https://github.com/org/repo/pull/%s",
			AzurePRURL:  "https://dev.azure.com/org/project/_git/repo/pullrequest/%s",
		},
		Analysis: AnalysisConfig{
			Workers: 1,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"**/obj/**",
				"**/bin/**",
			},
			Dirs: []string{
				".git",
				"node_modules",
				"packages",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"culprit.toml",
		"culprit.yaml",
		"culprit.yml",
		"culprit.json",
		".culprit.toml",
		".culprit.yaml",
		".culprit.yml",
		".culprit.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			cfg, err := Load(name)
			if err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}
