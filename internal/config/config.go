// Package config provides configuration loading and discovery for nixspect.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (NIXSPECT_* prefix)
//  3. Config file (closest .nixspect.toml or nixspect.toml)
//  4. Built-in defaults
//
// Config file discovery follows a cascading pattern similar to Ruff:
// starting from the target file's directory, walk up the filesystem
// until a config file is found. The closest config wins (no merging).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/nixspect/nixspect/internal/diag"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".nixspect.toml", "nixspect.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "NIXSPECT_"

// Config represents the complete nixspect configuration.
type Config struct {
	// Analyzer configures the nixf-tidy invocation.
	Analyzer AnalyzerConfig `json:"analyzer" koanf:"analyzer"`

	// Rules configures diagnostic filtering.
	Rules RulesConfig `json:"rules" koanf:"rules"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// Fix configures automatic fix application.
	Fix FixConfig `json:"fix" koanf:"fix"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// AnalyzerConfig configures how nixf-tidy is located and invoked.
//
// Example TOML configuration:
//
//	[analyzer]
//	path = "/opt/nixf/bin/nixf-tidy"
//	variable-lookup = true
type AnalyzerConfig struct {
	// Path is an explicit nixf-tidy binary path. Empty means resolve via
	// NIXF_TIDY_PATH and then PATH.
	Path string `json:"path,omitempty" koanf:"path"`

	// VariableLookup enables nixf-tidy's variable lookup analysis.
	VariableLookup bool `json:"variable-lookup,omitempty" koanf:"variable-lookup"`
}

// RulesConfig configures diagnostic filtering.
//
// Example TOML configuration:
//
//	[rules]
//	ignore = ["sema-unused-def-lambda-noarg-formal"]
type RulesConfig struct {
	// Ignore lists diagnostic short names to suppress.
	Ignore []string `json:"ignore,omitempty" koanf:"ignore"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format: text, json, or sarif.
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output: stdout, stderr, or a file path.
	Path string `json:"path,omitempty" koanf:"path"`

	// FailLevel sets the minimum severity that causes a non-zero exit code.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`
}

// FixConfig configures automatic fix application.
type FixConfig struct {
	// Enabled applies suggested fixes in place instead of only reporting.
	Enabled bool `json:"enabled,omitempty" koanf:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			VariableLookup: true,
		},
		Output: OutputConfig{
			Format:    "text",
			Path:      "stdout",
			FailLevel: "note", // Any diagnostic causes exit code 1
		},
	}
}

// Load loads configuration for a target file path.
// It discovers the closest config file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath))
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath)
}

// loadWithConfigPath is an internal helper that loads config with an optional config file path.
func loadWithConfigPath(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load environment variables (NIXSPECT_* prefix)
	// NIXSPECT_OUTPUT_FAIL_LEVEL -> output.fail-level
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return &cfg, nil
}

// Validate rejects values that no component would accept downstream.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "sarif":
	default:
		return fmt.Errorf("invalid output format %q (valid: text, json, sarif)", c.Output.Format)
	}
	// "none" opts out of diagnostic-driven failure entirely.
	if c.Output.FailLevel != "" && c.Output.FailLevel != "none" {
		if _, err := diag.ParseSeverity(c.Output.FailLevel); err != nil {
			return fmt.Errorf("invalid fail-level: %w", err)
		}
	}
	return nil
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated equivalents.
var knownHyphenatedKeys = map[string]string{
	"variable.lookup": "variable-lookup",
	"fail.level":      "fail-level",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"analyzer": {},
	"rules":    {},
	"output":   {},
	"fix":      {},
	// Compatibility aliases for the most common settings.
	"format":     {},
	"fail-level": {},
}

// envKeyTransform converts environment variable names to config keys.
// NIXSPECT_OUTPUT_FORMAT -> output.format
// NIXSPECT_OUTPUT_FAIL_LEVEL -> output.fail-level
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	// Promote bare aliases into the output section.
	switch s {
	case "format":
		s = "output.format"
	case "fail-level":
		s = "output.fail-level"
	}

	return s, v
}

// Discover finds the closest config file for a target file path.
// It walks up the directory tree from the target's directory,
// checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := filepath.Dir(absPath)

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
