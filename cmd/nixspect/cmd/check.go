package cmd

import (
	stdcontext "context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/nixspect/nixspect/internal/analyzer"
	"github.com/nixspect/nixspect/internal/config"
	"github.com/nixspect/nixspect/internal/diag"
	"github.com/nixspect/nixspect/internal/reporter"
	"github.com/nixspect/nixspect/internal/runner"
	"github.com/nixspect/nixspect/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No diagnostics (or below fail-level threshold)
	ExitDiagnostics = 1 // Diagnostics found at or above fail-level
	ExitConfigError = 2 // Config, analyzer, or processing error
	ExitNoFiles     = 3 // No Nix files found
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Analyze Nix file(s) and report diagnostics",
		ArgsUsage: "[FILE|DIR...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover)",
			},
			&cli.StringFlag{
				Name:    "nixf-tidy-path",
				Usage:   "Path to the nixf-tidy binary (default: $NIXF_TIDY_PATH, then $PATH)",
				Sources: cli.EnvVars("NIXSPECT_ANALYZER_PATH"),
			},
			&cli.BoolFlag{
				Name:    "variable-lookup",
				Usage:   "Enable nixf-tidy variable lookup analysis (default: true)",
				Value:   true,
				Sources: cli.EnvVars("NIXSPECT_ANALYZER_VARIABLE_LOOKUP"),
			},
			&cli.StringSliceFlag{
				Name:    "ignore",
				Aliases: []string{"i"},
				Usage:   "Suppress diagnostics by short name (can be repeated)",
				Sources: cli.EnvVars("NIXSPECT_RULES_IGNORE"),
			},
			&cli.BoolFlag{
				Name:    "fix",
				Usage:   "Apply suggested fixes in place",
				Sources: cli.EnvVars("NIXSPECT_FIX_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, sarif",
				Sources: cli.EnvVars("NIXSPECT_FORMAT", "NIXSPECT_OUTPUT_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
				Sources: cli.EnvVars("NIXSPECT_OUTPUT_PATH"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
			&cli.StringFlag{
				Name:    "fail-level",
				Usage:   "Minimum severity to cause non-zero exit: error, warning, note, none",
				Sources: cli.EnvVars("NIXSPECT_OUTPUT_FAIL_LEVEL"),
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Number of files to process concurrently (0 = CPU count)",
				Sources: cli.EnvVars("NIXSPECT_JOBS"),
			},
		},
		Action: runCheck,
	}
}

// runCheck is the action handler for the check command.
func runCheck(ctx stdcontext.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	files, err := discoverFiles(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitNoFiles)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no Nix files found in %s\n", strings.Join(inputs, ", "))
		return cli.Exit("", ExitNoFiles)
	}

	cfg, err := loadConfig(cmd, files[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	an, err := analyzer.New(cfg.Analyzer.Path, cfg.Analyzer.VariableLookup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	result, err := runner.Run(ctx, files, runner.Options{
		Analyzer: an,
		Ignore:   diag.NewIgnoreSet(cfg.Rules.Ignore...),
		Fix:      cfg.Fix.Enabled,
		Jobs:     int(cmd.Int("jobs")),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "Error: %v\n", failure.Err)
	}

	if cfg.Fix.Enabled && result.FilesFixed > 0 {
		fmt.Fprintf(os.Stderr, "Fixed %d issues in %d files\n",
			result.EditsApplied, result.FilesFixed)
	}

	if err := writeReport(cmd, cfg, result, len(files)); err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		return cli.Exit("", ExitConfigError)
	}

	exitCode := determineExitCode(result, cfg.Output.FailLevel)
	if exitCode != ExitSuccess {
		return cli.Exit("", exitCode)
	}
	return nil
}

// writeReport formats and writes the diagnostic report.
func writeReport(cmd *cli.Command, cfg *config.Config, result *runner.Result, filesScanned int) error {
	formatType, err := reporter.ParseFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	writer, closeWriter, err := reporter.GetWriter(cfg.Output.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output: %v\n", err)
		}
	}()

	opts := reporter.Options{
		Format:      formatType,
		Writer:      writer,
		ToolName:    "nixspect",
		ToolVersion: version.Version(),
		ToolURI:     "https://github.com/nixspect/nixspect",
	}
	colorOff := false
	switch {
	case cmd.IsSet("no-color") && cmd.Bool("no-color"):
		opts.Color = &colorOff
	case cfg.Output.Path != "stdout" && cfg.Output.Path != "stderr" && cfg.Output.Path != "":
		// Reports written to files never carry escape sequences.
		opts.Color = &colorOff
	case cfg.Output.Path == "stdout" && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()):
		opts.Color = &colorOff
	}

	rep, err := reporter.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create reporter: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	metadata := reporter.ReportMetadata{FilesScanned: filesScanned}
	if err := rep.Report(result.Reports, metadata); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write output: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	return nil
}

// loadConfig loads configuration for the run, applying CLI overrides.
// Discovery is anchored at the first target so one config governs the run.
func loadConfig(cmd *cli.Command, firstTarget string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath := cmd.String("config"); configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load(firstTarget)
	}
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("nixf-tidy-path") {
		cfg.Analyzer.Path = cmd.String("nixf-tidy-path")
	}
	if cmd.IsSet("variable-lookup") {
		cfg.Analyzer.VariableLookup = cmd.Bool("variable-lookup")
	}
	if cmd.IsSet("ignore") {
		cfg.Rules.Ignore = append(cfg.Rules.Ignore, cmd.StringSlice("ignore")...)
	}
	if cmd.IsSet("fix") {
		cfg.Fix.Enabled = cmd.Bool("fix")
	}
	if cmd.IsSet("format") {
		cfg.Output.Format = cmd.String("format")
	}
	if cmd.IsSet("output") {
		cfg.Output.Path = cmd.String("output")
	}
	if cmd.IsSet("fail-level") {
		cfg.Output.FailLevel = cmd.String("fail-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// discoverFiles expands the given paths into a list of Nix files.
// Explicit files are taken as-is; directories are walked for *.nix.
func discoverFiles(inputs []string) ([]string, error) {
	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", input, err)
		}
		if !info.IsDir() {
			files = append(files, input)
			continue
		}
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// Don't descend into hidden directories.
				if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ".nix") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", input, err)
		}
	}
	return files, nil
}

// determineExitCode returns the appropriate exit code based on remaining
// diagnostics and fail-level.
func determineExitCode(result *runner.Result, failLevel string) int {
	// "none" means never fail due to diagnostics
	if failLevel == "none" {
		return ExitSuccess
	}

	threshold, err := parseFailLevel(failLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --fail-level %q\n", failLevel)
		return ExitConfigError
	}

	most, found := result.MaxSeverity()
	if !found {
		return ExitSuccess
	}
	if most.IsAtLeast(threshold) {
		return ExitDiagnostics
	}
	return ExitSuccess
}

// parseFailLevel parses a fail-level string to a Severity.
func parseFailLevel(level string) (diag.Severity, error) {
	switch level {
	case "", "note":
		// Default to "note" (any diagnostic fails)
		return diag.SeverityNote, nil
	default:
		return diag.ParseSeverity(level)
	}
}
