package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/nixspect/nixspect/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "nixspect",
		Usage:   "Pretty diagnostics and auto-fixes for Nix code",
		Version: version.Version(),
		Description: `nixspect runs nixf-tidy over Nix files and renders its diagnostics
as readable, compiler-style reports with source excerpts, underlines,
and labels. It can also apply nixf-tidy's suggested fixes in place.

Examples:
  nixspect check default.nix
  nixspect check --fix ./modules
  nixspect check -f sarif -o report.sarif .`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("NIXSPECT_VERBOSE"),
			},
		},
		Before: func(_ context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			logrus.SetOutput(os.Stderr)
			return nil, nil
		},
		Commands: []*cli.Command{
			checkCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
