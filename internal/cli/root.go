// Package cli implements the Cobra command the mlc binary runs: a single
// root command (MLC has one operation, not a subcommand tree) whose RunE
// resolves the configuration, sets up logging and runs the check.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mlc/internal/app"
	"mlc/internal/buildinfo"
	"mlc/internal/config"
	"mlc/internal/pipeline"
)

var flagValues *FlagValues

var rootCmd = &cobra.Command{
	Use:           "mlc [DIR]",
	Short:         "Markup Link Checker -- find broken links in Markdown and HTML",
	Version:       buildinfo.Version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

func init() {
	flagValues = BindFlags(rootCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	directory := "./"
	if len(args) == 1 {
		directory = args[0]
	}

	cliFlags, err := changedFlags(cmd, flagValues, directory)
	if err != nil {
		return pipeline.NewError("parsing CLI flags", err)
	}

	cfg, err := config.Resolve(config.ResolveOptions{
		Dir:      directory,
		CLIFlags: cliFlags,
	})
	if err != nil {
		return err
	}

	level := config.ResolveLogLevel(cfg.Debug, false)
	config.SetupLogging(level, config.ResolveLogFormat())
	slog.Debug("logging initialized", "level", level)

	report, err := app.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if report.HasErrors() {
		// The reporter has already printed the per-link breakdown and
		// summary to stdout; this error only carries the exit code.
		return &pipeline.MlcError{Code: pipeline.ExitError}
	}
	return nil
}

// Execute runs the root command and returns the process exit code:
// ExitSuccess when no error occurred, or the code carried by a *MlcError
// (ExitError for both fatal configuration errors and link-check failures).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var mlcErr *pipeline.MlcError
		if errors.As(err, &mlcErr) {
			if mlcErr.Message != "" {
				fmt.Println(mlcErr.Error())
			}
			return mlcErr.Code
		}
		slog.Error(err.Error())
		return pipeline.ExitError
	}
	return pipeline.ExitSuccess
}

// RootCmd returns the root cobra.Command, for tests and completion wiring.
func RootCmd() *cobra.Command {
	return rootCmd
}
