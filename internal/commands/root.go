// Package commands wires the projection engine into the flowcast CLI.
package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowcast-dev/flowcast/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered. Environment settings are read once, here, and feed the
// flag defaults.
func NewRootCommand() (*cobra.Command, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(settings.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	rootCmd := &cobra.Command{
		Use:     "flowcast",
		Short:   "Cash flow projections for multi-entity contract portfolios",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.SetOutput(cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newProjectCommand(settings, logger))
	rootCmd.AddCommand(newEventsCommand(settings, logger))
	rootCmd.AddCommand(newBreakevenCommand(settings, logger))

	return rootCmd, nil
}
