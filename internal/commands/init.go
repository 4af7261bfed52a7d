package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/portfolio"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter configuration and portfolio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir)
		},
	}
}

func runInit(cmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfgPath := filepath.Join(dir, "flowcast.yaml")
	portPath := filepath.Join(dir, "portfolio.yaml")
	for _, p := range []string{cfgPath, portPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("%s already exists", p)
		}
	}

	if err := config.Save(cfgPath, config.Default()); err != nil {
		return err
	}
	if err := os.WriteFile(portPath, []byte(portfolio.ExampleYAML), 0o644); err != nil {
		return fmt.Errorf("writing portfolio: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized flowcast project at %s\n", dir)
	return nil
}
