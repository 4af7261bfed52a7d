package commands

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowcast-dev/flowcast/internal/projection"
)

func newProjectCommand(settings Settings, logger *logrus.Logger) *cobra.Command {
	var opts generateOptions
	var format string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project cash flow over a date window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProject(cmd, &opts, format, logger)
		},
	}
	opts.register(cmd, settings)
	cmd.Flags().StringVar(&format, "format", "table", "table or csv")
	return cmd
}

func runProject(cmd *cobra.Command, opts *generateOptions, format string, logger *logrus.Logger) error {
	if format != "table" && format != "csv" {
		return fmt.Errorf("unknown format %q", format)
	}

	sess, err := opts.load(time.Now())
	if err != nil {
		return err
	}
	sess.warnForeignScenarios(logger)

	res, summary, err := sess.run()
	if err != nil {
		return err
	}
	sess.logRun(logger, res)

	out := cmd.OutOrStdout()
	if format == "csv" {
		return projection.WritePoints(out, res.Points)
	}
	renderPoints(out, res.Points)
	if summary != nil {
		renderImpact(out, *summary)
	}
	return nil
}
