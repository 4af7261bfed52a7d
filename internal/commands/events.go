package commands

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowcast-dev/flowcast/internal/period"
	"github.com/flowcast-dev/flowcast/internal/projection"
)

func newEventsCommand(settings Settings, logger *logrus.Logger) *cobra.Command {
	var opts generateOptions
	var at string
	var format string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the expected payments inside one projection period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvents(cmd, &opts, at, format, logger)
		},
	}
	opts.register(cmd, settings)
	cmd.Flags().StringVar(&at, "at", "", "date inside the period to inspect, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&format, "format", "table", "table or csv")
	return cmd
}

func runEvents(cmd *cobra.Command, opts *generateOptions, at, format string, logger *logrus.Logger) error {
	if format != "table" && format != "csv" {
		return fmt.Errorf("unknown format %q", format)
	}

	now := time.Now()
	target := now.UTC().Truncate(24 * time.Hour)
	if at != "" {
		var err error
		if target, err = time.Parse(dateLayout, at); err != nil {
			return fmt.Errorf("parsing --at %q: %w", at, err)
		}
	}

	sess, err := opts.load(now)
	if err != nil {
		return err
	}
	if !sess.req.Window.Contains(target) {
		return fmt.Errorf("date %s outside the projection window %s..%s",
			target.Format(dateLayout),
			sess.req.Window.Start.Format(dateLayout),
			sess.req.Window.End.Format(dateLayout))
	}
	sess.warnForeignScenarios(logger)

	res, _, err := sess.run()
	if err != nil {
		return err
	}
	sess.logRun(logger, res)

	// Points are ordered by period end; the first end at or past the
	// target bounds the period that holds it.
	for _, pt := range res.Points {
		if pt.Date.Before(target) {
			continue
		}
		window, label, err := period.Range(pt.Date, sess.req.Timeframe, sess.req.Window.Start)
		if err != nil {
			return err
		}
		events := res.EventsForPeriod(window.Start, window.End)

		out := cmd.OutOrStdout()
		if format == "csv" {
			return projection.WriteEvents(out, events)
		}
		fmt.Fprintf(out, "%s: %d event(s)\n", label, len(events))
		if len(events) > 0 {
			renderEvents(out, events)
		}
		return nil
	}
	return fmt.Errorf("no projection period contains %s", target.Format(dateLayout))
}
