package commands

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/projection"
	"github.com/flowcast-dev/flowcast/internal/scenario"
)

func newBreakevenCommand(settings Settings, logger *logrus.Logger) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "breakeven",
		Short: "Judge whether a scenario is affordable, and what would make it work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBreakeven(cmd, &opts, logger)
		},
	}
	opts.register(cmd, settings)
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func runBreakeven(cmd *cobra.Command, opts *generateOptions, logger *logrus.Logger) error {
	sess, err := opts.load(time.Now())
	if err != nil {
		return err
	}
	sess.warnForeignScenarios(logger)

	start, err := earliestChangeStart(sess.scenarios)
	if err != nil {
		return err
	}

	base, err := projection.NewProjector(sess.cfg).Generate(sess.req, sess.inputs())
	if err != nil {
		return err
	}
	sess.logRun(logger, base)

	overlay, err := scenario.NewCalculator(sess.cfg).Combine(sess.scenarios, sess.req.Window)
	if err != nil {
		return err
	}

	res, err := scenario.BreakEven(base.Points, sess.req.Window.Start, overlay, start)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Affordable {
		fmt.Fprintf(out, "Affordable from %s: the projection stays non-negative.\n",
			res.EarliestStart.Format(dateLayout))
		return nil
	}

	fmt.Fprintln(out, "Not affordable as planned.")
	fmt.Fprintf(out, "  First shortfall:  %s\n", res.FirstNegative.Format(dateLayout))
	fmt.Fprintf(out, "  Worst deficit:    %s\n", res.WorstDeficit.StringFixed(2))
	fmt.Fprintf(out, "  Extra revenue:    %s per month from %s would cover it\n",
		res.RequiredMonthlyRevenue.StringFixed(2), start.Format(dateLayout))
	if res.EarliestStart.IsZero() {
		fmt.Fprintln(out, "  Delayed start:    none inside the projection window works")
	} else {
		fmt.Fprintf(out, "  Delayed start:    %s\n", res.EarliestStart.Format(dateLayout))
	}
	return nil
}

func earliestChangeStart(scenarios []model.Scenario) (time.Time, error) {
	var start time.Time
	for _, sc := range scenarios {
		for _, ch := range sc.Changes {
			if ch.Start.IsZero() {
				continue
			}
			if start.IsZero() || ch.Start.Before(start) {
				start = ch.Start
			}
		}
	}
	if start.IsZero() {
		return time.Time{}, fmt.Errorf("selected scenarios carry no dated changes")
	}
	return start, nil
}
