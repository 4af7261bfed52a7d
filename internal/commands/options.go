package commands

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/period"
	"github.com/flowcast-dev/flowcast/internal/portfolio"
	"github.com/flowcast-dev/flowcast/internal/projection"
	"github.com/flowcast-dev/flowcast/internal/scenario"
)

const dateLayout = "2006-01-02"

// generateOptions are the flags shared by every projection-reading
// command.
type generateOptions struct {
	configPath    string
	portfolioPath string
	entity        string
	from          string
	to            string
	timeframe     string
	reliability   string
	scenarios     []string
}

func (o *generateOptions) register(cmd *cobra.Command, s Settings) {
	cmd.Flags().StringVar(&o.configPath, "config", s.Config, "configuration file")
	cmd.Flags().StringVar(&o.portfolioPath, "portfolio", s.Portfolio, "portfolio file")
	cmd.Flags().StringVar(&o.entity, "entity", model.Consolidated, "entity to project")
	cmd.Flags().StringVar(&o.from, "from", "", "window start YYYY-MM-DD (default: first of the current month)")
	cmd.Flags().StringVar(&o.to, "to", "", "window end YYYY-MM-DD (default: 12 months from the start)")
	cmd.Flags().StringVar(&o.timeframe, "timeframe", string(model.Monthly), "daily, weekly, monthly, or quarterly")
	cmd.Flags().StringVar(&o.reliability, "reliability", string(model.Realistic), "optimistic or realistic payment timing")
	cmd.Flags().StringSliceVar(&o.scenarios, "scenario", nil, "saved scenario to overlay (repeatable)")
}

// session is everything a projection command needs once the flags are
// resolved against the config and portfolio files.
type session struct {
	cfg       *config.Config
	snap      *portfolio.Snapshot
	req       projection.Request
	scenarios []model.Scenario
}

func (o *generateOptions) load(now time.Time) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	snap, err := portfolio.Load(o.portfolioPath, cfg)
	if err != nil {
		return nil, err
	}

	window, err := o.window(now)
	if err != nil {
		return nil, err
	}
	tf := model.Timeframe(o.timeframe)
	if !tf.Valid() {
		return nil, fmt.Errorf("unknown timeframe %q", o.timeframe)
	}
	rel := model.ReliabilityScenario(o.reliability)
	if rel != model.Optimistic && rel != model.Realistic {
		return nil, fmt.Errorf("unknown reliability scenario %q", o.reliability)
	}

	var scenarios []model.Scenario
	for _, name := range o.scenarios {
		sc, ok := snap.Scenario(name)
		if !ok {
			return nil, fmt.Errorf("scenario %q not found in %s", name, o.portfolioPath)
		}
		scenarios = append(scenarios, sc)
	}

	return &session{
		cfg:  cfg,
		snap: snap,
		req: projection.Request{
			Entity:    o.entity,
			Window:    window,
			Timeframe: tf,
			Scenario:  rel,
		},
		scenarios: scenarios,
	}, nil
}

func (o *generateOptions) window(now time.Time) (model.Window, error) {
	start := period.MonthStart(now.UTC())
	if o.from != "" {
		var err error
		if start, err = time.Parse(dateLayout, o.from); err != nil {
			return model.Window{}, fmt.Errorf("parsing --from %q: %w", o.from, err)
		}
	}
	end := period.AddMonths(start, 12).AddDate(0, 0, -1)
	if o.to != "" {
		var err error
		if end, err = time.Parse(dateLayout, o.to); err != nil {
			return model.Window{}, fmt.Errorf("parsing --to %q: %w", o.to, err)
		}
	}
	if end.Before(start) {
		return model.Window{}, fmt.Errorf("--to %s before --from %s",
			end.Format(dateLayout), start.Format(dateLayout))
	}
	return model.Window{Start: start, End: end}, nil
}

func (s *session) inputs() projection.Inputs {
	return projection.Inputs{
		Customers: s.snap.Customers,
		Vendors:   s.snap.Vendors,
		Balances:  s.snap.Balances,
		Overrides: s.snap.Overrides,
	}
}

// run generates the projection. With scenarios stacked it also produces
// the baseline and the impact summary of the difference.
func (s *session) run() (*projection.Result, *scenario.Summary, error) {
	p := projection.NewProjector(s.cfg)
	if len(s.scenarios) == 0 {
		res, err := p.Generate(s.req, s.inputs())
		return res, nil, err
	}

	overlay, err := scenario.NewCalculator(s.cfg).Combine(s.scenarios, s.req.Window)
	if err != nil {
		return nil, nil, err
	}
	base, err := p.Generate(s.req, s.inputs())
	if err != nil {
		return nil, nil, err
	}
	res, err := p.GenerateWithOverlay(s.req, s.inputs(), overlay)
	if err != nil {
		return nil, nil, err
	}
	summary := scenario.Impact(base.Points, res.Points)
	return res, &summary, nil
}

// warnForeignScenarios flags selections that cannot show up in the
// requested scope: a single-entity projection silently drops another
// entity's overlay, which is usually a mistyped --entity.
func (s *session) warnForeignScenarios(logger *logrus.Logger) {
	if s.req.Entity == model.Consolidated {
		return
	}
	for _, sc := range s.scenarios {
		if sc.Entity != s.req.Entity {
			logger.WithFields(logrus.Fields{
				"scenario": sc.Name,
				"entity":   sc.Entity,
				"scope":    s.req.Entity,
			}).Warn("scenario targets an entity outside the projection scope")
		}
	}
}

func (s *session) logRun(logger *logrus.Logger, res *projection.Result) {
	logger.WithFields(logrus.Fields{
		"entity":    s.req.Entity,
		"from":      s.req.Window.Start.Format(dateLayout),
		"to":        s.req.Window.End.Format(dateLayout),
		"timeframe": s.req.Timeframe,
		"points":    len(res.Points),
		"events":    len(res.Events),
	}).Info("projection generated")
	for _, o := range res.Unmatched {
		logger.WithField("override", o.Key()).Debug("override matched no expected payment")
	}
}
