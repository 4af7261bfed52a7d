// Package projection aggregates cash events into running-balance time
// series, per entity or consolidated across the group.
package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/expense"
	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/overrides"
	"github.com/flowcast-dev/flowcast/internal/period"
	"github.com/flowcast-dev/flowcast/internal/revenue"
)

// ErrNoBalance marks a projection aborted because an entity has no bank
// balance at or before the window start. Match with errors.Is.
var ErrNoBalance = errors.New("no bank balance")

// Request scopes one projection run.
type Request struct {
	Entity    string // a configured entity or model.Consolidated
	Window    model.Window
	Timeframe model.Timeframe
	Scenario  model.ReliabilityScenario
}

// Inputs are the fully materialized records a projection consumes. The
// engine never mutates them.
type Inputs struct {
	Customers []model.CustomerContract
	Vendors   []model.VendorContract
	Balances  []model.BankBalance
	Overrides []model.PaymentOverride
}

// Result is one generated projection.
type Result struct {
	Points []model.ProjectionDataPoint
	// Events are the window's resolved events for the requested scope,
	// date-sorted. For consolidated runs they are merged across entities
	// for display only; the Points never mix entities.
	Events []model.CashEvent
	// Unmatched overrides referenced no expanded event and were no-ops.
	Unmatched []model.PaymentOverride
}

// EventsForPeriod returns the events contributing to the period
// [start, end], both bounds inclusive.
func (r *Result) EventsForPeriod(start, end time.Time) []model.CashEvent {
	var out []model.CashEvent
	for _, ev := range r.Events {
		if !ev.Date.Before(start) && !ev.Date.After(end) {
			out = append(out, ev)
		}
	}
	return out
}

// Projector generates projections from contract records.
type Projector struct {
	cfg     *config.Config
	revenue *revenue.Expander
	expense *expense.Scheduler
}

// NewProjector creates a Projector.
func NewProjector(cfg *config.Config) *Projector {
	return &Projector{
		cfg:     cfg,
		revenue: revenue.NewExpander(cfg),
		expense: expense.NewScheduler(cfg),
	}
}

// Generate expands the inputs, resolves overrides, and buckets the
// window's events into a running-balance series.
func (p *Projector) Generate(req Request, in Inputs) (*Result, error) {
	return p.generate(req, in, nil)
}

// GenerateWithOverlay is Generate plus synthetic scenario events added
// after override resolution. Overlay events are never override
// candidates.
func (p *Projector) GenerateWithOverlay(req Request, in Inputs, overlay []model.CashEvent) (*Result, error) {
	return p.generate(req, in, overlay)
}

func (p *Projector) generate(req Request, in Inputs, overlay []model.CashEvent) (*Result, error) {
	entities, err := p.validateRequest(req)
	if err != nil {
		return nil, err
	}
	if err := p.validateTags(in, overlay); err != nil {
		return nil, err
	}

	scoped := scopeInputs(in, entities)

	raw, err := p.revenue.Expand(scoped.Customers, req.Window, req.Scenario)
	if err != nil {
		return nil, err
	}
	vendorEvents, err := p.expense.Expand(scoped.Vendors, req.Window)
	if err != nil {
		return nil, err
	}
	payroll, err := p.expense.PayrollEvents(req.Window)
	if err != nil {
		return nil, err
	}
	for _, ev := range payroll {
		if containsString(entities, ev.Entity) {
			raw = append(raw, ev)
		}
	}
	raw = append(raw, vendorEvents...)

	resolver, err := overrides.NewResolver(scoped.Overrides)
	if err != nil {
		return nil, err
	}
	resolved, unmatched := resolver.Apply(raw)

	resolved = append(resolved, overlay...)

	// Final window clip: moves and overlays may land outside the window.
	events := make([]model.CashEvent, 0, len(resolved))
	for _, ev := range resolved {
		if req.Window.Contains(ev.Date) {
			events = append(events, ev)
		}
	}
	model.SortEvents(events)

	ends, err := period.Ends(req.Window.Start, req.Window.End, req.Timeframe)
	if err != nil {
		return nil, err
	}

	var series [][]model.ProjectionDataPoint
	for _, entity := range entities {
		seed, err := seedBalance(in.Balances, entity, req.Window.Start)
		if err != nil {
			return nil, err
		}
		series = append(series, bucket(req, entity, seed, filterEntity(events, entity), ends))
	}

	points := series[0]
	if req.Entity == model.Consolidated {
		points = consolidate(req, series, ends)
	}

	return &Result{Points: points, Events: events, Unmatched: unmatched}, nil
}

func (p *Projector) validateRequest(req Request) ([]string, error) {
	if req.Window.End.Before(req.Window.Start) {
		return nil, fmt.Errorf("projection window: end %s before start %s",
			req.Window.End.Format("2006-01-02"), req.Window.Start.Format("2006-01-02"))
	}
	if !req.Timeframe.Valid() {
		return nil, fmt.Errorf("projection: unknown timeframe %q", req.Timeframe)
	}
	if req.Scenario != model.Optimistic && req.Scenario != model.Realistic {
		return nil, fmt.Errorf("projection: unknown reliability scenario %q", req.Scenario)
	}
	if req.Entity == model.Consolidated {
		return p.cfg.EntityNames(), nil
	}
	if !p.cfg.HasEntity(req.Entity) {
		return nil, fmt.Errorf("projection: entity %q: %w", req.Entity, model.ErrUnknownEntity)
	}
	return []string{req.Entity}, nil
}

// validateTags rejects any record carrying an entity outside the
// configured set, regardless of the requested scope.
func (p *Projector) validateTags(in Inputs, overlay []model.CashEvent) error {
	check := func(kind string, id int, entity string) error {
		if !p.cfg.HasEntity(entity) {
			return fmt.Errorf("%s %d: entity %q: %w", kind, id, entity, model.ErrUnknownEntity)
		}
		return nil
	}
	for _, c := range in.Customers {
		if err := check("customer", c.ID, c.Entity); err != nil {
			return err
		}
	}
	for _, v := range in.Vendors {
		if err := check("vendor", v.ID, v.Entity); err != nil {
			return err
		}
	}
	for _, b := range in.Balances {
		if !p.cfg.HasEntity(b.Entity) {
			return fmt.Errorf("bank balance dated %s: entity %q: %w",
				b.Date.Format("2006-01-02"), b.Entity, model.ErrUnknownEntity)
		}
	}
	for _, o := range in.Overrides {
		if err := check("override for contract", o.ContractID, o.Entity); err != nil {
			return err
		}
	}
	for _, ev := range overlay {
		if !p.cfg.HasEntity(ev.Entity) {
			return fmt.Errorf("overlay event %s: entity %q: %w",
				ev.Date.Format("2006-01-02"), ev.Entity, model.ErrUnknownEntity)
		}
	}
	return nil
}

func scopeInputs(in Inputs, entities []string) Inputs {
	scoped := Inputs{Balances: in.Balances}
	for _, c := range in.Customers {
		if containsString(entities, c.Entity) {
			scoped.Customers = append(scoped.Customers, c)
		}
	}
	for _, v := range in.Vendors {
		if containsString(entities, v.Entity) {
			scoped.Vendors = append(scoped.Vendors, v)
		}
	}
	for _, o := range in.Overrides {
		if containsString(entities, o.Entity) {
			scoped.Overrides = append(scoped.Overrides, o)
		}
	}
	return scoped
}

// seedBalance returns the most recent balance at or before asOf.
func seedBalance(balances []model.BankBalance, entity string, asOf time.Time) (decimal.Decimal, error) {
	var best *model.BankBalance
	for i, b := range balances {
		if b.Entity != entity || b.Date.After(asOf) {
			continue
		}
		if best == nil || b.Date.After(best.Date) {
			best = &balances[i]
		}
	}
	if best == nil {
		return decimal.Decimal{}, fmt.Errorf("entity %q: %w at or before %s",
			entity, ErrNoBalance, asOf.Format("2006-01-02"))
	}
	return best.Balance, nil
}

// bucket sums one entity's events into the period series. events must be
// date-sorted and already clipped to the window.
func bucket(req Request, entity string, seed decimal.Decimal, events []model.CashEvent, ends []time.Time) []model.ProjectionDataPoint {
	points := make([]model.ProjectionDataPoint, 0, len(ends))
	starting := seed
	next := 0
	for _, end := range ends {
		inflows := decimal.Zero
		outflows := decimal.Zero
		for next < len(events) && !events[next].Date.After(end) {
			ev := events[next]
			if ev.Direction == model.Inflow {
				inflows = inflows.Add(ev.Amount)
			} else {
				outflows = outflows.Add(ev.Amount)
			}
			next++
		}
		ending := starting.Add(inflows).Sub(outflows)
		points = append(points, model.ProjectionDataPoint{
			Date:         end,
			StartingCash: starting,
			Inflows:      inflows,
			Outflows:     outflows,
			EndingCash:   ending,
			Entity:       entity,
			Timeframe:    req.Timeframe,
			Scenario:     req.Scenario,
			IsNegative:   ending.IsNegative(),
		})
		starting = ending
	}
	return points
}

// consolidate sums per-entity series sharing identical period boundaries
// into the group view. It never merges raw events.
func consolidate(req Request, series [][]model.ProjectionDataPoint, ends []time.Time) []model.ProjectionDataPoint {
	points := make([]model.ProjectionDataPoint, 0, len(ends))
	for i, end := range ends {
		starting := decimal.Zero
		inflows := decimal.Zero
		outflows := decimal.Zero
		ending := decimal.Zero
		for _, s := range series {
			starting = starting.Add(s[i].StartingCash)
			inflows = inflows.Add(s[i].Inflows)
			outflows = outflows.Add(s[i].Outflows)
			ending = ending.Add(s[i].EndingCash)
		}
		points = append(points, model.ProjectionDataPoint{
			Date:         end,
			StartingCash: starting,
			Inflows:      inflows,
			Outflows:     outflows,
			EndingCash:   ending,
			Entity:       model.Consolidated,
			Timeframe:    req.Timeframe,
			Scenario:     req.Scenario,
			IsNegative:   ending.IsNegative(),
		})
	}
	return points
}

func filterEntity(events []model.CashEvent, entity string) []model.CashEvent {
	var out []model.CashEvent
	for _, ev := range events {
		if ev.Entity == entity {
			out = append(out, ev)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
