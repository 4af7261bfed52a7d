// Package scenario expands what-if business changes into synthetic cash
// events and measures their effect on a baseline projection.
package scenario

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/period"
)

// Source labels carried by synthetic events.
const (
	sourceHiring       = "New hires"
	sourceNewBusiness  = "New clients"
	sourceCustomerLoss = "Customer loss"
	sourceInvestment   = "Investment"
)

// Calculator expands scenarios into overlay events.
type Calculator struct {
	cfg *config.Config
}

// NewCalculator creates a scenario Calculator.
func NewCalculator(cfg *config.Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// ExpandChanges produces the synthetic events of one scenario inside the
// window. Events are added on top of a baseline, never replacing what is
// already there: a customer loss becomes a negative inflow rather than
// the removal of existing payment events. Hiring, revenue, and
// customer-loss changes recur monthly through an inclusive end date;
// expense changes step by their frequency with an exclusive end date,
// the same walk a vendor contract uses.
func (c *Calculator) ExpandChanges(sc model.Scenario, window model.Window) ([]model.CashEvent, error) {
	if err := c.validate(sc); err != nil {
		return nil, err
	}

	var events []model.CashEvent
	for i, ch := range sc.Changes {
		expanded, err := c.expandChange(sc, ch, window)
		if err != nil {
			return nil, fmt.Errorf("scenario %q change %d: %w", sc.Name, i, err)
		}
		events = append(events, expanded...)
	}

	model.SortEvents(events)
	return events, nil
}

// Combine expands every selected scenario and merges the results into one
// cumulative overlay. Comparisons read "baseline" against "all selected
// scenarios stacked"; scenarios are never evaluated pairwise.
func (c *Calculator) Combine(scenarios []model.Scenario, window model.Window) ([]model.CashEvent, error) {
	var overlay []model.CashEvent
	for _, sc := range scenarios {
		events, err := c.ExpandChanges(sc, window)
		if err != nil {
			return nil, err
		}
		overlay = append(overlay, events...)
	}

	model.SortEvents(overlay)
	return overlay, nil
}

func (c *Calculator) validate(sc model.Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("scenario with empty name")
	}
	if sc.Entity == model.Consolidated {
		return fmt.Errorf("scenario %q: %q is the aggregation view; changes need a concrete entity", sc.Name, model.Consolidated)
	}
	if !c.cfg.HasEntity(sc.Entity) {
		return fmt.Errorf("scenario %q: entity %q: %w", sc.Name, sc.Entity, model.ErrUnknownEntity)
	}
	return nil
}

func (c *Calculator) expandChange(sc model.Scenario, ch model.ScenarioChange, window model.Window) ([]model.CashEvent, error) {
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	record := fmt.Sprintf("scenario %q %s change", sc.Name, ch.Type)

	switch ch.Type {
	case model.ChangeHiring:
		if ch.Hiring.Employees < 1 {
			return nil, model.InvariantError{Invariant: "headcount", Record: record,
				Detail: fmt.Sprintf("employees %d below 1", ch.Hiring.Employees)}
		}
		if err := checkAmount(record, "salary per employee", ch.Hiring.SalaryPerEmployee); err != nil {
			return nil, err
		}
		amount := ch.Hiring.SalaryPerEmployee.Mul(decimal.NewFromInt(int64(ch.Hiring.Employees)))
		return buildEvents(monthlyDates(ch.Start, ch.End, window), model.CashEvent{
			Amount:    amount,
			Direction: model.Outflow,
			Category:  model.CategoryHiring,
			Entity:    sc.Entity,
			Source:    sourceHiring,
			Priority:  1,
		}), nil

	case model.ChangeExpense:
		if ch.Expense.Name == "" {
			return nil, model.InvariantError{Invariant: "expense-name", Record: record, Detail: "missing expense name"}
		}
		if !ch.Expense.Frequency.Valid() {
			return nil, model.InvariantError{Invariant: "frequency", Record: record,
				Detail: fmt.Sprintf("unknown frequency %q", ch.Expense.Frequency)}
		}
		if err := checkAmount(record, "expense amount", ch.Expense.Amount); err != nil {
			return nil, err
		}
		return buildEvents(expenseDates(ch, window), model.CashEvent{
			Amount:    ch.Expense.Amount,
			Direction: model.Outflow,
			Category:  model.CategoryOperations,
			Entity:    sc.Entity,
			Source:    ch.Expense.Name,
			Priority:  model.ExpenseCategories[model.CategoryOperations],
		}), nil

	case model.ChangeRevenue:
		if ch.Revenue.NewClients < 1 {
			return nil, model.InvariantError{Invariant: "client-count", Record: record,
				Detail: fmt.Sprintf("new clients %d below 1", ch.Revenue.NewClients)}
		}
		if err := checkAmount(record, "revenue per client", ch.Revenue.RevenuePerClient); err != nil {
			return nil, err
		}
		amount := ch.Revenue.RevenuePerClient.Mul(decimal.NewFromInt(int64(ch.Revenue.NewClients)))
		return buildEvents(monthlyDates(ch.Start, ch.End, window), model.CashEvent{
			Amount:    amount,
			Direction: model.Inflow,
			Category:  model.CategoryRevenue,
			Entity:    sc.Entity,
			Source:    sourceNewBusiness,
		}), nil

	case model.ChangeCustomerLoss:
		if err := checkAmount(record, "lost revenue", ch.CustomerLoss.LostRevenue); err != nil {
			return nil, err
		}
		return buildEvents(monthlyDates(ch.Start, ch.End, window), model.CashEvent{
			Amount:    ch.CustomerLoss.LostRevenue.Neg(),
			Direction: model.Inflow,
			Category:  model.CategoryRevenue,
			Entity:    sc.Entity,
			Source:    sourceCustomerLoss,
		}), nil

	case model.ChangeInvestment:
		if err := checkAmount(record, "investment amount", ch.Investment.Amount); err != nil {
			return nil, err
		}
		if !window.Contains(ch.Start) {
			return nil, nil
		}
		return buildEvents([]time.Time{ch.Start}, model.CashEvent{
			Amount:    ch.Investment.Amount,
			Direction: model.Outflow,
			Category:  model.CategoryInvestment,
			Entity:    sc.Entity,
			Source:    sourceInvestment,
			Priority:  4,
		}), nil
	}

	return nil, model.InvariantError{Invariant: "change-type", Record: record,
		Detail: fmt.Sprintf("unknown change type %q", ch.Type)}
}

func checkAmount(record, field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return model.InvariantError{Invariant: "amount", Record: record,
			Detail: fmt.Sprintf("%s %s is not positive", field, amount)}
	}
	if !model.CentPrecise(amount) {
		return model.InvariantError{Invariant: "cent-precision", Record: record,
			Detail: fmt.Sprintf("%s %s has more than 2 decimal places", field, amount)}
	}
	return nil
}

// buildEvents stamps one prototype event onto each date.
func buildEvents(dates []time.Time, proto model.CashEvent) []model.CashEvent {
	if len(dates) == 0 {
		return nil
	}
	events := make([]model.CashEvent, len(dates))
	for i, d := range dates {
		events[i] = proto
		events[i].Date = d
	}
	return events
}

// monthlyDates walks calendar-month occurrences from start, clipped to
// the window, through an inclusive end date (zero end = unbounded).
// Advancing into the window steps occurrence by occurrence so a
// month-end anchor keeps its clamp drift.
func monthlyDates(start, end time.Time, window model.Window) []time.Time {
	cur := start
	for cur.Before(window.Start) {
		cur = period.AddMonths(cur, 1)
	}

	var dates []time.Time
	for !cur.After(window.End) {
		if !end.IsZero() && cur.After(end) {
			break
		}
		dates = append(dates, cur)
		cur = period.AddMonths(cur, 1)
	}
	return dates
}

// expenseDates walks a recurring expense change the way a vendor contract
// walks: anchored at the change's start date, stepping by frequency, with
// an exclusive end bound.
func expenseDates(ch model.ScenarioChange, window model.Window) []time.Time {
	if ch.Expense.Frequency == model.FreqOneTime {
		if window.Contains(ch.Start) && (ch.End.IsZero() || ch.Start.Before(ch.End)) {
			return []time.Time{ch.Start}
		}
		return nil
	}

	cur := ch.Start
	for cur.Before(window.Start) {
		cur = period.Step(ch.Expense.Frequency, cur)
	}

	var dates []time.Time
	for !cur.After(window.End) {
		if !ch.End.IsZero() && !cur.Before(ch.End) {
			break
		}
		dates = append(dates, cur)
		cur = period.Step(ch.Expense.Frequency, cur)
	}
	return dates
}

// Apply buckets overlay events into an existing point series and
// recomputes the running balance from the first point's starting cash.
// The baseline slice is not mutated. Events before windowStart or after
// the final period end are ignored; when the series belongs to a single
// entity, events tagged for other entities are ignored too (only the
// Consolidated series absorbs every entity's events).
func Apply(baseline []model.ProjectionDataPoint, windowStart time.Time, overlay []model.CashEvent) []model.ProjectionDataPoint {
	if len(baseline) == 0 {
		return nil
	}

	points := make([]model.ProjectionDataPoint, len(baseline))
	copy(points, baseline)

	sorted := make([]model.CashEvent, len(overlay))
	copy(sorted, overlay)
	model.SortEvents(sorted)

	entity := points[0].Entity
	next := 0
	for i := range points {
		for next < len(sorted) && !sorted[next].Date.After(points[i].Date) {
			ev := sorted[next]
			next++
			if ev.Date.Before(windowStart) {
				continue
			}
			if entity != model.Consolidated && ev.Entity != entity {
				continue
			}
			if ev.Direction == model.Inflow {
				points[i].Inflows = points[i].Inflows.Add(ev.Amount)
			} else {
				points[i].Outflows = points[i].Outflows.Add(ev.Amount)
			}
		}
	}

	starting := points[0].StartingCash
	for i := range points {
		points[i].StartingCash = starting
		points[i].EndingCash = starting.Add(points[i].Inflows).Sub(points[i].Outflows)
		points[i].IsNegative = points[i].EndingCash.IsNegative()
		starting = points[i].EndingCash
	}
	return points
}

// Totals are the aggregate money columns of one projection series.
type Totals struct {
	Inflows    decimal.Decimal
	Outflows   decimal.Decimal
	EndingCash decimal.Decimal
}

// Summary compares an adjusted projection against its baseline.
type Summary struct {
	Baseline Totals
	Adjusted Totals
	Delta    Totals // adjusted minus baseline, column by column

	// MinEndingCash is the lowest ending cash in the adjusted series;
	// MinEndingDate is the period end where it occurs.
	MinEndingCash   decimal.Decimal
	MinEndingDate   time.Time
	NegativePeriods int
}

// Impact summarizes how an adjusted series departs from its baseline.
func Impact(baseline, adjusted []model.ProjectionDataPoint) Summary {
	s := Summary{
		Baseline:      totals(baseline),
		Adjusted:      totals(adjusted),
		MinEndingCash: decimal.Zero,
	}
	s.Delta = Totals{
		Inflows:    s.Adjusted.Inflows.Sub(s.Baseline.Inflows),
		Outflows:   s.Adjusted.Outflows.Sub(s.Baseline.Outflows),
		EndingCash: s.Adjusted.EndingCash.Sub(s.Baseline.EndingCash),
	}
	for i, pt := range adjusted {
		if i == 0 || pt.EndingCash.LessThan(s.MinEndingCash) {
			s.MinEndingCash = pt.EndingCash
			s.MinEndingDate = pt.Date
		}
		if pt.IsNegative {
			s.NegativePeriods++
		}
	}
	return s
}

func totals(points []model.ProjectionDataPoint) Totals {
	t := Totals{Inflows: decimal.Zero, Outflows: decimal.Zero, EndingCash: decimal.Zero}
	for _, pt := range points {
		t.Inflows = t.Inflows.Add(pt.Inflows)
		t.Outflows = t.Outflows.Add(pt.Outflows)
	}
	if len(points) > 0 {
		t.EndingCash = points[len(points)-1].EndingCash
	}
	return t
}
