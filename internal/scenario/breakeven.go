package scenario

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/period"
)

// BreakEvenResult reports whether a scenario fits within the projected
// cash and, when it does not, what would close the gap.
type BreakEvenResult struct {
	// Affordable is true when the adjusted projection never goes
	// negative. EarliestStart is then the scenario's own start date.
	Affordable    bool
	EarliestStart time.Time // zero when no delayed start within the horizon works

	FirstNegative time.Time // period end of the first shortfall
	// WorstDeficit is the deepest shortfall, as a positive amount.
	WorstDeficit decimal.Decimal
	// RequiredMonthlyRevenue is the smallest additional monthly inflow,
	// starting on the scenario start date, that would keep every period
	// non-negative with the scenario in place.
	RequiredMonthlyRevenue decimal.Decimal
}

// BreakEven judges whether the scenario behind overlay is affordable on
// top of baseline. When it is not, the result carries the first and worst
// shortfalls, the minimum extra monthly revenue that would cover them,
// and the earliest later start that would: the whole overlay is delayed
// month by month until the projection stays non-negative, giving up at
// the projection horizon.
func BreakEven(baseline []model.ProjectionDataPoint, windowStart time.Time, overlay []model.CashEvent, scenarioStart time.Time) (BreakEvenResult, error) {
	if len(baseline) == 0 {
		return BreakEvenResult{}, fmt.Errorf("break-even: empty baseline projection")
	}
	if scenarioStart.IsZero() {
		return BreakEvenResult{}, fmt.Errorf("break-even: missing scenario start date")
	}

	adjusted := Apply(baseline, windowStart, overlay)
	first, worst, negative := worstCase(adjusted)
	if !negative {
		return BreakEvenResult{Affordable: true, EarliestStart: scenarioStart}, nil
	}

	required, err := requiredMonthlyRevenue(adjusted, scenarioStart)
	if err != nil {
		return BreakEvenResult{}, err
	}

	horizon := baseline[len(baseline)-1].Date
	return BreakEvenResult{
		EarliestStart:          earliestFeasibleStart(baseline, windowStart, overlay, scenarioStart, horizon),
		FirstNegative:          first,
		WorstDeficit:           worst,
		RequiredMonthlyRevenue: required,
	}, nil
}

// worstCase scans the series for shortfalls: the first negative period
// end and the deepest deficit.
func worstCase(points []model.ProjectionDataPoint) (first time.Time, deficit decimal.Decimal, negative bool) {
	for _, pt := range points {
		if !pt.IsNegative {
			continue
		}
		if !negative {
			first = pt.Date
			negative = true
		}
		if d := pt.EndingCash.Neg(); d.GreaterThan(deficit) {
			deficit = d
		}
	}
	return first, deficit, negative
}

// requiredMonthlyRevenue finds the smallest monthly inflow, recurring
// from scenarioStart, that lifts every deficit to zero. Each deficit
// point is covered by the revenue occurrences that land on or before it,
// so the answer is the largest per-occurrence share across deficits,
// rounded up to the cent.
func requiredMonthlyRevenue(points []model.ProjectionDataPoint, scenarioStart time.Time) (decimal.Decimal, error) {
	required := decimal.Zero
	for _, pt := range points {
		if !pt.IsNegative {
			continue
		}
		n := occurrencesThrough(scenarioStart, pt.Date)
		if n == 0 {
			return decimal.Zero, fmt.Errorf(
				"cash is negative on %s, before the scenario start %s; added revenue cannot reach it",
				pt.Date.Format("2006-01-02"), scenarioStart.Format("2006-01-02"))
		}
		per := ceilCents(pt.EndingCash.Neg().Div(decimal.NewFromInt(int64(n))))
		if per.GreaterThan(required) {
			required = per
		}
	}
	return required, nil
}

// occurrencesThrough counts monthly dates from start through end,
// inclusive on both sides.
func occurrencesThrough(start, end time.Time) int {
	n := 0
	for cur := start; !cur.After(end); cur = period.AddMonths(cur, 1) {
		n++
	}
	return n
}

var hundred = decimal.NewFromInt(100)

// ceilCents rounds up to the next cent.
func ceilCents(d decimal.Decimal) decimal.Decimal {
	return d.Mul(hundred).Ceil().Div(hundred)
}

// earliestFeasibleStart delays the overlay by whole months, one at a
// time, until the adjusted projection stays non-negative. Zero when no
// start on or before the horizon works.
func earliestFeasibleStart(baseline []model.ProjectionDataPoint, windowStart time.Time, overlay []model.CashEvent, scenarioStart, horizon time.Time) time.Time {
	for shift := 1; ; shift++ {
		start := period.AddMonths(scenarioStart, shift)
		if start.After(horizon) {
			return time.Time{}
		}
		adjusted := Apply(baseline, windowStart, shiftEvents(overlay, shift))
		if _, _, negative := worstCase(adjusted); !negative {
			return start
		}
	}
}

// shiftEvents delays every event by the given number of months.
func shiftEvents(events []model.CashEvent, months int) []model.CashEvent {
	shifted := make([]model.CashEvent, len(events))
	for i, ev := range events {
		shifted[i] = ev
		shifted[i].Date = period.AddMonths(ev.Date, months)
	}
	return shifted
}
