// Package revenue expands customer contracts into dated payment inflows.
package revenue

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/period"
)

// Expander turns customer contracts into expected payment events.
type Expander struct {
	cfg *config.Config
}

// NewExpander creates a revenue Expander.
func NewExpander(cfg *config.Config) *Expander {
	return &Expander{cfg: cfg}
}

// Expand produces one inflow event per billing period for every active
// contract whose billing months intersect the window. Payment dates are
// shifted by the reliability scenario's delay. Events are candidates: a
// payment date may land outside the window (the caller clips after
// override resolution), but the billing months walked never precede the
// window's first month.
func (e *Expander) Expand(contracts []model.CustomerContract, window model.Window, scenario model.ReliabilityScenario) ([]model.CashEvent, error) {
	delay := e.cfg.Billing.DelayDays(scenario)

	var events []model.CashEvent
	for _, c := range contracts {
		if c.Status != model.StatusActive {
			continue
		}
		if err := e.validate(c); err != nil {
			return nil, err
		}

		months, _ := c.Plan.Months(e.cfg.Billing.MultiYearPlanMonths)
		amount := c.MonthlyFee.Mul(decimal.NewFromInt(int64(months)))

		for _, billingMonth := range billingMonths(c, window, months) {
			invoice := invoiceDate(billingMonth, c.InvoiceDay)
			payment := invoice.AddDate(0, 0, c.PaymentTermsDays+delay)
			events = append(events, model.CashEvent{
				Date:       payment,
				Amount:     amount,
				Direction:  model.Inflow,
				Category:   model.CategoryRevenue,
				Entity:     c.Entity,
				ContractID: c.ID,
				Source:     c.Company,
			})
		}
	}

	model.SortEvents(events)
	return events, nil
}

// billingMonths walks the first-of-month anchors the contract bills in,
// from the later of the contract start and the window start, through the
// earlier of the contract end and the window end, stepping one billing
// period at a time.
func billingMonths(c model.CustomerContract, window model.Window, planMonths int) []time.Time {
	cur := period.MonthStart(c.Start)
	if ws := period.MonthStart(window.Start); cur.Before(ws) {
		cur = ws
	}

	last := period.MonthStart(window.End)
	if !c.End.IsZero() {
		if ce := period.MonthStart(c.End); ce.Before(last) {
			last = ce
		}
	}

	var months []time.Time
	for ; !cur.After(last); cur = period.AddMonths(cur, planMonths) {
		months = append(months, cur)
	}
	return months
}

// invoiceDate returns day invoiceDay of the month before the billing
// month. invoiceDay is capped at 28, so the date always exists.
func invoiceDate(billingMonth time.Time, invoiceDay int) time.Time {
	prev := period.AddMonths(billingMonth, -1)
	return time.Date(prev.Year(), prev.Month(), invoiceDay, 0, 0, 0, 0, billingMonth.Location())
}

func (e *Expander) validate(c model.CustomerContract) error {
	record := fmt.Sprintf("customer %d %q", c.ID, c.Company)
	if !e.cfg.HasEntity(c.Entity) {
		return fmt.Errorf("%s: entity %q: %w", record, c.Entity, model.ErrUnknownEntity)
	}
	if c.Start.IsZero() {
		return model.InvariantError{Invariant: "contract-start", Record: record, Detail: "missing contract start date"}
	}
	if !model.CentPrecise(c.MonthlyFee) {
		return model.InvariantError{Invariant: "cent-precision", Record: record,
			Detail: fmt.Sprintf("monthly fee %s has more than 2 decimal places", c.MonthlyFee)}
	}
	if c.InvoiceDay < 1 || c.InvoiceDay > 28 {
		return model.InvariantError{Invariant: "invoice-day", Record: record,
			Detail: fmt.Sprintf("invoice day %d outside 1..28", c.InvoiceDay)}
	}
	if c.PaymentTermsDays < 0 {
		return model.InvariantError{Invariant: "payment-terms", Record: record,
			Detail: fmt.Sprintf("negative payment terms %d", c.PaymentTermsDays)}
	}
	if c.Reliability.IsNegative() || c.Reliability.GreaterThan(decimal.NewFromInt(1)) {
		return model.InvariantError{Invariant: "reliability", Record: record,
			Detail: fmt.Sprintf("reliability %s outside [0,1]", c.Reliability)}
	}
	if _, ok := c.Plan.Months(e.cfg.Billing.MultiYearPlanMonths); !ok {
		return model.InvariantError{Invariant: "payment-plan", Record: record,
			Detail: fmt.Sprintf("unknown payment plan %q", c.Plan)}
	}
	return nil
}
