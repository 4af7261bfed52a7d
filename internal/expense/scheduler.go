// Package expense expands vendor contracts and payroll into dated
// outflow events.
package expense

import (
	"fmt"
	"time"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/period"
)

// Scheduler turns vendor contracts and the configured payroll into
// expected payment events.
type Scheduler struct {
	cfg *config.Config
}

// NewScheduler creates an expense Scheduler.
func NewScheduler(cfg *config.Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// Expand produces one outflow event per vendor occurrence inside the
// window. Occurrences step from the due-date anchor by the contract's
// frequency; the vendor's start bound is inclusive and its end bound is
// exclusive.
func (s *Scheduler) Expand(vendors []model.VendorContract, window model.Window) ([]model.CashEvent, error) {
	var events []model.CashEvent
	for _, v := range vendors {
		if v.Status != model.StatusActive {
			continue
		}
		if err := s.validate(v); err != nil {
			return nil, err
		}
		for _, d := range occurrences(v, window) {
			events = append(events, model.CashEvent{
				Date:       d,
				Amount:     v.Amount,
				Direction:  model.Outflow,
				Category:   v.Category,
				Entity:     v.Entity,
				ContractID: v.ID,
				Source:     v.Name,
				Priority:   v.Priority,
			})
		}
	}

	model.SortEvents(events)
	return events, nil
}

// PayrollEvents produces the fixed twice-monthly payroll for every
// configured entity: the 15th and day min(30, last day of month), each
// with that entity's configured amount. Payroll is never delayed,
// skipped, or reduced; only events outside the window are omitted.
func (s *Scheduler) PayrollEvents(window model.Window) ([]model.CashEvent, error) {
	if window.End.Before(window.Start) {
		return nil, fmt.Errorf("payroll: window end %s before start %s",
			window.End.Format("2006-01-02"), window.Start.Format("2006-01-02"))
	}

	var events []model.CashEvent
	for _, e := range s.cfg.Entities {
		for m := period.MonthStart(window.Start); !m.After(window.End); m = period.AddMonths(m, 1) {
			endDay := 30
			if last := period.LastDay(m.Year(), m.Month()); last < endDay {
				endDay = last
			}
			days := []struct {
				day    int
				amount config.Amount
			}{
				{15, e.Payroll.MidMonth},
				{endDay, e.Payroll.EndMonth},
			}
			for _, p := range days {
				if p.amount.IsZero() {
					continue
				}
				d := time.Date(m.Year(), m.Month(), p.day, 0, 0, 0, 0, time.UTC)
				if !window.Contains(d) {
					continue
				}
				events = append(events, model.CashEvent{
					Date:      d,
					Amount:    p.amount.Decimal,
					Direction: model.Outflow,
					Category:  model.CategoryPayroll,
					Entity:    e.Name,
					Source:    "Payroll",
					Priority:  1,
				})
			}
		}
	}

	model.SortEvents(events)
	return events, nil
}

// occurrences walks a vendor's payment dates inside the window.
func occurrences(v model.VendorContract, window model.Window) []time.Time {
	if v.Frequency == model.FreqOneTime {
		d := v.DueDate
		if window.Contains(d) && withinBounds(v, d) {
			return []time.Time{d}
		}
		return nil
	}

	cur := v.DueDate
	for cur.Before(window.Start) || (!v.Start.IsZero() && cur.Before(v.Start)) {
		cur = period.Step(v.Frequency, cur)
	}

	var dates []time.Time
	for !cur.After(window.End) {
		if !v.End.IsZero() && !cur.Before(v.End) {
			break
		}
		dates = append(dates, cur)
		cur = period.Step(v.Frequency, cur)
	}
	return dates
}

func withinBounds(v model.VendorContract, d time.Time) bool {
	if !v.Start.IsZero() && d.Before(v.Start) {
		return false
	}
	if !v.End.IsZero() && !d.Before(v.End) {
		return false
	}
	return true
}

func (s *Scheduler) validate(v model.VendorContract) error {
	record := fmt.Sprintf("vendor %d %q", v.ID, v.Name)
	if !s.cfg.HasEntity(v.Entity) {
		return fmt.Errorf("%s: entity %q: %w", record, v.Entity, model.ErrUnknownEntity)
	}
	if v.DueDate.IsZero() {
		return model.InvariantError{Invariant: "due-date", Record: record, Detail: "missing due date"}
	}
	if !model.CentPrecise(v.Amount) {
		return model.InvariantError{Invariant: "cent-precision", Record: record,
			Detail: fmt.Sprintf("amount %s has more than 2 decimal places", v.Amount)}
	}
	if v.Amount.IsNegative() {
		return model.InvariantError{Invariant: "amount", Record: record,
			Detail: fmt.Sprintf("negative amount %s", v.Amount)}
	}
	if !v.Frequency.Valid() {
		return model.InvariantError{Invariant: "frequency", Record: record,
			Detail: fmt.Sprintf("unknown frequency %q", v.Frequency)}
	}
	if _, ok := model.ExpenseCategories[v.Category]; !ok {
		return model.InvariantError{Invariant: "category", Record: record,
			Detail: fmt.Sprintf("unknown expense category %q", v.Category)}
	}
	if v.Priority < 1 || v.Priority > 4 {
		return model.InvariantError{Invariant: "priority", Record: record,
			Detail: fmt.Sprintf("priority %d outside 1..4", v.Priority)}
	}
	if !v.Start.IsZero() && !v.End.IsZero() && v.End.Before(v.Start) {
		return model.InvariantError{Invariant: "date-order", Record: record,
			Detail: fmt.Sprintf("end %s before start %s", v.End.Format("2006-01-02"), v.Start.Format("2006-01-02"))}
	}
	return nil
}
