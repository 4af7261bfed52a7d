// Package overrides applies one-off payment reschedules and skips to
// expanded cash events.
package overrides

import (
	"fmt"

	"github.com/flowcast-dev/flowcast/internal/model"
)

// Resolver applies a set of payment overrides to raw expanded events.
// Overrides are uniquely keyed by (kind, contract id, original date);
// each matches at most one event.
type Resolver struct {
	overrides []model.PaymentOverride
	byKey     map[string]int // key -> index into overrides
}

// NewResolver validates the override set and builds the lookup.
func NewResolver(overrides []model.PaymentOverride) (*Resolver, error) {
	byKey := make(map[string]int, len(overrides))
	for i, o := range overrides {
		if err := validate(o); err != nil {
			return nil, err
		}
		key := o.Key()
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("override %s: duplicate key", key)
		}
		byKey[key] = i
	}
	return &Resolver{overrides: overrides, byKey: byKey}, nil
}

func validate(o model.PaymentOverride) error {
	if o.Kind != model.OverrideCustomer && o.Kind != model.OverrideVendor {
		return fmt.Errorf("override: unknown kind %q", o.Kind)
	}
	if o.ContractID <= 0 {
		return fmt.Errorf("override %s: contract id must be positive", o.Key())
	}
	if o.OriginalDate.IsZero() {
		return fmt.Errorf("override: missing original date for contract %d", o.ContractID)
	}
	switch o.Action {
	case model.ActionMove:
		if o.NewDate.IsZero() {
			return fmt.Errorf("override %s: move without new date", o.Key())
		}
	case model.ActionSkip:
		if !o.NewDate.IsZero() {
			return fmt.Errorf("override %s: skip carries a new date", o.Key())
		}
	default:
		return fmt.Errorf("override %s: unknown action %q", o.Key(), o.Action)
	}
	return nil
}

// Apply resolves the overrides against events and returns the surviving
// events (date-sorted) plus the overrides that matched nothing. An
// unmatched override is a no-op: it may target a payment outside the
// expanded window.
func (r *Resolver) Apply(events []model.CashEvent) ([]model.CashEvent, []model.PaymentOverride) {
	consumed := make(map[int]bool, len(r.overrides))

	resolved := make([]model.CashEvent, 0, len(events))
	for _, ev := range events {
		idx, ok := r.match(ev)
		if !ok || consumed[idx] {
			resolved = append(resolved, ev)
			continue
		}
		consumed[idx] = true

		o := r.overrides[idx]
		switch o.Action {
		case model.ActionSkip:
			// Dropped.
		case model.ActionMove:
			moved := ev
			moved.Date = o.NewDate
			resolved = append(resolved, moved)
		}
	}

	var unmatched []model.PaymentOverride
	for i, o := range r.overrides {
		if !consumed[i] {
			unmatched = append(unmatched, o)
		}
	}

	model.SortEvents(resolved)
	return resolved, unmatched
}

// match finds the override targeting this event, if any. Only contract
// events are candidates: payroll and synthetic events carry contract id 0
// and can never match.
func (r *Resolver) match(ev model.CashEvent) (int, bool) {
	if ev.ContractID == 0 {
		return 0, false
	}
	kind := model.OverrideVendor
	if ev.Direction == model.Inflow {
		kind = model.OverrideCustomer
	}
	key := model.PaymentOverride{Kind: kind, ContractID: ev.ContractID, OriginalDate: ev.Date}.Key()
	idx, ok := r.byKey[key]
	return idx, ok
}
