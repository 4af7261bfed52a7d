package overrides

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcast-dev/flowcast/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func customerEvent(id int, d time.Time, amount string) model.CashEvent {
	return model.CashEvent{
		Date:       d,
		Amount:     dec(amount),
		Direction:  model.Inflow,
		Category:   model.CategoryRevenue,
		Entity:     "YAHSHUA",
		ContractID: id,
		Source:     "ACME Corp",
	}
}

func vendorEvent(id int, d time.Time, amount string) model.CashEvent {
	return model.CashEvent{
		Date:       d,
		Amount:     dec(amount),
		Direction:  model.Outflow,
		Category:   model.CategorySoftwareTech,
		Entity:     "YAHSHUA",
		ContractID: id,
		Source:     "AWS",
		Priority:   3,
	}
}

func TestApply_MoveChangesOnlyDate(t *testing.T) {
	events := []model.CashEvent{
		customerEvent(1, date(2026, 2, 24), "100000.00"),
		customerEvent(2, date(2026, 2, 24), "50000.00"),
	}
	r, err := NewResolver([]model.PaymentOverride{{
		Kind:         model.OverrideCustomer,
		ContractID:   1,
		OriginalDate: date(2026, 2, 24),
		Action:       model.ActionMove,
		NewDate:      date(2026, 3, 5),
	}})
	require.NoError(t, err)

	resolved, unmatched := r.Apply(events)
	require.Empty(t, unmatched)
	require.Len(t, resolved, 2)

	// Sorted: the untouched contract 2 event now comes first.
	assert.Equal(t, 2, resolved[0].ContractID)
	assert.Equal(t, date(2026, 2, 24), resolved[0].Date)

	moved := resolved[1]
	assert.Equal(t, 1, moved.ContractID)
	assert.Equal(t, date(2026, 3, 5), moved.Date)
	assert.True(t, moved.Amount.Equal(dec("100000.00")), "amount unchanged")
	assert.Equal(t, model.CategoryRevenue, moved.Category, "category unchanged")
}

func TestApply_SkipRemovesExactlyOne(t *testing.T) {
	events := []model.CashEvent{
		customerEvent(1, date(2026, 1, 24), "100000.00"),
		customerEvent(1, date(2026, 2, 24), "100000.00"),
		customerEvent(1, date(2026, 3, 24), "100000.00"),
		customerEvent(2, date(2026, 2, 24), "50000.00"),
	}
	r, err := NewResolver([]model.PaymentOverride{{
		Kind:         model.OverrideCustomer,
		ContractID:   1,
		OriginalDate: date(2026, 2, 24),
		Action:       model.ActionSkip,
	}})
	require.NoError(t, err)

	resolved, unmatched := r.Apply(events)
	require.Empty(t, unmatched)
	require.Len(t, resolved, 3)
	for _, ev := range resolved {
		if ev.ContractID == 1 {
			assert.NotEqual(t, date(2026, 2, 24), ev.Date, "only the targeted payment is gone")
		}
	}
}

func TestApply_UnmatchedIsNoOp(t *testing.T) {
	events := []model.CashEvent{customerEvent(1, date(2026, 1, 24), "100000.00")}
	override := model.PaymentOverride{
		Kind:         model.OverrideCustomer,
		ContractID:   1,
		OriginalDate: date(2026, 6, 24), // outside the expanded set
		Action:       model.ActionSkip,
	}
	r, err := NewResolver([]model.PaymentOverride{override})
	require.NoError(t, err)

	resolved, unmatched := r.Apply(events)
	assert.Len(t, resolved, 1, "events untouched")
	require.Len(t, unmatched, 1, "no-op is reported, not fatal")
	assert.Equal(t, override.Key(), unmatched[0].Key())
}

func TestApply_KindMismatchDoesNotMatch(t *testing.T) {
	// A vendor override never touches a customer event sharing id+date.
	events := []model.CashEvent{
		customerEvent(1, date(2026, 2, 24), "100000.00"),
		vendorEvent(1, date(2026, 2, 24), "50000.00"),
	}
	r, err := NewResolver([]model.PaymentOverride{{
		Kind:         model.OverrideVendor,
		ContractID:   1,
		OriginalDate: date(2026, 2, 24),
		Action:       model.ActionSkip,
	}})
	require.NoError(t, err)

	resolved, unmatched := r.Apply(events)
	require.Empty(t, unmatched)
	require.Len(t, resolved, 1)
	assert.Equal(t, model.Inflow, resolved[0].Direction, "customer event survives")
}

func TestApply_PayrollNeverMatches(t *testing.T) {
	payroll := model.CashEvent{
		Date:      date(2026, 2, 15),
		Amount:    dec("1000000.00"),
		Direction: model.Outflow,
		Category:  model.CategoryPayroll,
		Entity:    "YAHSHUA",
		Source:    "Payroll",
		Priority:  1,
	}
	r, err := NewResolver([]model.PaymentOverride{{
		Kind:         model.OverrideVendor,
		ContractID:   7,
		OriginalDate: date(2026, 2, 15),
		Action:       model.ActionSkip,
	}})
	require.NoError(t, err)

	resolved, unmatched := r.Apply([]model.CashEvent{payroll})
	assert.Len(t, resolved, 1)
	assert.Len(t, unmatched, 1)
}

func TestApply_MultipleOverrides(t *testing.T) {
	events := []model.CashEvent{
		vendorEvent(1, date(2026, 1, 15), "50000.00"),
		vendorEvent(1, date(2026, 2, 15), "50000.00"),
		vendorEvent(2, date(2026, 1, 15), "20000.00"),
	}
	r, err := NewResolver([]model.PaymentOverride{
		{Kind: model.OverrideVendor, ContractID: 1, OriginalDate: date(2026, 1, 15), Action: model.ActionMove, NewDate: date(2026, 1, 20)},
		{Kind: model.OverrideVendor, ContractID: 1, OriginalDate: date(2026, 2, 15), Action: model.ActionSkip},
	})
	require.NoError(t, err)

	resolved, unmatched := r.Apply(events)
	require.Empty(t, unmatched)
	require.Len(t, resolved, 2)
	assert.Equal(t, date(2026, 1, 15), resolved[0].Date)
	assert.Equal(t, 2, resolved[0].ContractID, "other vendors unaffected")
	assert.Equal(t, date(2026, 1, 20), resolved[1].Date)
}

func TestNewResolver_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		override model.PaymentOverride
	}{
		{"unknown kind", model.PaymentOverride{Kind: "supplier", ContractID: 1, OriginalDate: date(2026, 1, 1), Action: model.ActionSkip}},
		{"zero contract id", model.PaymentOverride{Kind: model.OverrideVendor, OriginalDate: date(2026, 1, 1), Action: model.ActionSkip}},
		{"zero original date", model.PaymentOverride{Kind: model.OverrideVendor, ContractID: 1, Action: model.ActionSkip}},
		{"move without new date", model.PaymentOverride{Kind: model.OverrideVendor, ContractID: 1, OriginalDate: date(2026, 1, 1), Action: model.ActionMove}},
		{"skip with new date", model.PaymentOverride{Kind: model.OverrideVendor, ContractID: 1, OriginalDate: date(2026, 1, 1), Action: model.ActionSkip, NewDate: date(2026, 2, 1)}},
		{"unknown action", model.PaymentOverride{Kind: model.OverrideVendor, ContractID: 1, OriginalDate: date(2026, 1, 1), Action: "defer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver([]model.PaymentOverride{tt.override})
			require.Error(t, err)
		})
	}
}

func TestNewResolver_DuplicateKey(t *testing.T) {
	o := model.PaymentOverride{Kind: model.OverrideVendor, ContractID: 1, OriginalDate: date(2026, 1, 1), Action: model.ActionSkip}
	dup := o
	dup.Action = model.ActionMove
	dup.NewDate = date(2026, 2, 1)

	_, err := NewResolver([]model.PaymentOverride{o, dup})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
}
