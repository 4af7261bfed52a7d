package model

import (
	"fmt"
	"time"
)

// OverrideKind selects which side of the ledger an override targets.
type OverrideKind string

const (
	OverrideCustomer OverrideKind = "customer"
	OverrideVendor   OverrideKind = "vendor"
)

// OverrideAction is what happens to the matched event.
type OverrideAction string

const (
	ActionMove OverrideAction = "move"
	ActionSkip OverrideAction = "skip"
)

// PaymentOverride reschedules or cancels a single expected payment.
// Uniquely keyed by (Kind, ContractID, OriginalDate).
type PaymentOverride struct {
	Kind         OverrideKind
	ContractID   int
	OriginalDate time.Time
	Action       OverrideAction
	NewDate      time.Time // set for move, zero for skip
	Entity       string
}

// Key returns the uniqueness key of the override.
func (o PaymentOverride) Key() string {
	return fmt.Sprintf("%s/%d/%s", o.Kind, o.ContractID, o.OriginalDate.Format("2006-01-02"))
}
