package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timeframe is the bucketing granularity of a projection.
type Timeframe string

const (
	Daily     Timeframe = "daily"
	Weekly    Timeframe = "weekly"
	Monthly   Timeframe = "monthly"
	Quarterly Timeframe = "quarterly"
)

// Valid reports whether tf is a known timeframe.
func (tf Timeframe) Valid() bool {
	switch tf {
	case Daily, Weekly, Monthly, Quarterly:
		return true
	}
	return false
}

// ReliabilityScenario selects the payment-timing assumption: optimistic
// customers pay on the due date, realistic customers pay a configured
// number of days late.
type ReliabilityScenario string

const (
	Optimistic ReliabilityScenario = "optimistic"
	Realistic  ReliabilityScenario = "realistic"
)

// Consolidated is the reserved pseudo-entity naming the cross-entity
// aggregation. It is a valid projection scope, never a tag on records.
const Consolidated = "Consolidated"

// Window is an inclusive projection date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ProjectionDataPoint is one bucket of the running-balance series.
type ProjectionDataPoint struct {
	Date         time.Time // period end
	StartingCash decimal.Decimal
	Inflows      decimal.Decimal
	Outflows     decimal.Decimal
	EndingCash   decimal.Decimal
	Entity       string
	Timeframe    Timeframe
	Scenario     ReliabilityScenario
	IsNegative   bool
}
