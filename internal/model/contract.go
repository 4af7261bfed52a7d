package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle state of a contract.
type ContractStatus string

const (
	StatusActive    ContractStatus = "Active"
	StatusInactive  ContractStatus = "Inactive"
	StatusPending   ContractStatus = "Pending"
	StatusCancelled ContractStatus = "Cancelled"
	StatusPaid      ContractStatus = "Paid" // vendor obligation already settled
)

// PaymentPlan is the billing cadence of a customer contract.
type PaymentPlan string

const (
	PlanMonthly    PaymentPlan = "Monthly"
	PlanQuarterly  PaymentPlan = "Quarterly"
	PlanBiannually PaymentPlan = "Bi-annually"
	PlanAnnual     PaymentPlan = "Annual"
	PlanMultiYear  PaymentPlan = "More than 1 year"
)

// Months returns the number of months covered by one billing period.
// Multi-year plans bill on a configured cycle, so the caller supplies it.
func (p PaymentPlan) Months(multiYearMonths int) (int, bool) {
	switch p {
	case PlanMonthly:
		return 1, true
	case PlanQuarterly:
		return 3, true
	case PlanBiannually:
		return 6, true
	case PlanAnnual:
		return 12, true
	case PlanMultiYear:
		return multiYearMonths, true
	}
	return 0, false
}

// ExpenseFrequency is the recurrence cadence of a vendor contract.
type ExpenseFrequency string

const (
	FreqOneTime   ExpenseFrequency = "One-time"
	FreqDaily     ExpenseFrequency = "Daily"
	FreqWeekly    ExpenseFrequency = "Weekly"
	FreqBiweekly  ExpenseFrequency = "Bi-weekly"
	FreqMonthly   ExpenseFrequency = "Monthly"
	FreqQuarterly ExpenseFrequency = "Quarterly"
	FreqAnnual    ExpenseFrequency = "Annual"
)

// Valid reports whether f is a known frequency.
func (f ExpenseFrequency) Valid() bool {
	switch f {
	case FreqOneTime, FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqQuarterly, FreqAnnual:
		return true
	}
	return false
}

// CustomerContract is a recurring revenue agreement, immutable once handed
// to the engine for a projection run.
type CustomerContract struct {
	ID               int
	Company          string
	MonthlyFee       decimal.Decimal
	Plan             PaymentPlan
	Start            time.Time // first billing month
	End              time.Time // zero = unbounded
	Status           ContractStatus
	AcquiredBy       string // acquisition source, maps to an entity
	InvoiceDay       int    // day of the month before the billing month, 1..28
	PaymentTermsDays int
	Reliability      decimal.Decimal // historical on-time fraction in [0,1]
	Entity           string
}

// VendorContract is a recurring (or one-time) expense obligation.
type VendorContract struct {
	ID        int
	Name      string
	Category  Category
	Amount    decimal.Decimal
	Frequency ExpenseFrequency
	DueDate   time.Time // anchor for the recurrence walk
	Start     time.Time // zero = unbounded past, inclusive otherwise
	End       time.Time // zero = unbounded future, exclusive otherwise
	Entity    string
	Priority  int // 1 = payroll .. 4 = operations
	Status    ContractStatus
}

// BankBalance is an observed cash position for one entity.
// The most recent balance at or before a projection's start seeds that
// entity's running total.
type BankBalance struct {
	Entity  string
	Date    time.Time
	Balance decimal.Decimal // may be negative
}
