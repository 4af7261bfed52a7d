package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies which side of the cash flow an event lands on.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// Category labels the business source of a cash event.
type Category string

const (
	CategoryRevenue      Category = "Revenue"
	CategoryPayroll      Category = "Payroll"
	CategoryLoans        Category = "Loans"
	CategorySoftwareTech Category = "Software/Tech"
	CategoryOperations   Category = "Operations"
	CategoryRent         Category = "Rent"
	CategoryUtilities    Category = "Utilities"
	CategoryHiring       Category = "Hiring"
	CategoryInvestment   Category = "Investment"
)

// ExpenseCategories are the categories a vendor contract may carry, with
// their default scheduling priority (1 = hard obligation, 4 = flexible).
var ExpenseCategories = map[Category]int{
	CategoryPayroll:      1,
	CategoryLoans:        2,
	CategorySoftwareTech: 3,
	CategoryOperations:   4,
	CategoryRent:         4,
	CategoryUtilities:    4,
}

// CashEvent is one dated cash movement, the unit the pipeline operates on.
// Amount is signed: negative amounts occur only on inflow-direction events
// that model a revenue reduction.
type CashEvent struct {
	Date       time.Time
	Amount     decimal.Decimal
	Direction  Direction
	Category   Category
	Entity     string
	ContractID int    // 0 for payroll and synthetic scenario events
	Source     string // display name: company, vendor, change label
	Priority   int    // 0 for inflows, 1..4 for outflows
}

// SortEvents orders events by date, then priority, then source name.
func SortEvents(events []CashEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		if events[i].Priority != events[j].Priority {
			return events[i].Priority < events[j].Priority
		}
		return events[i].Source < events[j].Source
	})
}

// CentPrecise reports whether d carries at most two fractional digits.
func CentPrecise(d decimal.Decimal) bool {
	cents := d.Mul(decimal.NewFromInt(100))
	return cents.Equal(cents.Floor())
}
