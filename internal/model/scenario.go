package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ChangeType tags a scenario change variant.
type ChangeType string

const (
	ChangeHiring       ChangeType = "hiring"
	ChangeExpense      ChangeType = "expense"
	ChangeRevenue      ChangeType = "revenue"
	ChangeCustomerLoss ChangeType = "customer_loss"
	ChangeInvestment   ChangeType = "investment"
)

// HiringChange adds headcount: a recurring monthly outflow of
// Employees x SalaryPerEmployee.
type HiringChange struct {
	Employees         int
	SalaryPerEmployee decimal.Decimal
}

// ExpenseChange adds a recurring expense at a vendor-style frequency.
type ExpenseChange struct {
	Name      string
	Amount    decimal.Decimal
	Frequency ExpenseFrequency
}

// RevenueChange adds new business: a recurring monthly inflow of
// NewClients x RevenuePerClient.
type RevenueChange struct {
	NewClients       int
	RevenuePerClient decimal.Decimal
}

// CustomerLossChange removes recurring revenue, modeled as a monthly
// negative inflow rather than deletion of existing customer events.
type CustomerLossChange struct {
	LostRevenue decimal.Decimal
}

// InvestmentChange spends a one-time amount on the start date.
type InvestmentChange struct {
	Amount decimal.Decimal
}

// ScenarioChange is one hypothetical adjustment within a scenario: a tag
// plus exactly one matching payload. Use the New*Change constructors;
// Validate rejects a change whose payload does not match its tag.
type ScenarioChange struct {
	Type  ChangeType
	Start time.Time
	End   time.Time // zero = unbounded

	Hiring       *HiringChange
	Expense      *ExpenseChange
	Revenue      *RevenueChange
	CustomerLoss *CustomerLossChange
	Investment   *InvestmentChange
}

// NewHiringChange builds a hiring change.
func NewHiringChange(start, end time.Time, employees int, salaryPerEmployee decimal.Decimal) ScenarioChange {
	return ScenarioChange{
		Type:   ChangeHiring,
		Start:  start,
		End:    end,
		Hiring: &HiringChange{Employees: employees, SalaryPerEmployee: salaryPerEmployee},
	}
}

// NewExpenseChange builds a recurring-expense change.
func NewExpenseChange(start, end time.Time, name string, amount decimal.Decimal, freq ExpenseFrequency) ScenarioChange {
	return ScenarioChange{
		Type:    ChangeExpense,
		Start:   start,
		End:     end,
		Expense: &ExpenseChange{Name: name, Amount: amount, Frequency: freq},
	}
}

// NewRevenueChange builds a new-business change.
func NewRevenueChange(start, end time.Time, newClients int, revenuePerClient decimal.Decimal) ScenarioChange {
	return ScenarioChange{
		Type:    ChangeRevenue,
		Start:   start,
		End:     end,
		Revenue: &RevenueChange{NewClients: newClients, RevenuePerClient: revenuePerClient},
	}
}

// NewCustomerLossChange builds a lost-revenue change.
func NewCustomerLossChange(start, end time.Time, lostRevenue decimal.Decimal) ScenarioChange {
	return ScenarioChange{
		Type:         ChangeCustomerLoss,
		Start:        start,
		End:          end,
		CustomerLoss: &CustomerLossChange{LostRevenue: lostRevenue},
	}
}

// NewInvestmentChange builds a one-time investment change.
func NewInvestmentChange(start time.Time, amount decimal.Decimal) ScenarioChange {
	return ScenarioChange{
		Type:       ChangeInvestment,
		Start:      start,
		Investment: &InvestmentChange{Amount: amount},
	}
}

// Validate checks that exactly one payload is set and that it matches the
// tag, and that the change carries a start date.
func (c ScenarioChange) Validate() error {
	set := 0
	var tagged bool
	if c.Hiring != nil {
		set++
		tagged = tagged || c.Type == ChangeHiring
	}
	if c.Expense != nil {
		set++
		tagged = tagged || c.Type == ChangeExpense
	}
	if c.Revenue != nil {
		set++
		tagged = tagged || c.Type == ChangeRevenue
	}
	if c.CustomerLoss != nil {
		set++
		tagged = tagged || c.Type == ChangeCustomerLoss
	}
	if c.Investment != nil {
		set++
		tagged = tagged || c.Type == ChangeInvestment
	}
	if set != 1 {
		return fmt.Errorf("scenario change %q: %d payloads set, want exactly 1", c.Type, set)
	}
	if !tagged {
		return fmt.Errorf("scenario change %q: payload does not match type", c.Type)
	}
	if c.Start.IsZero() {
		return fmt.Errorf("scenario change %q: missing start date", c.Type)
	}
	if !c.End.IsZero() && c.End.Before(c.Start) {
		return fmt.Errorf("scenario change %q: end %s before start %s",
			c.Type, c.End.Format("2006-01-02"), c.Start.Format("2006-01-02"))
	}
	return nil
}

// Scenario is a named bundle of changes applied to one entity's baseline.
type Scenario struct {
	Name    string
	Entity  string
	Changes []ScenarioChange
}
