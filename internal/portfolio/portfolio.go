// Package portfolio reads the contract book: the customers, vendors,
// bank balances, payment overrides, and saved scenarios a projection
// runs against.
package portfolio

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/model"
)

// Snapshot is one parsed portfolio file, ready to hand to the engine.
type Snapshot struct {
	Customers []model.CustomerContract
	Vendors   []model.VendorContract
	Balances  []model.BankBalance
	Overrides []model.PaymentOverride
	Scenarios []model.Scenario
}

// Scenario looks up a saved scenario by name.
func (s *Snapshot) Scenario(name string) (model.Scenario, bool) {
	for _, sc := range s.Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return model.Scenario{}, false
}

// contractEntity finds the entity of the contract an override points at,
// used when the override record leaves its entity implicit.
func (s *Snapshot) contractEntity(kind model.OverrideKind, id int) (string, error) {
	if kind == model.OverrideCustomer {
		for _, c := range s.Customers {
			if c.ID == id {
				return c.Entity, nil
			}
		}
		return "", fmt.Errorf("no customer with id %d", id)
	}
	for _, v := range s.Vendors {
		if v.ID == id {
			return v.Entity, nil
		}
	}
	return "", fmt.Errorf("no vendor with id %d", id)
}

// Load reads and parses a portfolio file.
func Load(path string, cfg *config.Config) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading portfolio: %w", err)
	}
	return Parse(data, cfg)
}

// Parse decodes portfolio YAML. Money and date fields are strings in the
// file and parsed here, so amounts never pass through floating point.
// Missing per-record settings fall back to the config: invoice day,
// payment terms, reliability, the acquisition-source entity mapping,
// and category-based vendor priorities.
func Parse(data []byte, cfg *config.Config) (*Snapshot, error) {
	var raw rawPortfolio
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing portfolio: %w", err)
	}

	snap := &Snapshot{}
	for i, rc := range raw.Customers {
		c, err := buildCustomer(rc, cfg)
		if err != nil {
			return nil, fmt.Errorf("customers[%d]: %w", i, err)
		}
		snap.Customers = append(snap.Customers, c)
	}
	for i, rv := range raw.Vendors {
		v, err := buildVendor(rv)
		if err != nil {
			return nil, fmt.Errorf("vendors[%d]: %w", i, err)
		}
		snap.Vendors = append(snap.Vendors, v)
	}
	for i, rb := range raw.Balances {
		b, err := buildBalance(rb)
		if err != nil {
			return nil, fmt.Errorf("balances[%d]: %w", i, err)
		}
		snap.Balances = append(snap.Balances, b)
	}
	for i, ro := range raw.Overrides {
		o, err := buildOverride(ro)
		if err != nil {
			return nil, fmt.Errorf("overrides[%d]: %w", i, err)
		}
		if o.Entity == "" {
			if o.Entity, err = snap.contractEntity(o.Kind, o.ContractID); err != nil {
				return nil, fmt.Errorf("overrides[%d]: %w", i, err)
			}
		}
		snap.Overrides = append(snap.Overrides, o)
	}
	for i, rs := range raw.Scenarios {
		sc, err := buildScenario(rs)
		if err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		snap.Scenarios = append(snap.Scenarios, sc)
	}
	return snap, nil
}

type rawPortfolio struct {
	Customers []rawCustomer `yaml:"customers"`
	Vendors   []rawVendor   `yaml:"vendors"`
	Balances  []rawBalance  `yaml:"balances"`
	Overrides []rawOverride `yaml:"overrides"`
	Scenarios []rawScenario `yaml:"scenarios"`
}

type rawCustomer struct {
	ID               int    `yaml:"id"`
	Company          string `yaml:"company"`
	MonthlyFee       string `yaml:"monthly_fee"`
	Plan             string `yaml:"plan"`
	Start            string `yaml:"start"`
	End              string `yaml:"end"`
	Status           string `yaml:"status"`
	AcquiredBy       string `yaml:"acquired_by"`
	InvoiceDay       int    `yaml:"invoice_day"`
	PaymentTermsDays *int   `yaml:"payment_terms_days"`
	Reliability      string `yaml:"reliability"`
	Entity           string `yaml:"entity"`
}

type rawVendor struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	Amount    string `yaml:"amount"`
	Frequency string `yaml:"frequency"`
	DueDate   string `yaml:"due_date"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	Entity    string `yaml:"entity"`
	Priority  int    `yaml:"priority"`
	Status    string `yaml:"status"`
}

type rawBalance struct {
	Entity  string `yaml:"entity"`
	Date    string `yaml:"date"`
	Balance string `yaml:"balance"`
}

type rawOverride struct {
	Kind         string `yaml:"kind"`
	ContractID   int    `yaml:"contract_id"`
	OriginalDate string `yaml:"original_date"`
	Action       string `yaml:"action"`
	NewDate      string `yaml:"new_date"`
	Entity       string `yaml:"entity"`
}

type rawScenario struct {
	Name    string      `yaml:"name"`
	Entity  string      `yaml:"entity"`
	Changes []rawChange `yaml:"changes"`
}

type rawChange struct {
	Type  string `yaml:"type"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`

	Employees         int    `yaml:"employees"`
	SalaryPerEmployee string `yaml:"salary_per_employee"`
	Name              string `yaml:"name"`
	Amount            string `yaml:"amount"`
	Frequency         string `yaml:"frequency"`
	NewClients        int    `yaml:"new_clients"`
	RevenuePerClient  string `yaml:"revenue_per_client"`
	LostRevenue       string `yaml:"lost_revenue"`
}

var customerStatuses = map[model.ContractStatus]bool{
	model.StatusActive:    true,
	model.StatusInactive:  true,
	model.StatusPending:   true,
	model.StatusCancelled: true,
}

var vendorStatuses = map[model.ContractStatus]bool{
	model.StatusActive:   true,
	model.StatusInactive: true,
	model.StatusPaid:     true,
	model.StatusPending:  true,
}

// defaultReliability matches the historical book: four payments in five
// arrive on time unless the record says otherwise.
const defaultReliability = "0.80"

func buildCustomer(rc rawCustomer, cfg *config.Config) (model.CustomerContract, error) {
	var c model.CustomerContract
	var err error

	if c.MonthlyFee, err = parseAmount("monthly_fee", rc.MonthlyFee); err != nil {
		return c, err
	}
	if c.Start, err = parseDate("start", rc.Start); err != nil {
		return c, err
	}
	if c.End, err = parseOptionalDate("end", rc.End); err != nil {
		return c, err
	}

	c.Plan = model.PaymentPlan(rc.Plan)
	if _, ok := c.Plan.Months(cfg.Billing.MultiYearPlanMonths); !ok {
		return c, fmt.Errorf("unknown plan %q", rc.Plan)
	}
	c.Status = model.ContractStatus(rc.Status)
	if !customerStatuses[c.Status] {
		return c, fmt.Errorf("unknown customer status %q", rc.Status)
	}

	c.ID = rc.ID
	c.Company = rc.Company
	c.AcquiredBy = rc.AcquiredBy

	c.InvoiceDay = rc.InvoiceDay
	if c.InvoiceDay == 0 {
		c.InvoiceDay = cfg.Billing.DefaultInvoiceDay
	}
	c.PaymentTermsDays = cfg.Billing.DefaultPaymentTermsDays
	if rc.PaymentTermsDays != nil {
		c.PaymentTermsDays = *rc.PaymentTermsDays
	}

	reliability := rc.Reliability
	if reliability == "" {
		reliability = defaultReliability
	}
	if c.Reliability, err = parseAmount("reliability", reliability); err != nil {
		return c, err
	}

	c.Entity = rc.Entity
	if c.Entity == "" {
		if c.Entity, err = cfg.AssignEntity(rc.AcquiredBy); err != nil {
			return c, err
		}
	}
	return c, nil
}

func buildVendor(rv rawVendor) (model.VendorContract, error) {
	var v model.VendorContract
	var err error

	if v.Amount, err = parseAmount("amount", rv.Amount); err != nil {
		return v, err
	}
	if v.DueDate, err = parseDate("due_date", rv.DueDate); err != nil {
		return v, err
	}
	if v.Start, err = parseOptionalDate("start", rv.Start); err != nil {
		return v, err
	}
	if v.End, err = parseOptionalDate("end", rv.End); err != nil {
		return v, err
	}

	v.Category = model.Category(rv.Category)
	priority, ok := model.ExpenseCategories[v.Category]
	if !ok {
		return v, fmt.Errorf("unknown expense category %q", rv.Category)
	}
	v.Frequency = model.ExpenseFrequency(rv.Frequency)
	if !v.Frequency.Valid() {
		return v, fmt.Errorf("unknown frequency %q", rv.Frequency)
	}
	v.Status = model.ContractStatus(rv.Status)
	if !vendorStatuses[v.Status] {
		return v, fmt.Errorf("unknown vendor status %q", rv.Status)
	}

	v.ID = rv.ID
	v.Name = rv.Name
	v.Entity = rv.Entity
	v.Priority = rv.Priority
	if v.Priority == 0 {
		v.Priority = priority
	}
	return v, nil
}

func buildBalance(rb rawBalance) (model.BankBalance, error) {
	var b model.BankBalance
	var err error

	if b.Date, err = parseDate("date", rb.Date); err != nil {
		return b, err
	}
	if b.Balance, err = parseAmount("balance", rb.Balance); err != nil {
		return b, err
	}
	b.Entity = rb.Entity
	return b, nil
}

func buildOverride(ro rawOverride) (model.PaymentOverride, error) {
	var o model.PaymentOverride
	var err error

	o.Kind = model.OverrideKind(ro.Kind)
	if o.Kind != model.OverrideCustomer && o.Kind != model.OverrideVendor {
		return o, fmt.Errorf("unknown override kind %q", ro.Kind)
	}
	o.Action = model.OverrideAction(ro.Action)
	switch o.Action {
	case model.ActionMove:
		if o.NewDate, err = parseDate("new_date", ro.NewDate); err != nil {
			return o, err
		}
	case model.ActionSkip:
		if ro.NewDate != "" {
			return o, fmt.Errorf("skip override carries a new_date")
		}
	default:
		return o, fmt.Errorf("unknown override action %q", ro.Action)
	}
	if o.OriginalDate, err = parseDate("original_date", ro.OriginalDate); err != nil {
		return o, err
	}

	o.ContractID = ro.ContractID
	o.Entity = ro.Entity
	return o, nil
}

func buildScenario(rs rawScenario) (model.Scenario, error) {
	sc := model.Scenario{Name: rs.Name, Entity: rs.Entity}
	if sc.Name == "" {
		return sc, fmt.Errorf("missing name")
	}
	for i, rc := range rs.Changes {
		ch, err := buildChange(rc)
		if err != nil {
			return sc, fmt.Errorf("changes[%d]: %w", i, err)
		}
		sc.Changes = append(sc.Changes, ch)
	}
	return sc, nil
}

func buildChange(rc rawChange) (model.ScenarioChange, error) {
	start, err := parseDate("start", rc.Start)
	if err != nil {
		return model.ScenarioChange{}, err
	}
	end, err := parseOptionalDate("end", rc.End)
	if err != nil {
		return model.ScenarioChange{}, err
	}

	switch model.ChangeType(rc.Type) {
	case model.ChangeHiring:
		salary, err := parseAmount("salary_per_employee", rc.SalaryPerEmployee)
		if err != nil {
			return model.ScenarioChange{}, err
		}
		return model.NewHiringChange(start, end, rc.Employees, salary), nil

	case model.ChangeExpense:
		amount, err := parseAmount("amount", rc.Amount)
		if err != nil {
			return model.ScenarioChange{}, err
		}
		return model.NewExpenseChange(start, end, rc.Name, amount, model.ExpenseFrequency(rc.Frequency)), nil

	case model.ChangeRevenue:
		per, err := parseAmount("revenue_per_client", rc.RevenuePerClient)
		if err != nil {
			return model.ScenarioChange{}, err
		}
		return model.NewRevenueChange(start, end, rc.NewClients, per), nil

	case model.ChangeCustomerLoss:
		lost, err := parseAmount("lost_revenue", rc.LostRevenue)
		if err != nil {
			return model.ScenarioChange{}, err
		}
		return model.NewCustomerLossChange(start, end, lost), nil

	case model.ChangeInvestment:
		amount, err := parseAmount("amount", rc.Amount)
		if err != nil {
			return model.ScenarioChange{}, err
		}
		return model.NewInvestmentChange(start, amount), nil
	}
	return model.ScenarioChange{}, fmt.Errorf("unknown change type %q", rc.Type)
}

const dateLayout = "2006-01-02"

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing %s", field)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return t, nil
}

func parseOptionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(field, s)
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("missing %s", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
