package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/flowcast-dev/flowcast/internal/model"
)

// Amount is a decimal that round-trips through YAML as a string, so
// config files never pass through binary floating point.
type Amount struct {
	decimal.Decimal
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", value.Value, err)
	}
	a.Decimal = d
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Amount) MarshalYAML() (interface{}, error) {
	return a.StringFixed(2), nil
}

// Config represents the top-level flowcast.yaml configuration. It is
// passed by value into each engine constructor; nothing here is global.
type Config struct {
	Entities []EntityConfig    `yaml:"entities"`
	Billing  BillingConfig     `yaml:"billing"`
	Sources  map[string]string `yaml:"sources,omitempty"`
}

// EntityConfig declares one accounting entity and its payroll schedule.
type EntityConfig struct {
	Name    string        `yaml:"name"`
	Payroll PayrollConfig `yaml:"payroll"`
}

// PayrollConfig is the fixed twice-monthly payroll for one entity:
// MidMonth is paid on the 15th, EndMonth on day min(30, last day).
type PayrollConfig struct {
	MidMonth Amount `yaml:"mid_month"`
	EndMonth Amount `yaml:"end_month"`
}

// MonthlyTotal returns the full payroll outflow for one calendar month.
func (p PayrollConfig) MonthlyTotal() decimal.Decimal {
	return p.MidMonth.Add(p.EndMonth.Decimal)
}

// BillingConfig holds the invoice-timing defaults shared by all customer
// contracts.
type BillingConfig struct {
	DefaultInvoiceDay       int `yaml:"default_invoice_day"`
	DefaultPaymentTermsDays int `yaml:"default_payment_terms_days"`
	OptimisticDelayDays     int `yaml:"optimistic_delay_days"`
	RealisticDelayDays      int `yaml:"realistic_delay_days"`
	MultiYearPlanMonths     int `yaml:"multi_year_plan_months"`
}

// DelayDays returns the payment delay for a reliability scenario.
func (b BillingConfig) DelayDays(s model.ReliabilityScenario) int {
	if s == model.Realistic {
		return b.RealisticDelayDays
	}
	return b.OptimisticDelayDays
}

// HasEntity reports whether name is a configured entity.
func (c *Config) HasEntity(name string) bool {
	for _, e := range c.Entities {
		if e.Name == name {
			return true
		}
	}
	return false
}

// EntityNames returns the configured entity names in declaration order.
func (c *Config) EntityNames() []string {
	names := make([]string, len(c.Entities))
	for i, e := range c.Entities {
		names[i] = e.Name
	}
	return names
}

// Payroll returns the payroll schedule for an entity.
func (c *Config) Payroll(entity string) (PayrollConfig, bool) {
	for _, e := range c.Entities {
		if e.Name == entity {
			return e.Payroll, true
		}
	}
	return PayrollConfig{}, false
}

// AssignEntity maps an acquisition source to its owning entity.
func (c *Config) AssignEntity(source string) (string, error) {
	entity, ok := c.Sources[source]
	if !ok {
		return "", fmt.Errorf("acquisition source %q: %w", source, model.ErrUnknownEntity)
	}
	return entity, nil
}

// Validate checks the configuration for values the engine would reject.
func (c *Config) Validate() error {
	if len(c.Entities) == 0 {
		return fmt.Errorf("config: no entities defined")
	}
	seen := make(map[string]bool, len(c.Entities))
	for _, e := range c.Entities {
		if e.Name == "" {
			return fmt.Errorf("config: entity with empty name")
		}
		if e.Name == model.Consolidated {
			return fmt.Errorf("config: %q is reserved for the consolidated view", model.Consolidated)
		}
		if seen[e.Name] {
			return fmt.Errorf("config: duplicate entity %q", e.Name)
		}
		seen[e.Name] = true
		for _, amt := range []Amount{e.Payroll.MidMonth, e.Payroll.EndMonth} {
			if amt.IsNegative() {
				return fmt.Errorf("config: entity %q: negative payroll amount %s", e.Name, amt)
			}
			if !model.CentPrecise(amt.Decimal) {
				return fmt.Errorf("config: entity %q: payroll amount %s has more than 2 decimal places", e.Name, amt)
			}
		}
	}
	if c.Billing.DefaultInvoiceDay < 1 || c.Billing.DefaultInvoiceDay > 28 {
		return fmt.Errorf("config: default_invoice_day %d outside 1..28", c.Billing.DefaultInvoiceDay)
	}
	if c.Billing.DefaultPaymentTermsDays < 0 {
		return fmt.Errorf("config: negative default_payment_terms_days")
	}
	if c.Billing.OptimisticDelayDays < 0 || c.Billing.RealisticDelayDays < 0 {
		return fmt.Errorf("config: negative payment delay")
	}
	if c.Billing.MultiYearPlanMonths < 12 {
		return fmt.Errorf("config: multi_year_plan_months %d below 12", c.Billing.MultiYearPlanMonths)
	}
	for source, entity := range c.Sources {
		if !seen[entity] {
			return fmt.Errorf("config: source %q maps to unknown entity %q", source, entity)
		}
	}
	return nil
}

// Load reads a flowcast.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func amount(s string) Amount {
	return Amount{decimal.RequireFromString(s)}
}

// Default returns the configuration for the standard two-entity group.
func Default() *Config {
	return &Config{
		Entities: []EntityConfig{
			{
				Name: "YAHSHUA",
				Payroll: PayrollConfig{
					MidMonth: amount("1000000.00"),
					EndMonth: amount("1000000.00"),
				},
			},
			{
				Name: "ABBA",
				Payroll: PayrollConfig{
					MidMonth: amount("500000.00"),
					EndMonth: amount("500000.00"),
				},
			},
		},
		Billing: BillingConfig{
			DefaultInvoiceDay:       15,
			DefaultPaymentTermsDays: 30,
			OptimisticDelayDays:     0,
			RealisticDelayDays:      10,
			MultiYearPlanMonths:     12,
		},
		Sources: map[string]string{
			"RCBC Partner":  "YAHSHUA",
			"Globe Partner": "YAHSHUA",
			"YOWI":          "YAHSHUA",
			"TAI":           "ABBA",
			"PEI":           "ABBA",
		},
	}
}
