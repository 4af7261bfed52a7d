package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcast-dev/flowcast/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Entities, 2)
	assert.Equal(t, []string{"YAHSHUA", "ABBA"}, cfg.EntityNames())

	p, ok := cfg.Payroll("YAHSHUA")
	require.True(t, ok)
	assert.True(t, p.MonthlyTotal().Equal(decimal.RequireFromString("2000000.00")))

	p, ok = cfg.Payroll("ABBA")
	require.True(t, ok)
	assert.True(t, p.MonthlyTotal().Equal(decimal.RequireFromString("1000000.00")))

	_, ok = cfg.Payroll("NOBODY")
	assert.False(t, ok)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flowcast.yaml")

	cfg := Default()
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.EntityNames(), loaded.EntityNames())
	assert.Equal(t, cfg.Billing, loaded.Billing)
	assert.Equal(t, cfg.Sources, loaded.Sources)

	p, ok := loaded.Payroll("YAHSHUA")
	require.True(t, ok)
	assert.True(t, p.MidMonth.Equal(decimal.RequireFromString("1000000.00")))
}

func TestLoad_AmountKeepsExactCents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flowcast.yaml")
	data := `
entities:
  - name: SOLO
    payroll:
      mid_month: "123456.78"
      end_month: "0.01"
billing:
  default_invoice_day: 15
  default_payment_terms_days: 30
  optimistic_delay_days: 0
  realistic_delay_days: 10
  multi_year_plan_months: 12
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	p, ok := cfg.Payroll("SOLO")
	require.True(t, ok)
	assert.Equal(t, "123456.78", p.MidMonth.StringFixed(2))
	assert.Equal(t, "123456.79", p.MonthlyTotal().StringFixed(2))
}

func TestLoad_BadAmount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flowcast.yaml")
	data := `
entities:
  - name: SOLO
    payroll:
      mid_month: "not-a-number"
      end_month: "1.00"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no entities", func(c *Config) { c.Entities = nil }, "no entities"},
		{"reserved name", func(c *Config) { c.Entities[0].Name = model.Consolidated }, "reserved"},
		{"duplicate entity", func(c *Config) { c.Entities[1].Name = c.Entities[0].Name }, "duplicate"},
		{"payroll precision", func(c *Config) {
			c.Entities[0].Payroll.MidMonth = Amount{decimal.RequireFromString("0.005")}
		}, "decimal places"},
		{"negative payroll", func(c *Config) {
			c.Entities[0].Payroll.EndMonth = Amount{decimal.RequireFromString("-5")}
		}, "negative payroll"},
		{"invoice day low", func(c *Config) { c.Billing.DefaultInvoiceDay = 0 }, "outside 1..28"},
		{"invoice day high", func(c *Config) { c.Billing.DefaultInvoiceDay = 29 }, "outside 1..28"},
		{"negative delay", func(c *Config) { c.Billing.RealisticDelayDays = -1 }, "negative payment delay"},
		{"multi-year too short", func(c *Config) { c.Billing.MultiYearPlanMonths = 6 }, "below 12"},
		{"source to unknown entity", func(c *Config) { c.Sources["Nowhere"] = "GHOST" }, "unknown entity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAssignEntity(t *testing.T) {
	cfg := Default()

	entity, err := cfg.AssignEntity("RCBC Partner")
	require.NoError(t, err)
	assert.Equal(t, "YAHSHUA", entity)

	entity, err = cfg.AssignEntity("PEI")
	require.NoError(t, err)
	assert.Equal(t, "ABBA", entity)

	_, err = cfg.AssignEntity("Walk-in")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownEntity)
}

func TestDelayDays(t *testing.T) {
	b := Default().Billing
	assert.Equal(t, 0, b.DelayDays(model.Optimistic))
	assert.Equal(t, 10, b.DelayDays(model.Realistic))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
