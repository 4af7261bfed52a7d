package projection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcast-dev/flowcast/internal/config"
	"github.com/flowcast-dev/flowcast/internal/model"
	"github.com/flowcast-dev/flowcast/internal/period"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testConfig has no payroll so arithmetic-focused tests control every
// event explicitly.
func testConfig() *config.Config {
	return &config.Config{
		Entities: []config.EntityConfig{{Name: "YAHSHUA"}, {Name: "ABBA"}},
		Billing: config.BillingConfig{
			DefaultInvoiceDay:       15,
			DefaultPaymentTermsDays: 30,
			OptimisticDelayDays:     0,
			RealisticDelayDays:      10,
			MultiYearPlanMonths:     12,
		},
	}
}

func customer(id int, entity, fee string) model.CustomerContract {
	return model.CustomerContract{
		ID:               id,
		Company:          "ACME Corp",
		MonthlyFee:       dec(fee),
		Plan:             model.PlanMonthly,
		Start:            date(2026, 1, 1),
		Status:           model.StatusActive,
		InvoiceDay:       15,
		PaymentTermsDays: 30,
		Reliability:      dec("0.80"),
		Entity:           entity,
	}
}

func vendor(id int, entity, amount string) model.VendorContract {
	return model.VendorContract{
		ID:        id,
		Name:      "AWS",
		Category:  model.CategorySoftwareTech,
		Amount:    dec(amount),
		Frequency: model.FreqMonthly,
		DueDate:   date(2026, 1, 20),
		Entity:    entity,
		Priority:  3,
		Status:    model.StatusActive,
	}
}

func balance(entity string, d time.Time, amount string) model.BankBalance {
	return model.BankBalance{Entity: entity, Date: d, Balance: dec(amount)}
}

func request(entity string, tf model.Timeframe) Request {
	return Request{
		Entity:    entity,
		Window:    model.Window{Start: date(2026, 1, 1), End: date(2026, 12, 31)},
		Timeframe: tf,
		Scenario:  model.Optimistic,
	}
}

func requireChain(t *testing.T, points []model.ProjectionDataPoint) {
	t.Helper()
	for i, pt := range points {
		want := pt.StartingCash.Add(pt.Inflows).Sub(pt.Outflows)
		require.True(t, pt.EndingCash.Equal(want),
			"point %d: ending %s != %s + %s - %s", i, pt.EndingCash, pt.StartingCash, pt.Inflows, pt.Outflows)
		if i > 0 {
			require.True(t, pt.StartingCash.Equal(points[i-1].EndingCash),
				"point %d starting cash does not chain", i)
		}
		require.Equal(t, pt.EndingCash.IsNegative(), pt.IsNegative, "point %d negative flag", i)
	}
}

func TestGenerate_ExactReconciliation(t *testing.T) {
	// Tenth-of-a-unit amounts drift under binary floats; the chain must
	// stay exact anyway.
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{
			customer(1, "YAHSHUA", "0.10"),
			customer(2, "YAHSHUA", "0.10"),
			customer(3, "YAHSHUA", "0.10"),
		},
		Vendors:  []model.VendorContract{vendor(1, "YAHSHUA", "0.20")},
		Balances: []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "1.00")},
	}

	res, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	require.Len(t, res.Points, 12)
	requireChain(t, res.Points)

	// 12 months x 3 customers x 0.10 in, 12 x 0.20 out, from 1.00.
	final := res.Points[len(res.Points)-1]
	assert.Equal(t, "2.20", final.EndingCash.StringFixed(2))
}

func TestGenerate_SeedBalancePicksMostRecentAtOrBeforeStart(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Balances: []model.BankBalance{
			balance("YAHSHUA", date(2025, 11, 30), "500.00"),
			balance("YAHSHUA", date(2025, 12, 31), "750.00"),
			balance("YAHSHUA", date(2026, 3, 1), "9999.00"), // after start, ignored
		},
	}

	res, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	assert.Equal(t, "750.00", res.Points[0].StartingCash.StringFixed(2))
}

func TestGenerate_MissingBalanceIsFatal(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100.00")},
		Balances:  []model.BankBalance{balance("YAHSHUA", date(2026, 2, 1), "500.00")}, // only after start
	}

	_, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBalance)
	assert.Contains(t, err.Error(), "YAHSHUA")
}

func TestGenerate_UnknownRequestEntityIsFatal(t *testing.T) {
	p := NewProjector(testConfig())
	_, err := p.Generate(request("GHOST", model.Monthly), Inputs{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownEntity)
}

func TestGenerate_UnknownRecordEntityIsFatalEvenOutOfScope(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "GHOST", "100.00")},
		Balances:  []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "500.00")},
	}

	_, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownEntity)
}

func TestGenerate_BadRequests(t *testing.T) {
	p := NewProjector(testConfig())
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"window backwards", func(r *Request) { r.Window.End = r.Window.Start.AddDate(0, 0, -1) }},
		{"unknown timeframe", func(r *Request) { r.Timeframe = model.Timeframe("hourly") }},
		{"unknown scenario", func(r *Request) { r.Scenario = model.ReliabilityScenario("hopeful") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request("YAHSHUA", model.Monthly)
			tt.mutate(&req)
			_, err := p.Generate(req, Inputs{Balances: []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "1.00")}})
			require.Error(t, err)
		})
	}
}

func TestGenerate_EntityIsolation(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100.00")},
		Vendors:   []model.VendorContract{vendor(1, "ABBA", "40.00")},
		Balances: []model.BankBalance{
			balance("YAHSHUA", date(2026, 1, 1), "1000.00"),
			balance("ABBA", date(2026, 1, 1), "500.00"),
		},
	}

	res, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	for _, pt := range res.Points {
		assert.Equal(t, "YAHSHUA", pt.Entity)
		assert.True(t, pt.Outflows.IsZero(), "the other entity's vendor never leaks in")
	}
	for _, ev := range res.Events {
		assert.Equal(t, "YAHSHUA", ev.Entity)
	}
}

func TestGenerate_Consolidated(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100.00")},
		Vendors:   []model.VendorContract{vendor(1, "ABBA", "40.00")},
		Balances: []model.BankBalance{
			balance("YAHSHUA", date(2026, 1, 1), "1000.00"),
			balance("ABBA", date(2026, 1, 1), "500.00"),
		},
	}

	yah, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	abba, err := p.Generate(request("ABBA", model.Monthly), in)
	require.NoError(t, err)
	consolidated, err := p.Generate(request(model.Consolidated, model.Monthly), in)
	require.NoError(t, err)

	require.Len(t, consolidated.Points, 12)
	requireChain(t, consolidated.Points)
	assert.Equal(t, "1500.00", consolidated.Points[0].StartingCash.StringFixed(2))

	for i, pt := range consolidated.Points {
		assert.Equal(t, model.Consolidated, pt.Entity)
		assert.True(t, pt.Date.Equal(yah.Points[i].Date), "bucket boundaries match")
		assert.True(t, pt.Inflows.Equal(yah.Points[i].Inflows.Add(abba.Points[i].Inflows)), "bucket %d inflows", i)
		assert.True(t, pt.Outflows.Equal(yah.Points[i].Outflows.Add(abba.Points[i].Outflows)), "bucket %d outflows", i)
		assert.True(t, pt.EndingCash.Equal(yah.Points[i].EndingCash.Add(abba.Points[i].EndingCash)), "bucket %d ending", i)
	}

	// Merged events keep their entity tags for display.
	entities := map[string]bool{}
	for _, ev := range consolidated.Events {
		entities[ev.Entity] = true
	}
	assert.True(t, entities["YAHSHUA"] && entities["ABBA"])
}

func TestGenerate_ConsolidatedNeedsEveryBalance(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Balances: []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "1000.00")},
	}

	_, err := p.Generate(request(model.Consolidated, model.Monthly), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBalance)
	assert.Contains(t, err.Error(), "ABBA")
}

func TestGenerate_PayrollTotalIndependentOfTimeframe(t *testing.T) {
	cfg := config.Default()
	p := NewProjector(cfg)
	in := Inputs{
		Balances: []model.BankBalance{
			balance("YAHSHUA", date(2026, 2, 1), "10000000.00"),
			balance("ABBA", date(2026, 2, 1), "10000000.00"),
		},
	}
	febReq := func(tf model.Timeframe) Request {
		return Request{
			Entity:    "YAHSHUA",
			Window:    model.Window{Start: date(2026, 2, 1), End: date(2026, 2, 28)},
			Timeframe: tf,
			Scenario:  model.Realistic,
		}
	}

	wantTotal := dec("2000000.00")
	for _, tf := range []model.Timeframe{model.Daily, model.Weekly, model.Monthly, model.Quarterly} {
		res, err := p.Generate(febReq(tf), in)
		require.NoError(t, err)
		total := decimal.Zero
		for _, pt := range res.Points {
			total = total.Add(pt.Outflows)
		}
		assert.True(t, total.Equal(wantTotal), "timeframe %s: got %s", tf, total)
	}

	// February pay dates: the 15th and the 28th.
	res, err := p.Generate(febReq(model.Daily), in)
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Equal(t, date(2026, 2, 15), res.Events[0].Date)
	assert.Equal(t, date(2026, 2, 28), res.Events[1].Date)
}

func TestGenerate_OverridesApplied(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100.00")},
		Balances:  []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "0.00")},
		Overrides: []model.PaymentOverride{
			// February payment (invoiced Jan 15, due Feb 14) skipped.
			{Kind: model.OverrideCustomer, ContractID: 1, OriginalDate: date(2026, 2, 14),
				Action: model.ActionSkip, Entity: "YAHSHUA"},
		},
	}

	res, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	require.Empty(t, res.Unmatched)
	requireChain(t, res.Points)

	total := decimal.Zero
	for _, pt := range res.Points {
		total = total.Add(pt.Inflows)
	}
	assert.Equal(t, "1100.00", total.StringFixed(2), "11 of 12 payments remain")
	assert.True(t, res.Points[1].Inflows.IsZero(), "February bucket is empty")
}

func TestGenerate_UnmatchedOverrideSurfacedNotFatal(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100.00")},
		Balances:  []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "0.00")},
		Overrides: []model.PaymentOverride{
			{Kind: model.OverrideCustomer, ContractID: 1, OriginalDate: date(2027, 6, 14),
				Action: model.ActionSkip, Entity: "YAHSHUA"},
		},
	}

	res, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err, "an override outside the window is a no-op")
	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, date(2027, 6, 14), res.Unmatched[0].OriginalDate)

	total := decimal.Zero
	for _, pt := range res.Points {
		total = total.Add(pt.Inflows)
	}
	assert.Equal(t, "1200.00", total.StringFixed(2), "all 12 payments intact")
}

func TestGenerate_MoveIntoWindow(t *testing.T) {
	// Long payment terms push the December billing into January 2027;
	// an override pulls it back inside the window.
	c := customer(1, "YAHSHUA", "100.00")
	c.PaymentTermsDays = 60
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{c},
		Balances:  []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "0.00")},
	}

	base, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	baseTotal := decimal.Zero
	for _, pt := range base.Points {
		baseTotal = baseTotal.Add(pt.Inflows)
	}
	assert.Equal(t, "1100.00", baseTotal.StringFixed(2), "December billing pays outside the window")

	in.Overrides = []model.PaymentOverride{
		{Kind: model.OverrideCustomer, ContractID: 1, OriginalDate: date(2027, 1, 14),
			Action: model.ActionMove, NewDate: date(2026, 12, 28), Entity: "YAHSHUA"},
	}
	moved, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	require.Empty(t, moved.Unmatched)
	movedTotal := decimal.Zero
	for _, pt := range moved.Points {
		movedTotal = movedTotal.Add(pt.Inflows)
	}
	assert.Equal(t, "1200.00", movedTotal.StringFixed(2))
	assert.True(t, moved.Points[11].Inflows.Equal(dec("200.00")), "December holds its own and the moved payment")
}

func TestGenerate_MoveOutOfWindowDropsEvent(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100.00")},
		Balances:  []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "0.00")},
		Overrides: []model.PaymentOverride{
			{Kind: model.OverrideCustomer, ContractID: 1, OriginalDate: date(2026, 12, 14),
				Action: model.ActionMove, NewDate: date(2027, 1, 10), Entity: "YAHSHUA"},
		},
	}

	res, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)
	require.Empty(t, res.Unmatched, "the override matched before the window clip")
	total := decimal.Zero
	for _, pt := range res.Points {
		total = total.Add(pt.Inflows)
	}
	assert.Equal(t, "1100.00", total.StringFixed(2))
}

func TestGenerate_EventSumsMatchBuckets(t *testing.T) {
	// Drill-down totals reconcile with every bucket exactly.
	cfg := config.Default()
	p := NewProjector(cfg)
	in := Inputs{
		Customers: []model.CustomerContract{
			customer(1, "YAHSHUA", "100000.00"),
			customer(2, "ABBA", "250000.00"),
		},
		Vendors: []model.VendorContract{
			vendor(1, "YAHSHUA", "50000.00"),
			vendor(2, "ABBA", "75000.00"),
		},
		Balances: []model.BankBalance{
			balance("YAHSHUA", date(2026, 1, 1), "10000000.00"),
			balance("ABBA", date(2026, 1, 1), "5000000.00"),
		},
	}

	res, err := p.Generate(request(model.Consolidated, model.Weekly), in)
	require.NoError(t, err)
	requireChain(t, res.Points)

	periodStart := date(2026, 1, 1)
	for i, pt := range res.Points {
		inflows := decimal.Zero
		outflows := decimal.Zero
		for _, ev := range res.EventsForPeriod(periodStart, pt.Date) {
			if ev.Direction == model.Inflow {
				inflows = inflows.Add(ev.Amount)
			} else {
				outflows = outflows.Add(ev.Amount)
			}
		}
		require.True(t, inflows.Equal(pt.Inflows), "bucket %d inflows: events %s, point %s", i, inflows, pt.Inflows)
		require.True(t, outflows.Equal(pt.Outflows), "bucket %d outflows: events %s, point %s", i, outflows, pt.Outflows)
		periodStart = pt.Date.AddDate(0, 0, 1)
	}
}

func TestGenerate_EventsForPeriodMatchesPeriodRange(t *testing.T) {
	cfg := config.Default()
	p := NewProjector(cfg)
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100000.00")},
		Balances: []model.BankBalance{
			balance("YAHSHUA", date(2026, 1, 1), "10000000.00"),
			balance("ABBA", date(2026, 1, 1), "1.00"),
		},
	}

	res, err := p.Generate(request("YAHSHUA", model.Monthly), in)
	require.NoError(t, err)

	w, label, err := period.Range(res.Points[1].Date, model.Monthly, date(2026, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "February 2026", label)

	events := res.EventsForPeriod(w.Start, w.End)
	require.Len(t, events, 3, "customer payment plus two payroll runs")
}

func TestGenerate_ThreeYearDaily(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{
		Customers: []model.CustomerContract{customer(1, "YAHSHUA", "100.00")},
		Vendors:   []model.VendorContract{vendor(1, "YAHSHUA", "40.00")},
		Balances:  []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "1000.00")},
	}
	req := Request{
		Entity:    "YAHSHUA",
		Window:    model.Window{Start: date(2026, 1, 1), End: date(2028, 12, 31)},
		Timeframe: model.Daily,
		Scenario:  model.Realistic,
	}

	res, err := p.Generate(req, in)
	require.NoError(t, err)
	require.Len(t, res.Points, 1096, "2026 + 2027 + leap 2028")
	requireChain(t, res.Points)
}

func TestGenerate_PointMetadata(t *testing.T) {
	p := NewProjector(testConfig())
	in := Inputs{Balances: []model.BankBalance{balance("YAHSHUA", date(2026, 1, 1), "1.00")}}

	req := request("YAHSHUA", model.Quarterly)
	req.Scenario = model.Realistic
	res, err := p.Generate(req, in)
	require.NoError(t, err)
	require.Len(t, res.Points, 4)
	for _, pt := range res.Points {
		assert.Equal(t, model.Quarterly, pt.Timeframe)
		assert.Equal(t, model.Realistic, pt.Scenario)
		assert.Equal(t, "YAHSHUA", pt.Entity)
	}
	assert.Equal(t, date(2026, 3, 31), res.Points[0].Date)
}
