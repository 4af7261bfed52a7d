package portfolio

// ExampleYAML is the starter portfolio written by `flowcast init`. It
// parses against the default configuration.
const ExampleYAML = `# Contract portfolio for cash flow projections.
#
# Dates are YYYY-MM-DD. Money fields are decimal strings; they are
# parsed exactly and never pass through floating point.

customers:
  - id: 1
    company: RCBC Tellers Cooperative
    monthly_fee: "150000.00"
    plan: Monthly            # Monthly | Quarterly | Bi-annually | Annual | More than 1 year
    start: 2026-01-01
    status: Active           # Active | Inactive | Pending | Cancelled
    acquired_by: RCBC Partner
    # invoice_day, payment_terms_days, reliability, and entity fall back
    # to the billing defaults and the acquisition-source mapping.
  - id: 2
    company: Globe SME Payroll
    monthly_fee: "300000.00"
    plan: Quarterly
    start: 2026-02-01
    end: 2027-01-31
    status: Active
    acquired_by: Globe Partner
    invoice_day: 10
    payment_terms_days: 45
    reliability: "0.95"

vendors:
  - id: 1
    name: AWS
    category: Software/Tech  # Payroll | Loans | Software/Tech | Operations | Rent | Utilities
    amount: "85000.00"
    frequency: Monthly       # One-time | Daily | Weekly | Bi-weekly | Monthly | Quarterly | Annual
    due_date: 2026-01-05
    entity: YAHSHUA
    status: Active
  - id: 2
    name: Office fit-out
    category: Operations
    amount: "250000.00"
    frequency: One-time
    due_date: 2026-03-15
    entity: ABBA
    status: Pending          # Active | Inactive | Paid | Pending

balances:
  - entity: YAHSHUA
    date: 2026-01-01
    balance: "2500000.00"
  - entity: ABBA
    date: 2026-01-01
    balance: "1200000.00"

overrides:
  # Move or skip one expected payment, matched by contract and date.
  - kind: customer           # customer | vendor
    contract_id: 2
    original_date: 2026-06-04
    action: move             # move | skip
    new_date: 2026-06-20

scenarios:
  - name: q2-hiring
    entity: YAHSHUA
    changes:
      - type: hiring
        start: 2026-04-01
        employees: 2
        salary_per_employee: "45000.00"
  - name: globe-churn
    entity: YAHSHUA
    changes:
      - type: customer_loss
        start: 2026-06-01
        lost_revenue: "150000.00"
`
