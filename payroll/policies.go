/*
policies.go - Pre-built tax policy configurations

PURPOSE:
  Ready-to-use policies for common setups. They all keep the default bracket
  table and provident fund rate; only identity, accrual year and effective
  date change. New rates belong in configuration (see factory), not here.

AVAILABLE POLICIES:
  DefaultPolicy:       Built-in table, calendar-year accrual (policy.go)
  FiscalYearPolicy:    Built-in table, accrual year starting on a given month
  StandardPolicyJSON:  JSON form of the default policy for the factory/API

SEE ALSO:
  - policy.go: Policy and PolicySet
  - factory/policy.go: JSON/YAML policy creation
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// FiscalYearPolicy returns the default rates with YTD accruing from the
// first day of startMonth.
func FiscalYearPolicy(id generic.PolicyID, startMonth time.Month, effectiveFrom generic.TimePoint) Policy {
	p := DefaultPolicy()
	p.ID = id
	p.Name = fmt.Sprintf("Fiscal Year (%s start)", startMonth)
	p.AccrualYear = generic.FiscalYear(startMonth)
	p.EffectiveFrom = effectiveFrom
	return p
}

// StandardPolicyJSON returns the default policy in the factory's JSON schema.
func StandardPolicyJSON(id, name, effectiveFrom string) string {
	return fmt.Sprintf(`{
  "id": %q,
  "name": %q,
  "currency": "PKR",
  "provident_fund_rate": "0.08",
  "period_type": "calendar_year",
  "effective_from": %q,
  "brackets": [
    {"from": "0", "up_to": "600000", "base": "0", "rate": "0"},
    {"from": "600000", "up_to": "1200000", "base": "0", "rate": "0.05"},
    {"from": "1200000", "up_to": "2200000", "base": "30000", "rate": "0.15"},
    {"from": "2200000", "up_to": "3200000", "base": "180000", "rate": "0.20"},
    {"from": "3200000", "base": "380000", "rate": "0.25"}
  ]
}`, id, name, effectiveFrom)
}
