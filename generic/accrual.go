package generic

import "github.com/shopspring/decimal"

// =============================================================================
// MONTHLY ACCRUAL - Year-to-date counting
// =============================================================================

// MonthsAccrued counts the pay months that have accrued as of `asOf`.
//
// Accrual starts at the later of the hire month and the first month of the
// accrual year containing `asOf`, and runs through the month of `asOf`,
// both inclusive. Earlier years are never counted.
//
// A hire date strictly after `asOf` (compared as full dates, not months)
// accrues nothing.
//
//	hire 2025-03-01, asOf 2025-06-30 -> 4 (Mar, Apr, May, Jun)
//	hire 2023-01-15, asOf 2025-06-30 -> 6 (Jan..Jun)
//	hire 2025-06-20, asOf 2025-06-10 -> 0
func (pc PeriodConfig) MonthsAccrued(hire, asOf TimePoint) int {
	if hire.After(asOf) {
		return 0
	}

	start := pc.PeriodFor(asOf).Start
	if hire.After(start) {
		start = StartOfMonth(hire.Year(), hire.Month())
	}

	return MonthsBetween(start, asOf) + 1
}

// AccrueMonthly returns perMonth multiplied by the accrued month count.
func (pc PeriodConfig) AccrueMonthly(hire TimePoint, perMonth decimal.Decimal, asOf TimePoint) decimal.Decimal {
	months := pc.MonthsAccrued(hire, asOf)
	if months <= 0 {
		return decimal.Zero
	}
	return perMonth.Mul(decimal.NewFromInt(int64(months)))
}
