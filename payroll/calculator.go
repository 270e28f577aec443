package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
)

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator applies one Policy. The zero value is not usable; create one
// with NewCalculator. A Calculator is immutable and safe for concurrent use.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy returns the policy the calculator applies.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// ComputeMonthlyDeductions derives provident fund and income tax for one
// month.
//
//	provident fund = base * rate              (allowances excluded)
//	income tax     = AnnualTax(gross * 12) / 12
//
// Negative inputs, and inputs outside generic.InRange, are treated as zero.
func (c *Calculator) ComputeMonthlyDeductions(baseMonthlySalary, grossMonthlyEarnings decimal.Decimal) DeductionResult {
	base := generic.ValidAmount(baseMonthlySalary)
	gross := generic.ValidAmount(grossMonthlyEarnings)

	pf := base.Mul(c.policy.ProvidentFundRate)

	annualGross := gross.Mul(monthsPerYear)
	annualTax := c.policy.Brackets.AnnualTax(annualGross)
	monthlyTax := annualTax.Div(monthsPerYear)

	return DeductionResult{
		MonthlyProvidentFund:  pf,
		MonthlyIncomeTax:      monthlyTax,
		TotalMonthlyDeduction: pf.Add(monthlyTax),
		AnnualGross:           annualGross,
		AnnualTax:             annualTax,
	}
}

// ComputeYearToDate accrues a monthly amount from the later of the hire month
// and the start of the accrual year through the month of evaluationDate.
// Hires after evaluationDate accrue zero.
func (c *Calculator) ComputeYearToDate(hireDate generic.TimePoint, perMonthAmount decimal.Decimal, evaluationDate generic.TimePoint) decimal.Decimal {
	return c.policy.AccrualYear.AccrueMonthly(hireDate, generic.ValidAmount(perMonthAmount), evaluationDate)
}

// =============================================================================
// PACKAGE-LEVEL SHORTCUTS (default policy)
// =============================================================================

var defaultCalculator = NewCalculator(DefaultPolicy())

// ComputeMonthlyDeductions applies the default policy.
func ComputeMonthlyDeductions(baseMonthlySalary, grossMonthlyEarnings decimal.Decimal) DeductionResult {
	return defaultCalculator.ComputeMonthlyDeductions(baseMonthlySalary, grossMonthlyEarnings)
}

// ComputeYearToDate applies the default (calendar year) accrual.
func ComputeYearToDate(hireDate generic.TimePoint, perMonthAmount decimal.Decimal, evaluationDate generic.TimePoint) decimal.Decimal {
	return defaultCalculator.ComputeYearToDate(hireDate, perMonthAmount, evaluationDate)
}
