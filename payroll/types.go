/*
Package payroll computes monthly pay, statutory deductions and year-to-date
figures for one employee and one pay period.

PURPOSE:
  The calculator is a pure function of its inputs: base salary, allowances,
  hire date, pay period and the tax policy in force. It holds no state,
  performs no I/O and never reads the wall clock. Any number of calculations
  may run concurrently.

KEY CONCEPTS:
  - EmployeePayProfile: base salary + hire date (+ pass-through identity)
  - AllowanceSet: free-form allowance name -> monthly amount
  - DeductionResult: provident fund + income tax for one month
  - PayslipFigures: monthly and YTD figures for every earnings/deduction line
  - Policy: bracket table + provident fund rate + accrual year

INPUT POLICY:
  Negative, missing or out-of-range amounts are treated as zero. The
  calculator never fails; use BuildPayslipStrict when bad input should be
  rejected instead.

EXAMPLE:
  figures := payroll.BuildPayslipFigures(payroll.PayslipInput{
      Profile: payroll.EmployeePayProfile{
          HireDate:          generic.NewTimePoint(2023, time.January, 15),
          BaseMonthlySalary: decimal.NewFromInt(100000),
      },
      Allowances: payroll.AllowanceSet{"House Allowance": decimal.NewFromInt(20000)},
      Period:     generic.NewPayPeriod(2025, time.June),
  })

SEE ALSO:
  - brackets.go: Progressive tax table
  - calculator.go: Deductions and YTD
  - payslip.go: Composition into payslip figures
  - run.go: Batch payroll runs
*/
package payroll

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// INPUTS
// =============================================================================

// EmployeePayProfile is the calculator's view of an employee.
// Name, Designation and BankName are carried through for reports only.
type EmployeePayProfile struct {
	EmployeeID        generic.EmployeeID
	Name              string
	Designation       string
	BankName          string
	HireDate          generic.TimePoint
	BaseMonthlySalary decimal.Decimal
}

// AllowanceSet maps allowance names to monthly amounts.
// Names are free-form; the calculator treats every entry identically. A name
// equal to a fixed line ("Basic Salary", "Provident Fund", "Income Tax") is
// shown as "<name> (allowance)" on the payslip.
type AllowanceSet map[string]decimal.Decimal

// Total sums all valid allowance amounts (see generic.ValidAmount).
func (a AllowanceSet) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range a {
		total = total.Add(generic.ValidAmount(v))
	}
	return total
}

// Names returns allowance names in sorted order.
func (a AllowanceSet) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileFromRecord converts a stored employee record into calculator input.
func ProfileFromRecord(rec generic.EmployeeRecord) (EmployeePayProfile, AllowanceSet) {
	allowances := make(AllowanceSet, len(rec.Allowances))
	for name, amount := range rec.Allowances {
		allowances[name] = amount
	}
	return EmployeePayProfile{
		EmployeeID:        rec.ID,
		Name:              rec.Name,
		Designation:       rec.Designation,
		BankName:          rec.BankName,
		HireDate:          rec.HireDate,
		BaseMonthlySalary: rec.BaseSalary,
	}, allowances
}

// =============================================================================
// OUTPUTS
// =============================================================================

// DeductionResult holds one month of statutory deductions.
type DeductionResult struct {
	MonthlyProvidentFund  decimal.Decimal
	MonthlyIncomeTax      decimal.Decimal
	TotalMonthlyDeduction decimal.Decimal

	// Annualised figures the monthly tax was derived from.
	AnnualGross decimal.Decimal
	AnnualTax   decimal.Decimal
}

// Line names used on every payslip.
const (
	LineBasicSalary   = "Basic Salary"
	LineProvidentFund = "Provident Fund"
	LineIncomeTax     = "Income Tax"
)

// IsReservedLineName reports whether an allowance name would clash with a
// fixed payslip line. Comparison ignores case and surrounding space.
func IsReservedLineName(name string) bool {
	name = strings.TrimSpace(name)
	for _, reserved := range []string{LineBasicSalary, LineProvidentFund, LineIncomeTax} {
		if strings.EqualFold(name, reserved) {
			return true
		}
	}
	return false
}

// allowanceLineName is the earnings line name for an allowance. Reserved
// names get a suffix so every line name on a payslip stays unique.
func allowanceLineName(name string) string {
	if IsReservedLineName(name) {
		return name + " (allowance)"
	}
	return name
}

// Line is one earnings or deduction row.
type Line struct {
	Name    string
	Monthly decimal.Decimal
	YTD     decimal.Decimal
}

// PayslipFigures is the complete computed payslip.
type PayslipFigures struct {
	Profile        EmployeePayProfile
	PolicyID       generic.PolicyID
	Period         generic.PayPeriod
	EvaluationDate generic.TimePoint
	MonthsAccrued  int

	GrossMonthlyEarnings decimal.Decimal
	Deductions           DeductionResult
	NetMonthlyPay        decimal.Decimal

	// Earnings: basic salary first, then allowances by name.
	// DeductionLines: provident fund, then income tax.
	Earnings       []Line
	DeductionLines []Line

	TotalEarningsYTD   decimal.Decimal
	TotalDeductionsYTD decimal.Decimal
}

// Earning returns the earnings line with the given name.
func (f PayslipFigures) Earning(name string) (Line, bool) {
	return findLine(f.Earnings, name)
}

// Deduction returns the deduction line with the given name.
func (f PayslipFigures) Deduction(name string) (Line, bool) {
	return findLine(f.DeductionLines, name)
}

func findLine(lines []Line, name string) (Line, bool) {
	for _, l := range lines {
		if l.Name == name {
			return l, true
		}
	}
	return Line{}, false
}
