package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// PAYSLIP COMPOSITION
// =============================================================================

// PayslipInput is everything one payslip calculation needs.
type PayslipInput struct {
	Profile    EmployeePayProfile
	Allowances AllowanceSet
	Period     generic.PayPeriod

	// AsOf is the evaluation date for year-to-date figures. When nil or
	// zero the last day of Period is used, so an employee hired any day
	// within the pay month accrues that month.
	AsOf *generic.TimePoint
}

// EvaluationDate resolves the "as of" date for YTD figures.
func (in PayslipInput) EvaluationDate() generic.TimePoint {
	if in.AsOf != nil && !in.AsOf.IsZero() {
		return *in.AsOf
	}
	return in.Period.End()
}

// BuildPayslipFigures composes gross pay, deductions, net pay and YTD
// figures. It never fails: negative amounts count as zero.
//
//	gross = base + sum(allowances)
//	net   = gross - (provident fund + income tax)
//	YTD   = monthly figure * months accrued, for every line
func (c *Calculator) BuildPayslipFigures(in PayslipInput) PayslipFigures {
	base := generic.ValidAmount(in.Profile.BaseMonthlySalary)
	gross := base.Add(in.Allowances.Total())

	deductions := c.ComputeMonthlyDeductions(base, gross)
	net := gross.Sub(deductions.TotalMonthlyDeduction)

	asOf := in.EvaluationDate()
	hire := in.Profile.HireDate
	ytd := func(monthly decimal.Decimal) decimal.Decimal {
		return c.ComputeYearToDate(hire, monthly, asOf)
	}

	earnings := make([]Line, 0, len(in.Allowances)+1)
	earnings = append(earnings, Line{Name: LineBasicSalary, Monthly: base, YTD: ytd(base)})
	for _, name := range in.Allowances.Names() {
		amount := generic.ValidAmount(in.Allowances[name])
		earnings = append(earnings, Line{Name: allowanceLineName(name), Monthly: amount, YTD: ytd(amount)})
	}

	deductionLines := []Line{
		{Name: LineProvidentFund, Monthly: deductions.MonthlyProvidentFund, YTD: ytd(deductions.MonthlyProvidentFund)},
		{Name: LineIncomeTax, Monthly: deductions.MonthlyIncomeTax, YTD: ytd(deductions.MonthlyIncomeTax)},
	}

	totalEarningsYTD := decimal.Zero
	for _, l := range earnings {
		totalEarningsYTD = totalEarningsYTD.Add(l.YTD)
	}
	totalDeductionsYTD := deductionLines[0].YTD.Add(deductionLines[1].YTD)

	return PayslipFigures{
		Profile:              in.Profile,
		PolicyID:             c.policy.ID,
		Period:               in.Period,
		EvaluationDate:       asOf,
		MonthsAccrued:        c.policy.AccrualYear.MonthsAccrued(hire, asOf),
		GrossMonthlyEarnings: gross,
		Deductions:           deductions,
		NetMonthlyPay:        net,
		Earnings:             earnings,
		DeductionLines:       deductionLines,
		TotalEarningsYTD:     totalEarningsYTD,
		TotalDeductionsYTD:   totalDeductionsYTD,
	}
}

// BuildPayslipFigures applies the default policy.
func BuildPayslipFigures(in PayslipInput) PayslipFigures {
	return defaultCalculator.BuildPayslipFigures(in)
}
