package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

func sampleInput() payroll.PayslipInput {
	return payroll.PayslipInput{
		Profile: payroll.EmployeePayProfile{
			EmployeeID:        "emp-001",
			Name:              "Sample Employee",
			HireDate:          date(2023, time.January, 15),
			BaseMonthlySalary: dec("100000"),
		},
		Allowances: payroll.AllowanceSet{
			"House Allowance":   dec("20000"),
			"Travel Allowance":  dec("10000"),
			"Medical Allowance": dec("5000"),
		},
		Period: generic.NewPayPeriod(2025, time.June),
	}
}

func TestBuildPayslipFigures_EndToEnd(t *testing.T) {
	// GIVEN: base 100,000 with 35,000 allowances, hired 2023-01-15
	// WHEN: computing the June 2025 payslip
	f := payroll.BuildPayslipFigures(sampleInput())

	// THEN: monthly figures
	assertDec(t, "135000", f.GrossMonthlyEarnings)
	assertDec(t, "7750", f.Deductions.MonthlyIncomeTax)
	assertDec(t, "8000", f.Deductions.MonthlyProvidentFund)
	assertDec(t, "15750", f.Deductions.TotalMonthlyDeduction)
	assertDec(t, "119250", f.NetMonthlyPay)

	// AND: YTD covers Jan-Jun 2025
	assert.Equal(t, 6, f.MonthsAccrued)
	assert.Equal(t, "2025-06-30", f.EvaluationDate.String())

	want := map[string]string{
		payroll.LineBasicSalary: "600000",
		"House Allowance":       "120000",
		"Travel Allowance":      "60000",
		"Medical Allowance":     "30000",
	}
	for name, ytd := range want {
		line, ok := f.Earning(name)
		require.True(t, ok, "missing earnings line %s", name)
		assertDec(t, ytd, line.YTD, name)
	}
	assertDec(t, "810000", f.TotalEarningsYTD)

	pf, ok := f.Deduction(payroll.LineProvidentFund)
	require.True(t, ok)
	assertDec(t, "48000", pf.YTD)

	tax, ok := f.Deduction(payroll.LineIncomeTax)
	require.True(t, ok)
	assertDec(t, "46500", tax.YTD)
	assertDec(t, "94500", f.TotalDeductionsYTD)

	assert.Equal(t, payroll.DefaultPolicyID, f.PolicyID)
}

func TestBuildPayslipFigures_LineOrder(t *testing.T) {
	f := payroll.BuildPayslipFigures(sampleInput())

	names := make([]string, len(f.Earnings))
	for i, l := range f.Earnings {
		names[i] = l.Name
	}
	assert.Equal(t, []string{payroll.LineBasicSalary, "House Allowance", "Medical Allowance", "Travel Allowance"}, names)
	assert.Equal(t, payroll.LineProvidentFund, f.DeductionLines[0].Name)
	assert.Equal(t, payroll.LineIncomeTax, f.DeductionLines[1].Name)
}

func TestBuildPayslipFigures_Idempotent(t *testing.T) {
	in := sampleInput()

	a := payroll.BuildPayslipFigures(in)
	b := payroll.BuildPayslipFigures(in)

	assert.Equal(t, a, b)
}

func TestBuildPayslipFigures_DoesNotMutateInput(t *testing.T) {
	in := sampleInput()
	in.Allowances["Broken"] = dec("-300")

	_ = payroll.BuildPayslipFigures(in)

	assertDec(t, "-300", in.Allowances["Broken"])
	assertDec(t, "100000", in.Profile.BaseMonthlySalary)
}

func TestBuildPayslipFigures_SameYearHire(t *testing.T) {
	in := sampleInput()
	in.Profile.HireDate = date(2025, time.March, 1)

	f := payroll.BuildPayslipFigures(in)

	assert.Equal(t, 4, f.MonthsAccrued)
	base, _ := f.Earning(payroll.LineBasicSalary)
	assertDec(t, "400000", base.YTD)
	assertDec(t, "540000", f.TotalEarningsYTD)
}

func TestBuildPayslipFigures_FutureHire(t *testing.T) {
	// GIVEN: An employee who joins after the pay month
	in := sampleInput()
	in.Profile.HireDate = date(2025, time.July, 1)

	f := payroll.BuildPayslipFigures(in)

	// THEN: monthly figures are still computed, but nothing has accrued
	assertDec(t, "119250", f.NetMonthlyPay)
	assert.Equal(t, 0, f.MonthsAccrued)
	assert.True(t, f.TotalEarningsYTD.IsZero())
	assert.True(t, f.TotalDeductionsYTD.IsZero())
}

func TestBuildPayslipFigures_ExplicitAsOf(t *testing.T) {
	// GIVEN: A hire on June 20 and an evaluation date of June 10
	in := sampleInput()
	in.Profile.HireDate = date(2025, time.June, 20)
	asOf := date(2025, time.June, 10)
	in.AsOf = &asOf

	f := payroll.BuildPayslipFigures(in)

	// THEN: full-date comparison means nothing has accrued yet
	assert.Equal(t, 0, f.MonthsAccrued)
	assert.True(t, f.TotalEarningsYTD.IsZero())

	// AND: with the default (period end) it accrues the hire month
	in.AsOf = nil
	f = payroll.BuildPayslipFigures(in)
	assert.Equal(t, 1, f.MonthsAccrued)
	assertDec(t, "135000", f.TotalEarningsYTD)
}

func TestBuildPayslipFigures_InvalidNumbersBecomeZero(t *testing.T) {
	in := payroll.PayslipInput{
		Profile: payroll.EmployeePayProfile{
			HireDate:          date(2024, time.May, 1),
			BaseMonthlySalary: generic.ParseOrZero("abc"),
		},
		Allowances: payroll.AllowanceSet{
			"House Allowance": generic.ParseOrZero(nil),
			"Bonus":           dec("-1"),
		},
		Period: generic.NewPayPeriod(2025, time.February),
	}

	f := payroll.BuildPayslipFigures(in)

	assert.True(t, f.GrossMonthlyEarnings.IsZero())
	assert.True(t, f.NetMonthlyPay.IsZero())
	assert.True(t, f.TotalEarningsYTD.IsZero())
	for _, l := range f.Earnings {
		assert.False(t, l.Monthly.IsNegative(), l.Name)
	}
}

func TestBuildPayslipFigures_OutOfRangeAmountsBecomeZero(t *testing.T) {
	// GIVEN: amounts with exponents far beyond any salary
	in := sampleInput()
	in.Profile.BaseMonthlySalary = decimal.New(1, 100000000)
	in.Allowances["House Allowance"] = decimal.New(1, -100000000)

	// WHEN: computing
	f := payroll.BuildPayslipFigures(in)

	// THEN: they count as zero and the remaining allowances still apply
	assertDec(t, "15000", f.GrossMonthlyEarnings)
	assertDec(t, "0", f.Deductions.MonthlyProvidentFund)
	assert.Equal(t, "15000.00", f.NetMonthlyPay.StringFixed(2))
}

func TestBuildPayslipFigures_ReservedAllowanceName(t *testing.T) {
	// GIVEN: an allowance named like a fixed line
	in := sampleInput()
	in.Allowances = payroll.AllowanceSet{"Basic Salary": dec("500")}

	f := payroll.BuildPayslipFigures(in)

	// THEN: the fixed line still resolves to the base salary
	base, ok := f.Earning(payroll.LineBasicSalary)
	require.True(t, ok)
	assertDec(t, "100000", base.Monthly)

	extra, ok := f.Earning("Basic Salary (allowance)")
	require.True(t, ok)
	assertDec(t, "500", extra.Monthly)
	assertDec(t, "100500", f.GrossMonthlyEarnings)
}

func TestBuildPayslipFigures_NoAllowances(t *testing.T) {
	in := sampleInput()
	in.Allowances = nil

	f := payroll.BuildPayslipFigures(in)

	require.Len(t, f.Earnings, 1)
	assertDec(t, "100000", f.GrossMonthlyEarnings)
	// 1,200,000 annual sits on the bracket 2 upper bound: 30,000 / 12
	assertDec(t, "2500", f.Deductions.MonthlyIncomeTax)
	assertDec(t, "89500", f.NetMonthlyPay)
}

func TestCalculator_CustomPolicy(t *testing.T) {
	// GIVEN: A policy with no provident fund and a flat 10% tax
	p := payroll.Policy{
		ID:                "flat",
		ProvidentFundRate: decimal.Zero,
		Brackets: payroll.BracketTable{
			{From: decimal.Zero, Rate: dec("0.10")},
		},
		AccrualYear: generic.CalendarYear(),
	}
	require.NoError(t, p.Validate())

	f := payroll.NewCalculator(p).BuildPayslipFigures(sampleInput())

	assertDec(t, "13500", f.Deductions.MonthlyIncomeTax)
	assert.True(t, f.Deductions.MonthlyProvidentFund.IsZero())
	assertDec(t, "121500", f.NetMonthlyPay)
	assert.Equal(t, generic.PolicyID("flat"), f.PolicyID)
}
