package payroll

import (
	"strings"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// StrictInput is raw, untrusted payslip input for call sites that must
// reject bad data rather than silently zero it.
type StrictInput struct {
	EmployeeID        string
	BaseMonthlySalary string
	Allowances        map[string]string
	HireDate          string // YYYY-MM-DD
	Year              int
	Month             int
	AsOf              string // optional YYYY-MM-DD
}

// ParseStrictInput validates every field and converts it into PayslipInput.
// All problems are reported together in a *generic.ValidationError.
func ParseStrictInput(raw StrictInput) (PayslipInput, error) {
	verr := &generic.ValidationError{}
	var in PayslipInput

	in.Profile.EmployeeID = generic.EmployeeID(raw.EmployeeID)

	base, err := generic.ParseStrict(raw.BaseMonthlySalary)
	if err != nil {
		verr.Add("base_monthly_salary", "must be a non-negative number")
	}
	in.Profile.BaseMonthlySalary = base

	in.Allowances = make(AllowanceSet, len(raw.Allowances))
	for name, value := range raw.Allowances {
		if strings.TrimSpace(name) == "" {
			verr.Add("allowances", "allowance name is required")
			continue
		}
		if IsReservedLineName(name) {
			verr.Add("allowances."+name, "is a reserved line name")
			continue
		}
		amount, err := generic.ParseStrict(value)
		if err != nil {
			verr.Add("allowances."+name, "must be a non-negative number")
			continue
		}
		in.Allowances[name] = amount
	}

	hire, err := generic.ParseDate(raw.HireDate)
	if err != nil {
		verr.Add("hire_date", "must be a date in YYYY-MM-DD format")
	}
	in.Profile.HireDate = hire

	in.Period = generic.NewPayPeriod(raw.Year, time.Month(raw.Month))
	if err := in.Period.Validate(); err != nil {
		verr.Add("period", err.Error())
	}

	if raw.AsOf != "" {
		asOf, err := generic.ParseDate(raw.AsOf)
		if err != nil {
			verr.Add("as_of", "must be a date in YYYY-MM-DD format")
		} else {
			in.AsOf = &asOf
		}
	}

	if err := verr.Err(); err != nil {
		return PayslipInput{}, err
	}
	return in, nil
}

// BuildPayslipStrict validates raw input, then computes the payslip.
func (c *Calculator) BuildPayslipStrict(raw StrictInput) (PayslipFigures, error) {
	in, err := ParseStrictInput(raw)
	if err != nil {
		return PayslipFigures{}, err
	}
	return c.BuildPayslipFigures(in), nil
}
