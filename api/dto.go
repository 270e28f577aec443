/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, SaveEmployeeRequest, SalaryRequest

  Payslip:
    PayslipDTO, LineDTO, SavedPayslipDTO, CreatePayslipRequest

  Payroll:
    CalculateRequest (lenient), StrictCalculateRequest, RunRequest, RunResponse

  Policy:
    PolicyDTO (wraps factory.PolicyJSON), CreatePolicyRequest

  Activity / Scenarios:
    ActivityDTO, ScenarioDTO

MONEY:
  Amounts go out as strings with two decimals ("119250.00"). The engine
  keeps exact decimals; rounding only happens here, for display.

VALIDATION:
  Request types carry `validate` tags checked by go-playground/validator
  (see validation.go). CalculateRequest is deliberately untagged: it is the
  lenient endpoint where bad numbers become zero.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	Designation string            `json:"designation,omitempty"`
	BankName    string            `json:"bank_name,omitempty"`
	HireDate    string            `json:"hire_date,omitempty"`
	BaseSalary  string            `json:"base_salary"`
	Allowances  map[string]string `json:"allowances"`
	CreatedAt   string            `json:"created_at,omitempty"`
}

// SaveEmployeeRequest creates or replaces an employee. ID is generated
// when empty.
type SaveEmployeeRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name" validate:"required"`
	Email       string            `json:"email" validate:"omitempty,email"`
	Designation string            `json:"designation"`
	BankName    string            `json:"bank_name"`
	HireDate    string            `json:"hire_date" validate:"required,date"`
	BaseSalary  string            `json:"base_salary" validate:"required,money"`
	Allowances  map[string]string `json:"allowances" validate:"dive,keys,required,allowance_name,endkeys,required,money"`
}

// SalaryRequest replaces base salary and the full allowance set.
type SalaryRequest struct {
	BaseSalary string            `json:"base_salary" validate:"required,money"`
	Allowances map[string]string `json:"allowances" validate:"dive,keys,required,allowance_name,endkeys,required,money"`
}

func toEmployeeDTO(rec generic.EmployeeRecord) EmployeeDTO {
	dto := EmployeeDTO{
		ID:          string(rec.ID),
		Name:        rec.Name,
		Email:       rec.Email,
		Designation: rec.Designation,
		BankName:    rec.BankName,
		BaseSalary:  money(rec.BaseSalary),
		Allowances:  make(map[string]string, len(rec.Allowances)),
	}
	if !rec.HireDate.IsZero() {
		dto.HireDate = rec.HireDate.String()
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	for name, amount := range rec.Allowances {
		dto.Allowances[name] = money(amount)
	}
	return dto
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// LineDTO is one earnings or deduction row.
type LineDTO struct {
	Name    string `json:"name"`
	Monthly string `json:"monthly"`
	YTD     string `json:"ytd"`
}

// PayslipDTO is the full set of payslip figures.
type PayslipDTO struct {
	EmployeeID     string `json:"employee_id,omitempty"`
	Name           string `json:"name,omitempty"`
	Designation    string `json:"designation,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
	HireDate       string `json:"hire_date,omitempty"`
	PolicyID       string `json:"policy_id"`
	Currency       string `json:"currency"`
	Period         string `json:"period"`
	EvaluationDate string `json:"evaluation_date"`
	MonthsAccrued  int    `json:"months_accrued"`

	GrossMonthlyEarnings  string `json:"gross_monthly_earnings"`
	MonthlyProvidentFund  string `json:"monthly_provident_fund"`
	MonthlyIncomeTax      string `json:"monthly_income_tax"`
	TotalMonthlyDeduction string `json:"total_monthly_deduction"`
	NetMonthlyPay         string `json:"net_monthly_pay"`
	AnnualGross           string `json:"annual_gross"`
	AnnualTax             string `json:"annual_tax"`

	Earnings           []LineDTO `json:"earnings"`
	Deductions         []LineDTO `json:"deductions"`
	TotalEarningsYTD   string    `json:"total_earnings_ytd"`
	TotalDeductionsYTD string    `json:"total_deductions_ytd"`
}

// NewPayslipDTO rounds payslip figures for display.
func NewPayslipDTO(f payroll.PayslipFigures, currency generic.Currency) PayslipDTO {
	dto := PayslipDTO{
		EmployeeID:     string(f.Profile.EmployeeID),
		Name:           f.Profile.Name,
		Designation:    f.Profile.Designation,
		BankName:       f.Profile.BankName,
		PolicyID:       string(f.PolicyID),
		Currency:       string(currency),
		Period:         f.Period.String(),
		EvaluationDate: f.EvaluationDate.String(),
		MonthsAccrued:  f.MonthsAccrued,

		GrossMonthlyEarnings:  money(f.GrossMonthlyEarnings),
		MonthlyProvidentFund:  money(f.Deductions.MonthlyProvidentFund),
		MonthlyIncomeTax:      money(f.Deductions.MonthlyIncomeTax),
		TotalMonthlyDeduction: money(f.Deductions.TotalMonthlyDeduction),
		NetMonthlyPay:         money(f.NetMonthlyPay),
		AnnualGross:           money(f.Deductions.AnnualGross),
		AnnualTax:             money(f.Deductions.AnnualTax),

		Earnings:           toLineDTOs(f.Earnings),
		Deductions:         toLineDTOs(f.DeductionLines),
		TotalEarningsYTD:   money(f.TotalEarningsYTD),
		TotalDeductionsYTD: money(f.TotalDeductionsYTD),
	}
	if !f.Profile.HireDate.IsZero() {
		dto.HireDate = f.Profile.HireDate.String()
	}
	return dto
}

func toLineDTOs(lines []payroll.Line) []LineDTO {
	out := make([]LineDTO, len(lines))
	for i, l := range lines {
		out[i] = LineDTO{Name: l.Name, Monthly: money(l.Monthly), YTD: money(l.YTD)}
	}
	return out
}

// CreatePayslipRequest computes and saves a payslip for one period.
type CreatePayslipRequest struct {
	Period      string `json:"period" validate:"required,period"`
	PaymentDate string `json:"payment_date" validate:"omitempty,date"`
}

// SavedPayslipDTO is a stored payslip.
type SavedPayslipDTO struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Period     string          `json:"period"`
	PolicyID   string          `json:"policy_id"`
	Gross      string          `json:"gross"`
	Net        string          `json:"net"`
	Figures    json.RawMessage `json:"figures"`
	CreatedAt  string          `json:"created_at"`
}

func toSavedPayslipDTO(p generic.PayslipRecord) SavedPayslipDTO {
	figures := json.RawMessage(p.FiguresJSON)
	if !json.Valid(figures) {
		figures = json.RawMessage("null")
	}
	return SavedPayslipDTO{
		ID:         p.ID,
		EmployeeID: string(p.EmployeeID),
		Period:     p.Period.String(),
		PolicyID:   string(p.PolicyID),
		Gross:      money(p.Gross),
		Net:        money(p.Net),
		Figures:    figures,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PAYROLL
// =============================================================================

// CalculateRequest is the lenient calculator input. Amounts may be JSON
// numbers or strings; anything negative or unparseable counts as zero. An
// unparseable hire date is treated as a prior-year hire.
type CalculateRequest struct {
	EmployeeID        string         `json:"employee_id"`
	Name              string         `json:"name"`
	BaseMonthlySalary any            `json:"base_monthly_salary"`
	Allowances        map[string]any `json:"allowances"`
	HireDate          string         `json:"hire_date"`
	Period            string         `json:"period"` // YYYY-MM
	PaymentDate       string         `json:"payment_date"`
}

// StrictCalculateRequest rejects bad input instead of coercing it.
type StrictCalculateRequest struct {
	EmployeeID        string            `json:"employee_id"`
	BaseMonthlySalary string            `json:"base_monthly_salary" validate:"required,money"`
	Allowances        map[string]string `json:"allowances" validate:"dive,keys,required,allowance_name,endkeys,required,money"`
	HireDate          string            `json:"hire_date" validate:"required,date"`
	Year              int               `json:"year" validate:"required,min=1,max=9999"`
	Month             int               `json:"month" validate:"required,min=1,max=12"`
	AsOf              string            `json:"as_of" validate:"omitempty,date"`
}

// RunRequest starts a payroll run.
type RunRequest struct {
	Period string `json:"period" validate:"required,period"`
}

// Run item statuses.
const (
	RunItemSaved   = "saved"
	RunItemSkipped = "skipped"
	RunItemFailed  = "failed"
)

// RunItemDTO is the outcome for one employee.
type RunItemDTO struct {
	EmployeeID string `json:"employee_id"`
	Net        string `json:"net_monthly_pay"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// RunResponse summarises a payroll run.
type RunResponse struct {
	Period   string       `json:"period"`
	PolicyID string       `json:"policy_id"`
	Total    int          `json:"total"`
	Saved    int          `json:"saved"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
	TotalNet string       `json:"total_net"`
	Items    []RunItemDTO `json:"items"`
}

// =============================================================================
// POLICIES
// =============================================================================

// PolicyDTO represents a tax policy in API responses.
type PolicyDTO struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	EffectiveFrom string             `json:"effective_from,omitempty"`
	Config        factory.PolicyJSON `json:"config"`
	Version       int                `json:"version,omitempty"`
	BuiltIn       bool               `json:"built_in,omitempty"`
}

// CreatePolicyRequest is the request to create a policy.
type CreatePolicyRequest struct {
	Config factory.PolicyJSON `json:"config"`
}

// =============================================================================
// ACTIVITY / SCENARIOS
// =============================================================================

// ActivityDTO is an audit log entry.
type ActivityDTO struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	EntityID  string         `json:"entity_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
