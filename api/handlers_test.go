package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
	"go.uber.org/zap/zaptest"
)

func setupTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, zaptest.NewLogger(t))
	return h, NewRouter(h, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// errorFields returns the field names of a validation error response.
func errorFields(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var resp struct {
		Details []generic.FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())

	fields := make([]string, len(resp.Details))
	for i, f := range resp.Details {
		fields[i] = f.Field
	}
	return fields
}

var referenceEmployeeRequest = SaveEmployeeRequest{
	ID:          "emp-001",
	Name:        "Ayesha Khan",
	Email:       "ayesha@example.com",
	Designation: "Software Engineer",
	BankName:    "Meezan Bank",
	HireDate:    "2023-01-15",
	BaseSalary:  "100,000",
	Allowances: map[string]string{
		"House Allowance":   "20000",
		"Travel Allowance":  "10000",
		"Medical Allowance": "5000",
	},
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_Lifecycle(t *testing.T) {
	_, router := setupTestHandler(t)

	// GIVEN: A new employee
	rec := do(t, router, http.MethodPost, "/api/employees", referenceEmployeeRequest)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[EmployeeDTO](t, rec)
	assert.Equal(t, "100000.00", created.BaseSalary)
	assert.Equal(t, "20000.00", created.Allowances["House Allowance"])

	// WHEN: listing and fetching
	list := decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees", nil))
	require.Len(t, list, 1)

	got := do(t, router, http.MethodGet, "/api/employees/emp-001", nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "2023-01-15", decode[EmployeeDTO](t, got).HireDate)

	// AND: replacing the salary
	rec = do(t, router, http.MethodPut, "/api/employees/emp-001/salary", SalaryRequest{
		BaseSalary: "120000",
		Allowances: map[string]string{"House Allowance": "25000"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[EmployeeDTO](t, rec)
	assert.Equal(t, "120000.00", updated.BaseSalary)
	assert.Len(t, updated.Allowances, 1)

	// THEN: delete removes it
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/employees/emp-001", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/employees/emp-001", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/employees/emp-001", nil).Code)
}

func TestSaveEmployee_GeneratesID(t *testing.T) {
	_, router := setupTestHandler(t)
	req := referenceEmployeeRequest
	req.ID = ""

	rec := do(t, router, http.MethodPost, "/api/employees", req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decode[EmployeeDTO](t, rec).ID, 36)
}

func TestSaveEmployee_Validation(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/employees", SaveEmployeeRequest{
		Email:      "not-an-email",
		HireDate:   "15/01/2023",
		BaseSalary: "-5",
		Allowances: map[string]string{"House Allowance": "lots"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []string{
		"name", "email", "hire_date", "base_salary", "allowances[House Allowance]",
	}, errorFields(t, rec))
}

func TestUpdateSalary_UnknownEmployee(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPut, "/api/employees/ghost/salary", SalaryRequest{BaseSalary: "1"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/employees", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode[ErrorResponse](t, rec).Error)
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func TestGetPayslip_ReferenceFigures(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", referenceEmployeeRequest).Code)

	// WHEN: computing June 2025
	rec := do(t, router, http.MethodGet, "/api/employees/emp-001/payslip?period=2025-06", nil)

	// THEN: figures match the worked example
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slip := decode[PayslipDTO](t, rec)

	assert.Equal(t, "135000.00", slip.GrossMonthlyEarnings)
	assert.Equal(t, "7750.00", slip.MonthlyIncomeTax)
	assert.Equal(t, "8000.00", slip.MonthlyProvidentFund)
	assert.Equal(t, "15750.00", slip.TotalMonthlyDeduction)
	assert.Equal(t, "119250.00", slip.NetMonthlyPay)
	assert.Equal(t, "810000.00", slip.TotalEarningsYTD)
	assert.Equal(t, "2025-06-30", slip.EvaluationDate)
	assert.Equal(t, "PKR", slip.Currency)
	assert.Equal(t, "Meezan Bank", slip.BankName)

	require.Len(t, slip.Earnings, 4)
	assert.Equal(t, LineDTO{Name: payroll.LineBasicSalary, Monthly: "100000.00", YTD: "600000.00"}, slip.Earnings[0])
	assert.Equal(t, "House Allowance", slip.Earnings[1].Name)
	assert.Equal(t, "120000.00", slip.Earnings[1].YTD)
	require.Len(t, slip.Deductions, 2)
	assert.Equal(t, payroll.LineProvidentFund, slip.Deductions[0].Name)
}

func TestGetPayslip_PaymentDate(t *testing.T) {
	_, router := setupTestHandler(t)
	req := referenceEmployeeRequest
	req.HireDate = "2025-06-20"
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", req).Code)

	// Paid on the 10th, before the 20 June start date
	rec := do(t, router, http.MethodGet, "/api/employees/emp-001/payslip?period=2025-06&payment_date=2025-06-10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	slip := decode[PayslipDTO](t, rec)
	assert.Equal(t, 0, slip.MonthsAccrued)
	assert.Equal(t, "0.00", slip.TotalEarningsYTD)
	assert.Equal(t, "119250.00", slip.NetMonthlyPay)
}

func TestGetPayslip_Errors(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", referenceEmployeeRequest).Code)

	bad := do(t, router, http.MethodGet, "/api/employees/emp-001/payslip?period=2025-13&payment_date=soon", nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
	assert.ElementsMatch(t, []string{"period", "payment_date"}, errorFields(t, bad))

	missing := do(t, router, http.MethodGet, "/api/employees/ghost/payslip?period=2025-06", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCreatePayslip_SavesOncePerPeriod(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", referenceEmployeeRequest).Code)

	// GIVEN: A saved June payslip
	rec := do(t, router, http.MethodPost, "/api/employees/emp-001/payslips", CreatePayslipRequest{Period: "2025-06"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[SavedPayslipDTO](t, rec)
	assert.Equal(t, "119250.00", saved.Net)

	// WHEN: saving June again
	dup := do(t, router, http.MethodPost, "/api/employees/emp-001/payslips", CreatePayslipRequest{Period: "2025-06"})

	// THEN: conflict, and only one stored slip with its figures
	assert.Equal(t, http.StatusConflict, dup.Code)

	list := decode[[]SavedPayslipDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-001/payslips", nil))
	require.Len(t, list, 1)
	var figures PayslipDTO
	require.NoError(t, json.Unmarshal(list[0].Figures, &figures))
	assert.Equal(t, "810000.00", figures.TotalEarningsYTD)
	assert.Equal(t, "2025-06", list[0].Period)
}

func TestCreatePayslip_Validation(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", referenceEmployeeRequest).Code)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-001/payslips", CreatePayslipRequest{Period: "June", PaymentDate: "tomorrow"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []string{"period", "payment_date"}, errorFields(t, rec))

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/employees/ghost/payslips", nil).Code)
}

// =============================================================================
// PAYROLL
// =============================================================================

func TestCalculate_Lenient(t *testing.T) {
	_, router := setupTestHandler(t)

	// GIVEN: Numbers as JSON numbers and strings
	rec := do(t, router, http.MethodPost, "/api/payroll/calculate", `{
		"base_monthly_salary": 100000,
		"allowances": {"House Allowance": "20,000", "Travel Allowance": 10000, "Medical Allowance": "5000"},
		"hire_date": "2023-01-15",
		"period": "2025-06"
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slip := decode[PayslipDTO](t, rec)
	assert.Equal(t, "119250.00", slip.NetMonthlyPay)
	assert.Equal(t, "810000.00", slip.TotalEarningsYTD)
}

func TestCalculate_BadNumbersBecomeZero(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/payroll/calculate", `{
		"base_monthly_salary": "abc",
		"allowances": {"House Allowance": -500, "Bonus": null},
		"hire_date": "someday",
		"period": "2025-06"
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slip := decode[PayslipDTO](t, rec)
	assert.Equal(t, "0.00", slip.GrossMonthlyEarnings)
	assert.Equal(t, "0.00", slip.NetMonthlyPay)
	// Unreadable hire date: prior-year hire, six months accrued
	assert.Equal(t, 6, slip.MonthsAccrued)
}

func TestCalculate_RequiresPeriod(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/payroll/calculate", `{"base_monthly_salary": 1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"period"}, errorFields(t, rec))
}

func TestCalculateStrict(t *testing.T) {
	_, router := setupTestHandler(t)

	ok := do(t, router, http.MethodPost, "/api/payroll/calculate/strict", StrictCalculateRequest{
		EmployeeID:        "emp-001",
		BaseMonthlySalary: "100000",
		Allowances:        map[string]string{"House Allowance": "20000", "Travel Allowance": "10000", "Medical Allowance": "5000"},
		HireDate:          "2025-03-01",
		Year:              2025,
		Month:             6,
	})
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	slip := decode[PayslipDTO](t, ok)
	assert.Equal(t, 4, slip.MonthsAccrued)
	assert.Equal(t, "540000.00", slip.TotalEarningsYTD)

	bad := do(t, router, http.MethodPost, "/api/payroll/calculate/strict", StrictCalculateRequest{
		BaseMonthlySalary: "-1",
		Allowances:        map[string]string{"House Allowance": "x"},
		HireDate:          "March",
		Year:              2025,
		Month:             13,
	})
	require.Equal(t, http.StatusBadRequest, bad.Code)
	assert.ElementsMatch(t, []string{
		"base_monthly_salary", "allowances[House Allowance]", "hire_date", "month",
	}, errorFields(t, bad))
}

func TestRunPayroll(t *testing.T) {
	h, router := setupTestHandler(t)
	h.RunConcurrency = 2
	require.NoError(t, h.loadTaxBracketsScenario(context.Background()))

	// WHEN: running June 2025
	rec := do(t, router, http.MethodPost, "/api/payroll/runs", RunRequest{Period: "2025-06"})

	// THEN: every employee gets a saved payslip
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decode[RunResponse](t, rec)
	assert.Equal(t, 5, run.Total)
	assert.Equal(t, 5, run.Saved)
	assert.Equal(t, "default", run.PolicyID)

	// 100,000 a month is 1,200,000 a year: exactly the 30,000 breakpoint
	slip := decode[PayslipDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-bracket-2/payslip?period=2025-06", nil))
	assert.Equal(t, "2500.00", slip.MonthlyIncomeTax)
	assert.Equal(t, "0.00", decode[PayslipDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-bracket-1/payslip?period=2025-06", nil)).MonthlyIncomeTax)

	// AND: a second run skips what is already saved
	again := decode[RunResponse](t, do(t, router, http.MethodPost, "/api/payroll/runs", RunRequest{Period: "2025-06"}))
	assert.Equal(t, 0, again.Saved)
	assert.Equal(t, 5, again.Skipped)
	assert.Equal(t, "0.00", again.TotalNet)
	for _, item := range again.Items {
		assert.Equal(t, "skipped", item.Status)
	}
}

func TestRunPayroll_InvalidPeriod(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/payroll/runs", RunRequest{Period: "2025-00"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// POLICIES
// =============================================================================

func TestPolicies_CreateAndApply(t *testing.T) {
	h, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", referenceEmployeeRequest).Code)

	// GIVEN: A fiscal-year policy effective July 2025
	body := `{"config": {
		"id": "fy-2025", "name": "FY 2025-26",
		"period_type": "fiscal_year", "fiscal_year_start": 7,
		"effective_from": "2025-07-01",
		"brackets": [
			{"from": 0, "up_to": 600000, "rate": 0},
			{"from": 600000, "up_to": 1200000, "rate": 0.05},
			{"from": 1200000, "up_to": 2200000, "rate": 0.15},
			{"from": 2200000, "up_to": 3200000, "rate": 0.20},
			{"from": 3200000, "rate": 0.25}
		]
	}}`
	rec := do(t, router, http.MethodPost, "/api/policies", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	list := decode[[]PolicyDTO](t, do(t, router, http.MethodGet, "/api/policies", nil))
	require.Len(t, list, 2)
	assert.True(t, list[0].BuiltIn)
	assert.Equal(t, "fy-2025", list[1].ID)
	assert.Equal(t, 1, list[1].Version)

	// WHEN: computing August 2025
	slip := decode[PayslipDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-001/payslip?period=2025-08", nil))

	// THEN: YTD runs from July
	assert.Equal(t, "fy-2025", slip.PolicyID)
	assert.Equal(t, 2, slip.MonthsAccrued)
	assert.Equal(t, "270000.00", slip.TotalEarningsYTD)
	assert.Equal(t, "119250.00", slip.NetMonthlyPay)

	// AND: a fresh handler on the same store picks the policy up again
	fresh := NewHandler(h.Store, zaptest.NewLogger(t))
	require.NoError(t, fresh.LoadPolicies(context.Background()))
	assert.Equal(t, generic.PolicyID("fy-2025"), fresh.Policies.For(generic.NewPayPeriod(2025, time.August)).ID)
}

func TestPolicies_RejectInvalid(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/policies", `{"config": {"id": "gap", "brackets": [
		{"from": 0, "up_to": 100, "rate": 0},
		{"from": 200, "rate": 0.1}
	]}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "bracket")

	assert.Len(t, decode[[]PolicyDTO](t, do(t, router, http.MethodGet, "/api/policies", nil)), 1)
}

// =============================================================================
// ACTIVITY / HEALTH
// =============================================================================

func TestActivity(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", referenceEmployeeRequest).Code)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees/emp-001/payslips", CreatePayslipRequest{Period: "2025-06"}).Code)

	all := decode[[]ActivityDTO](t, do(t, router, http.MethodGet, "/api/activity", nil))
	require.Len(t, all, 2)
	assert.Equal(t, ActionPayslipSaved, all[0].Action)
	assert.Equal(t, "2025-06", all[0].Details["period"])

	saved := decode[[]ActivityDTO](t, do(t, router, http.MethodGet, "/api/activity?action="+ActionEmployeeSaved+"&entity_id=emp-001", nil))
	require.Len(t, saved, 1)

	today := time.Now().UTC().Format(generic.DateLayout)
	windowed := decode[[]ActivityDTO](t, do(t, router, http.MethodGet, "/api/activity?from="+today+"&to="+today, nil))
	assert.Len(t, windowed, 2)

	bad := do(t, router, http.MethodGet, "/api/activity?from=yesterday&limit=0", nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
	assert.ElementsMatch(t, []string{"from", "limit"}, errorFields(t, bad))
}

func TestHealth(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ok"))
}

// =============================================================================
// STORE FAILURES
// =============================================================================

// vanishingStore deletes one employee right after the run has listed them,
// so their payslip save hits the foreign key.
type vanishingStore struct {
	Store
	victim generic.EmployeeID
}

func (s *vanishingStore) ListProfiles(ctx context.Context) ([]generic.EmployeeRecord, error) {
	recs, err := s.Store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	return recs, s.Store.DeleteEmployee(ctx, s.victim)
}

type brokenPolicyStore struct {
	Store
}

func (s *brokenPolicyStore) SavePolicy(context.Context, sqlite.PolicyRecord) error {
	return errors.New("disk full")
}

func TestRunPayroll_SaveFailureKeepsGoing(t *testing.T) {
	h, router := setupTestHandler(t)
	require.NoError(t, h.loadTaxBracketsScenario(context.Background()))
	h.Store = &vanishingStore{Store: h.Store, victim: "emp-bracket-3"}

	// WHEN: one employee disappears before their payslip is saved
	rec := do(t, router, http.MethodPost, "/api/payroll/runs", RunRequest{Period: "2025-06"})

	// THEN: the run reports per-item outcomes instead of failing outright
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decode[RunResponse](t, rec)
	assert.Equal(t, 5, run.Total)
	assert.Equal(t, 4, run.Saved)
	assert.Equal(t, 1, run.Failed)

	for _, item := range run.Items {
		if item.EmployeeID == "emp-bracket-3" {
			assert.Equal(t, RunItemFailed, item.Status)
			assert.NotEmpty(t, item.Error)
		} else {
			assert.Equal(t, RunItemSaved, item.Status)
		}
	}

	// AND: the saved slips and the run itself are recorded
	slips := decode[[]SavedPayslipDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-bracket-1/payslips", nil))
	assert.Len(t, slips, 1)

	runs := decode[[]ActivityDTO](t, do(t, router, http.MethodGet, "/api/activity?action="+ActionPayrollRun, nil))
	require.Len(t, runs, 1)
	assert.EqualValues(t, 1, runs[0].Details["failed"])
}

func TestCreatePolicy_NotActivatedWhenSaveFails(t *testing.T) {
	h, router := setupTestHandler(t)
	h.Store = &brokenPolicyStore{Store: h.Store}

	rec := do(t, router, http.MethodPost, "/api/policies", `{"config": {
		"id": "flat", "effective_from": "2025-01-01",
		"brackets": [{"from": 0, "rate": 0.10}]
	}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, h.Policies.List(), 1)
	assert.Equal(t, payroll.DefaultPolicyID, h.Policies.For(generic.NewPayPeriod(2025, time.June)).ID)
}

// =============================================================================
// INPUT BOUNDS
// =============================================================================

func TestCalculate_OutOfRangeAmountsBecomeZero(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/payroll/calculate", `{
		"base_monthly_salary": "1e100000000",
		"allowances": {"House Allowance": 1e100000000, "Bonus": "1e-100000000", "Travel Allowance": 10000},
		"hire_date": "2023-01-15",
		"period": "2025-06"
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slip := decode[PayslipDTO](t, rec)
	assert.Equal(t, "10000.00", slip.GrossMonthlyEarnings)
	assert.Equal(t, "10000.00", slip.NetMonthlyPay)
}

func TestStrictInputs_RejectOutOfRangeAndReservedNames(t *testing.T) {
	_, router := setupTestHandler(t)

	strict := do(t, router, http.MethodPost, "/api/payroll/calculate/strict", StrictCalculateRequest{
		BaseMonthlySalary: "1e100000000",
		Allowances:        map[string]string{"Income Tax": "100"},
		HireDate:          "2023-01-15",
		Year:              2025,
		Month:             6,
	})
	require.Equal(t, http.StatusBadRequest, strict.Code)
	assert.ElementsMatch(t, []string{"base_monthly_salary", "allowances[Income Tax]"}, errorFields(t, strict))

	req := referenceEmployeeRequest
	req.BaseSalary = "1000000000000000"
	req.Allowances = map[string]string{"Basic Salary": "1"}
	employee := do(t, router, http.MethodPost, "/api/employees", req)
	require.Equal(t, http.StatusBadRequest, employee.Code)
	assert.ElementsMatch(t, []string{"base_salary", "allowances[Basic Salary]"}, errorFields(t, employee))
}

func TestGetPolicy(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/policies", `{"config": {
		"id": "flat", "name": "Flat", "effective_from": "2025-01-01",
		"brackets": [{"from": 0, "rate": 0.10}]
	}}`).Code)

	rec := do(t, router, http.MethodGet, "/api/policies/flat", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	policy := decode[PolicyDTO](t, rec)
	assert.Equal(t, "Flat", policy.Name)
	assert.Equal(t, 1, policy.Version)
	assert.Equal(t, "2025-01-01", policy.EffectiveFrom)

	builtIn := decode[PolicyDTO](t, do(t, router, http.MethodGet, "/api/policies/default", nil))
	assert.True(t, builtIn.BuiltIn)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/policies/missing", nil).Code)
}
