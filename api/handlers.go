/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll calculator via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the payroll package. The calculator
  itself stays pure; these handlers load employee records, pick the tax
  policy for the pay period, and persist what the admin asks to keep.

ENDPOINTS:
  Employees:
    GET    /api/employees                  List all employees
    POST   /api/employees                  Create or replace employee
    GET    /api/employees/{id}             Get employee details
    DELETE /api/employees/{id}             Delete employee
    PUT    /api/employees/{id}/salary      Replace base salary and allowances

  Payslips:
    GET    /api/employees/{id}/payslip     Compute figures (?period=&payment_date=)
    POST   /api/employees/{id}/payslips    Compute and save for a period
    GET    /api/employees/{id}/payslips    Saved payslips

  Payroll:
    POST   /api/payroll/calculate          Stateless, bad numbers become zero
    POST   /api/payroll/calculate/strict   Stateless, bad input is rejected
    POST   /api/payroll/runs               Payslips for every employee

  Policies:
    GET    /api/policies                   List tax policies
    POST   /api/policies                   Create policy from JSON
    GET    /api/policies/{id}              Get one policy

  Activity:
    GET    /api/activity                   Audit log (?action=&entity_id=&from=&to=)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - PolicyFactory: JSON to Policy conversion
  - Policies: Effective-dated policy selection, loaded from the store

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (payslip already saved for the period)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
	"go.uber.org/zap"
)

// Activity actions written to the audit log.
const (
	ActionEmployeeSaved   = "employee.saved"
	ActionEmployeeDeleted = "employee.deleted"
	ActionSalaryUpdated   = "employee.salary_updated"
	ActionPayslipSaved    = "payslip.saved"
	ActionPayrollRun      = "payroll.run"
	ActionPolicyCreated   = "policy.created"
	ActionScenarioLoaded  = "scenario.loaded"
	ActionDatabaseReset   = "database.reset"
)

const (
	defaultActivityLimit = 100
	maxRequestBodyBytes  = 1 << 20
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the handlers need. *sqlite.Store implements it.
type Store interface {
	generic.ProfileStore
	generic.PayslipStore

	SaveEmployee(ctx context.Context, rec generic.EmployeeRecord) error
	SetSalary(ctx context.Context, id generic.EmployeeID, base decimal.Decimal, allowances map[string]decimal.Decimal) error
	DeleteEmployee(ctx context.Context, id generic.EmployeeID) error

	SavePolicy(ctx context.Context, policy sqlite.PolicyRecord) error
	ListPolicies(ctx context.Context) ([]sqlite.PolicyRecord, error)

	LogActivity(ctx context.Context, a sqlite.Activity) error
	ListActivity(ctx context.Context, f sqlite.ActivityFilter) ([]sqlite.Activity, error)

	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

var _ Store = (*sqlite.Store)(nil)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store          Store
	PolicyFactory  *factory.PolicyFactory
	Policies       *payroll.PolicySet
	Logger         *zap.Logger
	RunConcurrency int

	validate *validator.Validate

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:          store,
		PolicyFactory:  factory.NewPolicyFactory(),
		Policies:       payroll.NewPolicySet(),
		Logger:         logger.Named("api"),
		RunConcurrency: payroll.DefaultRunConcurrency,
		validate:       newValidator(),
	}
}

// LoadPolicies registers every stored policy. Invalid documents are logged
// and skipped.
func (h *Handler) LoadPolicies(ctx context.Context) error {
	records, err := h.Store.ListPolicies(ctx)
	if err != nil {
		return err
	}

	for _, r := range records {
		policy, err := h.PolicyFactory.ParsePolicy(r.ConfigJSON)
		if err == nil {
			err = h.Policies.Add(policy)
		}
		if err != nil {
			h.Logger.Warn("skipping stored policy", zap.String("policy_id", r.ID), zap.Error(err))
		}
	}
	return nil
}

// RegisterPolicy validates, stores and then activates a policy. A policy
// that fails to save is never activated.
func (h *Handler) RegisterPolicy(ctx context.Context, policy payroll.Policy) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	config, err := json.Marshal(h.PolicyFactory.ToJSON(policy))
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	record := sqlite.PolicyRecord{
		ID:         string(policy.ID),
		Name:       policy.Name,
		ConfigJSON: string(config),
	}
	if !policy.EffectiveFrom.IsZero() {
		record.EffectiveFrom = policy.EffectiveFrom.String()
	}
	if err := h.Store.SavePolicy(ctx, record); err != nil {
		return err
	}
	return h.Policies.Add(policy)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(records))
	for i, rec := range records {
		dtos[i] = toEmployeeDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetProfile(r.Context(), employeeID(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(rec))
}

// SaveEmployee creates an employee, or replaces it when the ID exists.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	rec := generic.EmployeeRecord{
		ID:          generic.EmployeeID(req.ID),
		Name:        req.Name,
		Email:       req.Email,
		Designation: req.Designation,
		BankName:    req.BankName,
		BaseSalary:  mustParseMoney(req.BaseSalary),
		Allowances:  parseAllowances(req.Allowances),
	}
	if rec.ID == "" {
		rec.ID = generic.EmployeeID(uuid.NewString())
	}
	rec.HireDate, _ = generic.ParseDate(req.HireDate)

	ctx := r.Context()
	if err := h.Store.SaveEmployee(ctx, rec); err != nil {
		h.writeDomainError(w, "Failed to save employee", err)
		return
	}
	h.logActivity(ctx, ActionEmployeeSaved, string(rec.ID), map[string]any{"name": rec.Name})

	saved, err := h.Store.GetProfile(ctx, rec.ID)
	if err != nil {
		h.writeDomainError(w, "Failed to load saved employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(saved))
}

// DeleteEmployee removes an employee and their saved payslips.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := employeeID(r)
	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete employee", err)
		return
	}
	h.logActivity(r.Context(), ActionEmployeeDeleted, string(id), nil)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSalary replaces base salary and allowances.
func (h *Handler) UpdateSalary(w http.ResponseWriter, r *http.Request) {
	var req SalaryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	id := employeeID(r)
	base := mustParseMoney(req.BaseSalary)
	if err := h.Store.SetSalary(ctx, id, base, parseAllowances(req.Allowances)); err != nil {
		h.writeDomainError(w, "Failed to update salary", err)
		return
	}
	h.logActivity(ctx, ActionSalaryUpdated, string(id), map[string]any{"base_salary": money(base)})

	rec, err := h.Store.GetProfile(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(rec))
}

// =============================================================================
// PAYSLIP HANDLERS
// =============================================================================

// GetPayslip computes payslip figures without saving them.
// GET /api/employees/{id}/payslip?period=2025-06[&payment_date=2025-06-25]
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, asOf, err := parsePeriodAndDate(q.Get("period"), q.Get("payment_date"))
	if err != nil {
		h.writeDomainError(w, "Invalid query parameters", err)
		return
	}

	rec, err := h.Store.GetProfile(r.Context(), employeeID(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}

	policy := h.Policies.For(period)
	figures := h.buildFigures(policy, rec, period, asOf)
	writeJSON(w, http.StatusOK, NewPayslipDTO(figures, policy.Currency))
}

// CreatePayslip computes and saves the payslip for one period.
func (h *Handler) CreatePayslip(w http.ResponseWriter, r *http.Request) {
	var req CreatePayslipRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	period, asOf, err := parsePeriodAndDate(req.Period, req.PaymentDate)
	if err != nil {
		h.writeDomainError(w, "Invalid request", err)
		return
	}

	ctx := r.Context()
	rec, err := h.Store.GetProfile(ctx, employeeID(r))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}

	policy := h.Policies.For(period)
	saved, err := h.savePayslip(ctx, h.buildFigures(policy, rec, period, asOf), policy.Currency)
	if err != nil {
		h.writeDomainError(w, "Failed to save payslip", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSavedPayslipDTO(saved))
}

// ListPayslips returns an employee's saved payslips.
func (h *Handler) ListPayslips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := employeeID(r)
	if _, err := h.Store.GetProfile(ctx, id); err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}

	records, err := h.Store.ListPayslips(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Failed to list payslips", err)
		return
	}
	dtos := make([]SavedPayslipDTO, len(records))
	for i, p := range records {
		dtos[i] = toSavedPayslipDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) buildFigures(policy payroll.Policy, rec generic.EmployeeRecord, period generic.PayPeriod, asOf *generic.TimePoint) payroll.PayslipFigures {
	profile, allowances := payroll.ProfileFromRecord(rec)
	return payroll.NewCalculator(policy).BuildPayslipFigures(payroll.PayslipInput{
		Profile:    profile,
		Allowances: allowances,
		Period:     period,
		AsOf:       asOf,
	})
}

func (h *Handler) savePayslip(ctx context.Context, f payroll.PayslipFigures, currency generic.Currency) (generic.PayslipRecord, error) {
	figures, err := json.Marshal(NewPayslipDTO(f, currency))
	if err != nil {
		return generic.PayslipRecord{}, fmt.Errorf("encode payslip: %w", err)
	}

	rec := generic.PayslipRecord{
		ID:          uuid.NewString(),
		EmployeeID:  f.Profile.EmployeeID,
		Period:      f.Period,
		PolicyID:    f.PolicyID,
		Gross:       f.GrossMonthlyEarnings,
		Net:         f.NetMonthlyPay,
		FiguresJSON: string(figures),
		CreatedAt:   time.Now(),
	}
	if err := h.Store.SavePayslip(ctx, rec); err != nil {
		return generic.PayslipRecord{}, err
	}
	h.logActivity(ctx, ActionPayslipSaved, string(rec.EmployeeID), map[string]any{
		"period": f.Period.String(),
		"net":    money(f.NetMonthlyPay),
	})
	return rec, nil
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// Calculate runs the lenient calculator on an inline profile.
// POST /api/payroll/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, asOf, err := parsePeriodAndDate(req.Period, req.PaymentDate)
	if err != nil {
		h.writeDomainError(w, "Invalid request", err)
		return
	}

	// Lenient: an unreadable hire date counts as a prior-year hire.
	hireDate, _ := generic.ParseDate(req.HireDate)

	allowances := make(payroll.AllowanceSet, len(req.Allowances))
	for name, v := range req.Allowances {
		allowances[name] = generic.ParseOrZero(v)
	}

	policy := h.Policies.For(period)
	figures := payroll.NewCalculator(policy).BuildPayslipFigures(payroll.PayslipInput{
		Profile: payroll.EmployeePayProfile{
			EmployeeID:        generic.EmployeeID(req.EmployeeID),
			Name:              req.Name,
			HireDate:          hireDate,
			BaseMonthlySalary: generic.ParseOrZero(req.BaseMonthlySalary),
		},
		Allowances: allowances,
		Period:     period,
		AsOf:       asOf,
	})
	writeJSON(w, http.StatusOK, NewPayslipDTO(figures, policy.Currency))
}

// CalculateStrict validates every field before calculating.
// POST /api/payroll/calculate/strict
func (h *Handler) CalculateStrict(w http.ResponseWriter, r *http.Request) {
	var req StrictCalculateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	period := generic.NewPayPeriod(req.Year, time.Month(req.Month))
	policy := h.Policies.For(period)
	figures, err := payroll.NewCalculator(policy).BuildPayslipStrict(payroll.StrictInput{
		EmployeeID:        req.EmployeeID,
		BaseMonthlySalary: req.BaseMonthlySalary,
		Allowances:        req.Allowances,
		HireDate:          req.HireDate,
		Year:              req.Year,
		Month:             req.Month,
		AsOf:              req.AsOf,
	})
	if err != nil {
		h.writeDomainError(w, "Invalid payroll input", err)
		return
	}
	writeJSON(w, http.StatusOK, NewPayslipDTO(figures, policy.Currency))
}

// RunPayroll computes and saves payslips for every employee. Employees that
// already have a payslip for the period are skipped; a failed save is
// reported on its item and the run carries on with the rest.
// POST /api/payroll/runs
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	period, err := generic.ParsePayPeriod(req.Period)
	if err != nil {
		h.writeDomainError(w, "Invalid period", err)
		return
	}

	ctx := r.Context()
	runner := &payroll.Runner{
		Profiles:    h.Store,
		Policies:    h.Policies,
		Concurrency: h.RunConcurrency,
		Logger:      h.Logger,
	}
	results, err := runner.Run(ctx, period)
	if err != nil {
		h.writeDomainError(w, "Payroll run failed", err)
		return
	}

	// Every result of a run shares one policy.
	policy := h.Policies.For(period)
	if len(results) > 0 {
		policy, err = h.Policies.Get(results[0].Figures.PolicyID)
		if err != nil {
			h.writeDomainError(w, "Payroll run policy changed", err)
			return
		}
	}

	resp := RunResponse{
		Period:   period.String(),
		PolicyID: string(policy.ID),
		Total:    len(results),
		Items:    make([]RunItemDTO, 0, len(results)),
	}
	totalNet := decimal.Zero

	for _, res := range results {
		item := RunItemDTO{EmployeeID: string(res.EmployeeID), Net: money(res.Figures.NetMonthlyPay), Status: RunItemSaved}

		_, err := h.savePayslip(ctx, res.Figures, policy.Currency)
		switch {
		case err == nil:
			resp.Saved++
			totalNet = totalNet.Add(res.Figures.NetMonthlyPay)
		case generic.IsConflict(err):
			item.Status = RunItemSkipped
			resp.Skipped++
		default:
			h.Logger.Warn("payroll run save failed",
				zap.String("employee_id", string(res.EmployeeID)),
				zap.String("period", resp.Period),
				zap.Error(err),
			)
			item.Status = RunItemFailed
			item.Error = err.Error()
			resp.Failed++
		}
		resp.Items = append(resp.Items, item)
	}
	resp.TotalNet = money(totalNet)

	h.logActivity(ctx, ActionPayrollRun, "", map[string]any{
		"period":  resp.Period,
		"saved":   resp.Saved,
		"skipped": resp.Skipped,
		"failed":  resp.Failed,
	})
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns the built-in policy followed by stored policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	versions, err := h.policyVersions(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list policies", err)
		return
	}

	policies := h.Policies.List()
	dtos := make([]PolicyDTO, 0, len(policies))
	for _, p := range policies {
		dtos = append(dtos, h.toPolicyDTO(p, versions[string(p.ID)]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPolicy returns one active policy.
// GET /api/policies/{id}
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.Policies.Get(generic.PolicyID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, "Failed to get policy", err)
		return
	}
	versions, err := h.policyVersions(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to get policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPolicyDTO(policy, versions[string(policy.ID)]))
}

// CreatePolicy creates a new policy from JSON.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, err := h.PolicyFactory.FromJSON(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}

	ctx := r.Context()
	if err := h.RegisterPolicy(ctx, policy); err != nil {
		h.writeDomainError(w, "Failed to save policy", err)
		return
	}
	h.logActivity(ctx, ActionPolicyCreated, string(policy.ID), map[string]any{"name": policy.Name})

	writeJSON(w, http.StatusCreated, h.toPolicyDTO(policy, 0))
}

func (h *Handler) policyVersions(ctx context.Context) (map[string]int, error) {
	records, err := h.Store.ListPolicies(ctx)
	if err != nil {
		return nil, err
	}
	versions := make(map[string]int, len(records))
	for _, rec := range records {
		versions[rec.ID] = rec.Version
	}
	return versions, nil
}

func (h *Handler) toPolicyDTO(p payroll.Policy, version int) PolicyDTO {
	dto := PolicyDTO{
		ID:      string(p.ID),
		Name:    p.Name,
		Config:  h.PolicyFactory.ToJSON(p),
		Version: version,
		BuiltIn: p.ID == payroll.DefaultPolicyID,
	}
	if !p.EffectiveFrom.IsZero() {
		dto.EffectiveFrom = p.EffectiveFrom.String()
	}
	return dto
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// ListActivity returns audit log entries, newest first.
// GET /api/activity?action=&entity_id=&from=2025-06-01&to=2025-06-30&limit=50
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := sqlite.ActivityFilter{
		Action:   q.Get("action"),
		EntityID: q.Get("entity_id"),
		Limit:    defaultActivityLimit,
	}

	verr := &generic.ValidationError{}
	if v := q.Get("from"); v != "" {
		from, err := generic.ParseDate(v)
		if err != nil {
			verr.Add("from", "must be a date (YYYY-MM-DD)")
		}
		filter.From = from.Time
	}
	if v := q.Get("to"); v != "" {
		to, err := generic.ParseDate(v)
		if err != nil {
			verr.Add("to", "must be a date (YYYY-MM-DD)")
		}
		// Inclusive of the whole day.
		filter.To = to.Time.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			verr.Add("limit", "must be a positive integer")
		}
		filter.Limit = n
	}
	if err := verr.Err(); err != nil {
		h.writeDomainError(w, "Invalid query parameters", err)
		return
	}

	entries, err := h.Store.ListActivity(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, "Failed to list activity", err)
		return
	}
	dtos := make([]ActivityDTO, len(entries))
	for i, a := range entries {
		dtos[i] = ActivityDTO{
			ID:        a.ID,
			Action:    a.Action,
			EntityID:  a.EntityID,
			Details:   a.Details,
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) logActivity(ctx context.Context, action, entityID string, details map[string]any) {
	err := h.Store.LogActivity(ctx, sqlite.Activity{Action: action, EntityID: entityID, Details: details})
	if err != nil {
		h.Logger.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeID(r *http.Request) generic.EmployeeID {
	return generic.EmployeeID(chi.URLParam(r, "id"))
}

// parsePeriodAndDate reads a required YYYY-MM period and an optional
// YYYY-MM-DD evaluation date.
func parsePeriodAndDate(periodStr, dateStr string) (generic.PayPeriod, *generic.TimePoint, error) {
	verr := &generic.ValidationError{}

	period, err := generic.ParsePayPeriod(periodStr)
	if err != nil {
		verr.Add("period", "must be a pay period (YYYY-MM)")
	}

	var asOf *generic.TimePoint
	if dateStr != "" {
		d, err := generic.ParseDate(dateStr)
		if err != nil {
			verr.Add("payment_date", "must be a date (YYYY-MM-DD)")
		} else {
			asOf = &d
		}
	}
	return period, asOf, verr.Err()
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeDomainError(w, "Validation failed", validationError(err))
		return false
	}
	return true
}

// mustParseMoney is for values that already passed the "money" validation.
func mustParseMoney(s string) decimal.Decimal {
	d, _ := generic.ParseStrict(s)
	return d
}

func parseAllowances(in map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for name, v := range in {
		out[name] = mustParseMoney(v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error category. Validation
// errors return their field list as details.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var verr *generic.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: verr.Fields})
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
