/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees and,
	where relevant, tax policies that demonstrate specific features.

AVAILABLE SCENARIOS:

	reference-employee: Base 100,000 + 35,000 allowances, hired 2023
	mid-year-hire:      Same salary, hired March 2025 (YTD starts at hire month)
	tax-brackets:       One employee per income tax bracket
	fiscal-year:        July-June accrual policy effective 2025-07-01
	future-hire:        Joins after the current pay month (YTD is zero)

HOW SCENARIOS WORK:
 1. Reset database (clear all data) and registered policies
 2. Register policies via factory
 3. Create employees with allowances

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "tax-brackets"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add it to the loaders map

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler dependencies
  - payroll/policies.go: Policy presets used here
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "reference-employee",
		Name:        "Reference Employee",
		Description: "Base 100,000 with house, travel and medical allowances, hired January 2023",
	},
	{
		ID:          "mid-year-hire",
		Name:        "Mid-Year Hire",
		Description: "Hired March 2025: year-to-date totals start from the hire month",
	},
	{
		ID:          "tax-brackets",
		Name:        "Tax Brackets",
		Description: "One employee in each income tax bracket, including the exact breakpoints",
	},
	{
		ID:          "fiscal-year",
		Name:        "Fiscal Year Policy",
		Description: "July-June accrual year effective 2025-07-01",
	},
	{
		ID:          "future-hire",
		Name:        "Future Hire",
		Description: "Employee whose start date is after the pay month",
	},
}

func (h *Handler) scenarioLoaders() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"reference-employee": h.loadReferenceEmployeeScenario,
		"mid-year-hire":      h.loadMidYearHireScenario,
		"tax-brackets":       h.loadTaxBracketsScenario,
		"fiscal-year":        h.loadFiscalYearScenario,
		"future-hire":        h.loadFutureHireScenario,
	}
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := h.scenarioLoaders()[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := load(ctx); err != nil {
		h.Logger.Error("scenario load failed", zap.String("scenario", req.ScenarioID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	h.logActivity(ctx, ActionScenarioLoaded, "", map[string]any{"scenario": req.ScenarioID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.logActivity(r.Context(), ActionDatabaseReset, "", nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.Policies.Reset()

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadReferenceEmployeeScenario(ctx context.Context) error {
	return h.Store.SaveEmployee(ctx, referenceEmployee("emp-reference", generic.NewTimePoint(2023, time.January, 15)))
}

func (h *Handler) loadMidYearHireScenario(ctx context.Context) error {
	rec := referenceEmployee("emp-midyear", generic.NewTimePoint(2025, time.March, 1))
	rec.Name = "Bilal Ahmed"
	rec.Email = "bilal.ahmed@example.com"
	return h.Store.SaveEmployee(ctx, rec)
}

// loadTaxBracketsScenario creates employees whose annual gross lands in
// each bracket. The 50,000 and 100,000 salaries sit exactly on the
// 600,000 and 1,200,000 breakpoints.
func (h *Handler) loadTaxBracketsScenario(ctx context.Context) error {
	monthly := []struct {
		id, name string
		base     int64
	}{
		{"emp-bracket-1", "Zero Bracket", 50000},
		{"emp-bracket-2", "Five Percent", 100000},
		{"emp-bracket-3", "Fifteen Percent", 150000},
		{"emp-bracket-4", "Twenty Percent", 250000},
		{"emp-bracket-5", "Twenty-Five Percent", 400000},
	}

	for _, m := range monthly {
		rec := generic.EmployeeRecord{
			ID:          generic.EmployeeID(m.id),
			Name:        m.name,
			Designation: "Analyst",
			BankName:    "Demo Bank",
			HireDate:    generic.NewTimePoint(2022, time.July, 1),
			BaseSalary:  decimal.NewFromInt(m.base),
		}
		if err := h.Store.SaveEmployee(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadFiscalYearScenario(ctx context.Context) error {
	policy := payroll.FiscalYearPolicy("fy-2025", time.July, generic.NewTimePoint(2025, time.July, 1))
	policy.Name = "FY 2025-26 (July start)"
	if err := h.RegisterPolicy(ctx, policy); err != nil {
		return err
	}
	return h.loadReferenceEmployeeScenario(ctx)
}

func (h *Handler) loadFutureHireScenario(ctx context.Context) error {
	nextMonth := generic.PayPeriodOf(generic.TimePointOf(time.Now())).Next()
	rec := referenceEmployee("emp-future", nextMonth.Start().AddDays(14))
	rec.Name = "Sana Malik"
	rec.Email = "sana.malik@example.com"
	return h.Store.SaveEmployee(ctx, rec)
}

func referenceEmployee(id string, hireDate generic.TimePoint) generic.EmployeeRecord {
	return generic.EmployeeRecord{
		ID:          generic.EmployeeID(id),
		Name:        "Ayesha Khan",
		Email:       "ayesha.khan@example.com",
		Designation: "Software Engineer",
		BankName:    "Meezan Bank",
		HireDate:    hireDate,
		BaseSalary:  decimal.NewFromInt(100000),
		Allowances: map[string]decimal.Decimal{
			"House Allowance":   decimal.NewFromInt(20000),
			"Travel Allowance":  decimal.NewFromInt(10000),
			"Medical Allowance": decimal.NewFromInt(5000),
		},
	}
}
