package payroll

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// POLICY - Jurisdiction rules for one fiscal regime
// =============================================================================

// Policy holds the rates a calculation runs under. Policies are versioned by
// EffectiveFrom; PolicySet picks the one in force for a pay period.
type Policy struct {
	ID                generic.PolicyID
	Name              string
	Currency          generic.Currency
	ProvidentFundRate decimal.Decimal
	Brackets          BracketTable
	AccrualYear       generic.PeriodConfig
	EffectiveFrom     generic.TimePoint
}

// DefaultPolicyID identifies the built-in policy.
const DefaultPolicyID generic.PolicyID = "default"

func mustDec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := mustDec(s)
	return &d
}

// DefaultBrackets is the built-in annual income tax table.
//
//	<= 600,000                   0
//	600,000 < x <= 1,200,000     5% over 600,000
//	1,200,000 < x <= 2,200,000   30,000 + 15% over 1,200,000
//	2,200,000 < x <= 3,200,000   180,000 + 20% over 2,200,000
//	> 3,200,000                  380,000 + 25% over 3,200,000
func DefaultBrackets() BracketTable {
	return BracketTable{
		{From: mustDec("0"), UpTo: decPtr("600000"), Base: mustDec("0"), Rate: mustDec("0")},
		{From: mustDec("600000"), UpTo: decPtr("1200000"), Base: mustDec("0"), Rate: mustDec("0.05")},
		{From: mustDec("1200000"), UpTo: decPtr("2200000"), Base: mustDec("30000"), Rate: mustDec("0.15")},
		{From: mustDec("2200000"), UpTo: decPtr("3200000"), Base: mustDec("180000"), Rate: mustDec("0.20")},
		{From: mustDec("3200000"), UpTo: nil, Base: mustDec("380000"), Rate: mustDec("0.25")},
	}
}

// DefaultPolicy returns the built-in rules: the table above, an 8% provident
// fund on base salary, and calendar-year accrual.
func DefaultPolicy() Policy {
	return Policy{
		ID:                DefaultPolicyID,
		Name:              "Default Salaried Income Tax",
		Currency:          generic.CurrencyPKR,
		ProvidentFundRate: mustDec("0.08"),
		Brackets:          DefaultBrackets(),
		AccrualYear:       generic.CalendarYear(),
	}
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	verr := &generic.ValidationError{}
	if p.ID == "" {
		verr.Add("id", "is required")
	}
	if p.ProvidentFundRate.IsNegative() || p.ProvidentFundRate.GreaterThan(decimal.NewFromInt(1)) {
		verr.Add("provident_fund_rate", "must be between 0 and 1")
	}
	if p.AccrualYear.Type == generic.PeriodFiscalYear &&
		(p.AccrualYear.FiscalYearStartMonth < time.January || p.AccrualYear.FiscalYearStartMonth > time.December) {
		verr.Add("fiscal_year_start", "must be a month 1-12")
	}
	if err := verr.Err(); err != nil {
		return err
	}
	if err := p.Brackets.Validate(); err != nil {
		return fmt.Errorf("policy %s: %w", p.ID, err)
	}
	return nil
}

// =============================================================================
// POLICY SET - Effective-dated policy selection
// =============================================================================

// PolicySet holds every known policy and selects the one effective for a
// pay period. It is safe for concurrent use.
type PolicySet struct {
	mu       sync.RWMutex
	policies []Policy // sorted by EffectiveFrom ascending
	fallback Policy
}

// NewPolicySet creates a set that falls back to DefaultPolicy when nothing
// else is effective.
func NewPolicySet() *PolicySet {
	return &PolicySet{fallback: DefaultPolicy()}
}

// Add validates and registers a policy, replacing any with the same ID.
func (s *PolicySet) Add(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == s.fallback.ID {
		s.fallback = p
		return nil
	}
	for i, existing := range s.policies {
		if existing.ID == p.ID {
			s.policies = append(s.policies[:i], s.policies[i+1:]...)
			break
		}
	}
	s.policies = append(s.policies, p)
	sort.SliceStable(s.policies, func(i, j int) bool {
		return s.policies[i].EffectiveFrom.Before(s.policies[j].EffectiveFrom)
	})
	return nil
}

// For returns the policy with the latest EffectiveFrom on or before the end
// of the pay period.
func (s *PolicySet) For(period generic.PayPeriod) Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := period.End()
	selected := s.fallback
	for _, p := range s.policies {
		if p.EffectiveFrom.After(end) {
			break
		}
		selected = p
	}
	return selected
}

// Get returns a policy by ID.
func (s *PolicySet) Get(id generic.PolicyID) (Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == s.fallback.ID {
		return s.fallback, nil
	}
	for _, p := range s.policies {
		if p.ID == id {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("%w: %s", generic.ErrPolicyNotFound, id)
}

// List returns the fallback followed by registered policies in effective order.
func (s *PolicySet) List() []Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Policy, 0, len(s.policies)+1)
	out = append(out, s.fallback)
	out = append(out, s.policies...)
	return out
}

// Reset drops every registered policy and restores the built-in fallback.
func (s *PolicySet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.policies = nil
	s.fallback = DefaultPolicy()
}
