/*
Package factory provides JSON/YAML to Go tax policy conversion.

PURPOSE:
  Converts policy documents into payroll.Policy values. Tax brackets and the
  provident fund rate are jurisdiction rules that change with each fiscal
  year; keeping them in configuration lets payroll admins publish a new
  effective-dated policy without a code change.

JSON SCHEMA:
  {
    "id": "fy-2025",
    "name": "FY 2025-26",
    "currency": "PKR",
    "provident_fund_rate": "0.08",
    "period_type": "fiscal_year",
    "fiscal_year_start": 7,
    "effective_from": "2025-07-01",
    "brackets": [
      {"from": 0,       "up_to": 600000,  "rate": 0},
      {"from": 600000,  "up_to": 1200000, "rate": 0.05},
      {"from": 1200000,                   "rate": 0.15, "base": 30000}
    ]
  }

  The YAML form uses the same keys.

KEY FEATURES:
  - Amounts accept JSON/YAML numbers or strings ("0.05" or 0.05)
  - "base" may be omitted; it is then derived from the brackets below
  - Validates contiguity and cumulative bases (payroll.BracketTable.Validate)
  - Missing provident_fund_rate defaults to the built-in 8%

USAGE:
  f := factory.NewPolicyFactory()
  policy, err := f.ParsePolicy(payroll.StandardPolicyJSON("std", "Standard", "2025-01-01"))
  policy, err = f.LoadFile("policies/fy2025.yaml")

SEE ALSO:
  - payroll/policy.go: Policy type definition
  - payroll/policies.go: Built-in presets
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// PolicyJSON is the document form of a policy.
type PolicyJSON struct {
	ID                string        `json:"id" yaml:"id"`
	Name              string        `json:"name" yaml:"name"`
	Currency          string        `json:"currency,omitempty" yaml:"currency,omitempty"`
	ProvidentFundRate Number        `json:"provident_fund_rate,omitempty" yaml:"provident_fund_rate,omitempty"`
	PeriodType        string        `json:"period_type,omitempty" yaml:"period_type,omitempty"`
	FiscalYearStart   int           `json:"fiscal_year_start,omitempty" yaml:"fiscal_year_start,omitempty"` // Month 1-12
	EffectiveFrom     string        `json:"effective_from,omitempty" yaml:"effective_from,omitempty"`
	Brackets          []BracketJSON `json:"brackets" yaml:"brackets"`
}

// BracketJSON is one tax bracket. UpTo is omitted for the top bracket.
type BracketJSON struct {
	From Number  `json:"from" yaml:"from"`
	UpTo *Number `json:"up_to,omitempty" yaml:"up_to,omitempty"`
	Base Number  `json:"base,omitempty" yaml:"base,omitempty"`
	Rate Number  `json:"rate" yaml:"rate"`
}

// Number is a decimal written either as a number or a string.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*n = Number(str)
		return nil
	}
	*n = Number(s)
	return nil
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number, got %s", value.Line, nodeKind(value.Kind))
	}
	*n = Number(value.Value)
	return nil
}

func (n Number) IsZero() bool { return n == "" }

// Decimal parses the number. Empty yields ok == false.
func (n Number) Decimal() (decimal.Decimal, bool, error) {
	if n == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(n)))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid number %q: %w", string(n), err)
	}
	if !generic.InRange(d) {
		return decimal.Zero, false, fmt.Errorf("number %q out of range: %w", string(n), generic.ErrInvalidAmount)
	}
	return d, true, nil
}

func numberOf(d decimal.Decimal) Number { return Number(d.String()) }

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts policy documents to payroll policies.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON document.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (payroll.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return payroll.Policy{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// ParsePolicyYAML parses a YAML document.
func (f *PolicyFactory) ParsePolicyYAML(data []byte) (payroll.Policy, error) {
	var pj PolicyJSON
	if err := yaml.Unmarshal(data, &pj); err != nil {
		return payroll.Policy{}, fmt.Errorf("failed to parse policy YAML: %w", err)
	}
	return f.FromJSON(pj)
}

// LoadFile reads a policy from a .json, .yaml or .yml file.
func (f *PolicyFactory) LoadFile(path string) (payroll.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParsePolicyYAML(data)
	case ".json":
		return f.ParsePolicy(string(data))
	default:
		return payroll.Policy{}, fmt.Errorf("unsupported policy file extension %q", filepath.Ext(path))
	}
}

// FromJSON converts PolicyJSON to payroll.Policy and validates it.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (payroll.Policy, error) {
	defaults := payroll.DefaultPolicy()

	policy := payroll.Policy{
		ID:                generic.PolicyID(pj.ID),
		Name:              pj.Name,
		Currency:          generic.Currency(pj.Currency),
		ProvidentFundRate: defaults.ProvidentFundRate,
		AccrualYear:       generic.CalendarYear(),
	}
	if policy.Currency == "" {
		policy.Currency = defaults.Currency
	}

	rate, ok, err := pj.ProvidentFundRate.Decimal()
	if err != nil {
		return payroll.Policy{}, fmt.Errorf("provident_fund_rate: %w", err)
	}
	if ok {
		policy.ProvidentFundRate = rate
	}

	switch generic.PeriodType(pj.PeriodType) {
	case "", generic.PeriodCalendarYear:
	case generic.PeriodFiscalYear:
		if pj.FiscalYearStart < 1 || pj.FiscalYearStart > 12 {
			return payroll.Policy{}, fmt.Errorf("fiscal_year_start must be 1-12, got %d", pj.FiscalYearStart)
		}
		policy.AccrualYear = generic.FiscalYear(time.Month(pj.FiscalYearStart))
	default:
		return payroll.Policy{}, fmt.Errorf("unknown period_type %q", pj.PeriodType)
	}

	if pj.EffectiveFrom != "" {
		eff, err := generic.ParseDate(pj.EffectiveFrom)
		if err != nil {
			return payroll.Policy{}, fmt.Errorf("effective_from: %w", err)
		}
		policy.EffectiveFrom = eff
	}

	brackets, err := bracketsFromJSON(pj.Brackets)
	if err != nil {
		return payroll.Policy{}, err
	}
	policy.Brackets = brackets

	if err := policy.Validate(); err != nil {
		return payroll.Policy{}, err
	}
	return policy, nil
}

func bracketsFromJSON(in []BracketJSON) (payroll.BracketTable, error) {
	table := make(payroll.BracketTable, 0, len(in))

	for i, bj := range in {
		var b payroll.TaxBracket
		var err error

		if b.From, _, err = bj.From.Decimal(); err != nil {
			return nil, fmt.Errorf("brackets[%d].from: %w", i, err)
		}
		if b.Rate, _, err = bj.Rate.Decimal(); err != nil {
			return nil, fmt.Errorf("brackets[%d].rate: %w", i, err)
		}
		if bj.UpTo != nil && !bj.UpTo.IsZero() {
			upTo, _, err := bj.UpTo.Decimal()
			if err != nil {
				return nil, fmt.Errorf("brackets[%d].up_to: %w", i, err)
			}
			b.UpTo = &upTo
		}

		base, ok, err := bj.Base.Decimal()
		if err != nil {
			return nil, fmt.Errorf("brackets[%d].base: %w", i, err)
		}
		switch {
		case ok:
			b.Base = base
		case i > 0 && table[i-1].UpTo != nil:
			// Derive the cumulative base from the bracket below.
			prev := table[i-1]
			b.Base = prev.Tax(*prev.UpTo)
		}

		table = append(table, b)
	}
	return table, nil
}

// ToJSON converts a policy back into its document form.
func (f *PolicyFactory) ToJSON(p payroll.Policy) PolicyJSON {
	pj := PolicyJSON{
		ID:                string(p.ID),
		Name:              p.Name,
		Currency:          string(p.Currency),
		ProvidentFundRate: numberOf(p.ProvidentFundRate),
		PeriodType:        string(generic.PeriodCalendarYear),
	}
	if p.AccrualYear.StartMonth() != time.January {
		pj.PeriodType = string(generic.PeriodFiscalYear)
		pj.FiscalYearStart = int(p.AccrualYear.StartMonth())
	}
	if !p.EffectiveFrom.IsZero() {
		pj.EffectiveFrom = p.EffectiveFrom.String()
	}
	for _, b := range p.Brackets {
		bj := BracketJSON{From: numberOf(b.From), Base: numberOf(b.Base), Rate: numberOf(b.Rate)}
		if b.UpTo != nil {
			upTo := numberOf(*b.UpTo)
			bj.UpTo = &upTo
		}
		pj.Brackets = append(pj.Brackets, bj)
	}
	return pj
}
