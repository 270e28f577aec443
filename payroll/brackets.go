package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// TAX BRACKETS - Progressive annual income tax
// =============================================================================

// TaxBracket taxes income in (From, UpTo] at Base + Rate * (income - From).
// The first bracket also includes From itself. UpTo == nil marks the open
// top bracket.
//
// Base is the total tax owed on income up to From. It must equal the sum of
// the marginal tax of every lower bracket; Validate enforces this.
type TaxBracket struct {
	From decimal.Decimal
	UpTo *decimal.Decimal
	Base decimal.Decimal
	Rate decimal.Decimal
}

// Contains reports whether annual income falls inside the bracket's upper
// bound. Brackets are evaluated in order, so the lower bound is implied.
func (b TaxBracket) Contains(income decimal.Decimal) bool {
	return b.UpTo == nil || income.LessThanOrEqual(*b.UpTo)
}

// Tax returns the tax for income inside this bracket.
func (b TaxBracket) Tax(income decimal.Decimal) decimal.Decimal {
	over := income.Sub(b.From)
	if over.IsNegative() {
		over = decimal.Zero
	}
	return b.Base.Add(over.Mul(b.Rate))
}

// BracketTable is an ordered, contiguous list of brackets.
type BracketTable []TaxBracket

// AnnualTax returns the tax owed on the annual income.
// Zero or negative income owes nothing.
func (t BracketTable) AnnualTax(annualIncome decimal.Decimal) decimal.Decimal {
	if !annualIncome.IsPositive() || len(t) == 0 {
		return decimal.Zero
	}
	for _, b := range t {
		if b.Contains(annualIncome) {
			return generic.NonNegative(b.Tax(annualIncome))
		}
	}
	// Unreachable for a validated table (the top bracket is open).
	return generic.NonNegative(t[len(t)-1].Tax(annualIncome))
}

// BracketFor returns the index of the bracket the income falls into.
func (t BracketTable) BracketFor(annualIncome decimal.Decimal) int {
	for i, b := range t {
		if b.Contains(annualIncome) {
			return i
		}
	}
	return len(t) - 1
}

// Validate checks that brackets are contiguous and ordered, rates are in
// [0, 1], only the last bracket is open, and every cumulative Base equals
// the tax owed at its lower bound under the brackets below it.
func (t BracketTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no brackets", generic.ErrInvalidBrackets)
	}
	if !t[0].From.IsZero() {
		return fmt.Errorf("%w: first bracket must start at 0, got %s", generic.ErrInvalidBrackets, t[0].From)
	}
	if !t[0].Base.IsZero() {
		return fmt.Errorf("%w: first bracket base must be 0, got %s", generic.ErrInvalidBrackets, t[0].Base)
	}

	for i, b := range t {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: bracket %d rate %s outside [0, 1]", generic.ErrInvalidBrackets, i, b.Rate)
		}

		last := i == len(t)-1
		if b.UpTo == nil && !last {
			return fmt.Errorf("%w: bracket %d is open but not last", generic.ErrInvalidBrackets, i)
		}
		if b.UpTo != nil && last {
			return fmt.Errorf("%w: top bracket must be open-ended", generic.ErrInvalidBrackets)
		}
		if b.UpTo != nil && !b.UpTo.GreaterThan(b.From) {
			return fmt.Errorf("%w: bracket %d upper bound %s not above lower bound %s", generic.ErrInvalidBrackets, i, *b.UpTo, b.From)
		}

		if i == 0 {
			continue
		}
		prev := t[i-1]
		if !b.From.Equal(*prev.UpTo) {
			return fmt.Errorf("%w: bracket %d starts at %s, previous ends at %s", generic.ErrInvalidBrackets, i, b.From, *prev.UpTo)
		}
		if want := prev.Tax(*prev.UpTo); !b.Base.Equal(want) {
			return fmt.Errorf("%w: bracket %d base %s, expected %s", generic.ErrInvalidBrackets, i, b.Base, want)
		}
	}
	return nil
}
