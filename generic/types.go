/*
Package generic provides the domain-agnostic primitives of the payroll engine.

PURPOSE:
  Money, calendar and accrual building blocks that carry no payroll rules of
  their own. The payroll package composes them into tax, provident fund and
  year-to-date calculations.

KEY CONCEPTS IN THIS FILE (types.go):
  - Currency: ISO code carried by tax policies
  - ParseOrZero: Boundary coercion of loosely typed input to a non-negative decimal
  - InRange: Magnitude bound for money amounts
  - EmployeeID: Type-safe identifier

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, never float64 arithmetic
  2. Graceful degradation: Unparseable or negative inputs become zero at the
     boundary, so the arithmetic below only ever sees valid amounts
  3. Type Safety: Strong typing for identifiers

USAGE:
  base := generic.ParseOrZero("100,000")   // 100000
  bad := generic.ParseOrZero("n/a")        // 0
  huge := generic.ParseOrZero("1e100")     // 0, out of range

SEE ALSO:
  - time.go: TimePoint
  - period.go: PayPeriod and accrual year configuration
  - accrual.go: Month counting for year-to-date figures
*/
package generic

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY
// =============================================================================

type Currency string

const (
	CurrencyPKR Currency = "PKR"
	CurrencyUSD Currency = "USD"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PolicyID string

// =============================================================================
// COERCION - parse-or-zero at the boundary
// =============================================================================

// ParseOrZero converts loosely typed input into a non-negative decimal.
//
// Accepted: decimal.Decimal, *decimal.Decimal, json.Number, strings (with
// optional thousands separators), and all built-in integer and float types.
// Anything else, including nil, NaN, infinities, unparseable strings,
// negative values and values outside InRange, yields zero. It never panics.
func ParseOrZero(v any) decimal.Decimal {
	var d decimal.Decimal

	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		d = *x
	case json.Number:
		d = parseString(string(x))
	case string:
		d = parseString(x)
	case float64:
		d = fromFloat(x)
	case float32:
		d = fromFloat(float64(x))
	case int:
		d = decimal.NewFromInt(int64(x))
	case int8:
		d = decimal.NewFromInt(int64(x))
	case int16:
		d = decimal.NewFromInt(int64(x))
	case int32:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case uint:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(x)), 0)
	case uint8:
		d = decimal.NewFromInt(int64(x))
	case uint16:
		d = decimal.NewFromInt(int64(x))
	case uint32:
		d = decimal.NewFromInt(int64(x))
	case uint64:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
	default:
		return decimal.Zero
	}

	return ValidAmount(d)
}

// Bounds for money amounts. Exponent notation is accepted, so the bounds are
// checked on digit counts before any arithmetic touches the value.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 18
)

// InRange reports whether d has at most MaxIntegerDigits integer digits and
// at most MaxFractionDigits fractional digits.
func InRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -MaxFractionDigits || exp > MaxIntegerDigits {
		return false
	}
	return int64(d.NumDigits())+exp <= MaxIntegerDigits
}

// ValidAmount returns d when it is non-negative and InRange, zero otherwise.
func ValidAmount(d decimal.Decimal) decimal.Decimal {
	if !InRange(d) {
		return decimal.Zero
	}
	return NonNegative(d)
}

// NonNegative clamps negative values to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseStrict parses a non-negative decimal string and reports failure
// instead of coercing. Used by validating call sites.
func ParseStrict(s string) (decimal.Decimal, error) {
	s = normalizeNumber(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() || !InRange(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func parseString(s string) decimal.Decimal {
	s = normalizeNumber(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, ",", "")
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
