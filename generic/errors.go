/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Calculators never return errors for bad numbers (they coerce to zero);
  these errors come from validating call sites, configuration and storage.

ERROR CATEGORIES:
  1. Validation errors - Malformed periods, amounts, bracket tables
  2. Lookup errors - Missing employees or policies
  3. Store errors - Uniqueness violations

USAGE:
  if errors.Is(err, generic.ErrEmployeeNotFound) {
      // 404
  }

  var verr *generic.ValidationError
  if errors.As(err, &verr) {
      for _, f := range verr.Fields { ... }
  }
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation wraps every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned by strict parsing for negative or
	// unparseable money values.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPayPeriod is returned when a pay period is malformed.
	ErrInvalidPayPeriod = errors.New("invalid pay period")

	// ErrInvalidBrackets is returned when a tax bracket table has gaps,
	// overlaps, or cumulative bases that disagree with the marginal rates.
	ErrInvalidBrackets = errors.New("invalid tax bracket table")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPolicyNotFound is returned when a referenced tax policy doesn't exist.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrDuplicatePayslip is returned when a payslip for the same employee and
	// pay period has already been saved.
	ErrDuplicatePayslip = errors.New("payslip already exists for period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no field was added.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPayPeriod) ||
		errors.Is(err, ErrInvalidBrackets)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPolicyNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicatePayslip)
}
