/*
store.go - Persistence interfaces consumed by the payroll engine

PURPOSE:
  Defines the interface between payroll logic and the employee record
  source. The calculator itself is pure; stores only feed it input data
  (base salary, allowances, hire date) and keep the payslips it produced.

KEY INTERFACES:
  ProfileStore: Read access to employee pay records
  PayslipStore: Append-only record of generated payslips

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (both interfaces)
  - generic/store/memory.go: In-memory ProfileStore for testing

SEE ALSO:
  - payroll/run.go: Batch runs over a ProfileStore
  - api/handlers.go: The API's Store embeds both interfaces
  - store/sqlite/sqlite.go: Concrete implementation
*/
package generic

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDS
// =============================================================================

// EmployeeRecord is the stored pay profile of one employee.
// Identity fields are passed through to reports unchanged.
type EmployeeRecord struct {
	ID          EmployeeID
	Name        string
	Email       string
	Designation string
	BankName    string
	HireDate    TimePoint
	BaseSalary  decimal.Decimal
	Allowances  map[string]decimal.Decimal
	CreatedAt   time.Time
}

// PayslipRecord is a saved payslip. Figures holds the serialized
// computation result so a stored slip never changes when policies do.
type PayslipRecord struct {
	ID          string
	EmployeeID  EmployeeID
	Period      PayPeriod
	PolicyID    PolicyID
	Gross       decimal.Decimal
	Net         decimal.Decimal
	FiguresJSON string
	CreatedAt   time.Time
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// ProfileStore provides employee pay records.
type ProfileStore interface {
	// GetProfile returns ErrEmployeeNotFound if the employee doesn't exist.
	GetProfile(ctx context.Context, id EmployeeID) (EmployeeRecord, error)

	// ListProfiles returns all employees ordered by ID.
	ListProfiles(ctx context.Context) ([]EmployeeRecord, error)
}

// PayslipStore persists generated payslips.
// Saving a second payslip for the same employee and period returns
// ErrDuplicatePayslip.
type PayslipStore interface {
	SavePayslip(ctx context.Context, p PayslipRecord) error
	ListPayslips(ctx context.Context, employeeID EmployeeID) ([]PayslipRecord, error)
}
