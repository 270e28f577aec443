package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PAY PERIOD - The month being paid
// =============================================================================

// PayPeriod identifies one payroll month. It is also the default "as of"
// reference for year-to-date figures.
type PayPeriod struct {
	Year  int
	Month time.Month
}

func NewPayPeriod(year int, month time.Month) PayPeriod {
	return PayPeriod{Year: year, Month: month}
}

// PayPeriodOf returns the pay period containing the date.
func PayPeriodOf(tp TimePoint) PayPeriod {
	return PayPeriod{Year: tp.Year(), Month: tp.Month()}
}

// ParsePayPeriod parses "YYYY-MM".
func ParsePayPeriod(s string) (PayPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return PayPeriod{}, fmt.Errorf("%w: %q (use YYYY-MM)", ErrInvalidPayPeriod, s)
	}
	return PayPeriod{Year: t.Year(), Month: t.Month()}, nil
}

// Validate checks the month is 1-12 and the year is a four digit year.
func (p PayPeriod) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidPayPeriod, int(p.Month))
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidPayPeriod, p.Year)
	}
	return nil
}

func (p PayPeriod) Start() TimePoint { return StartOfMonth(p.Year, p.Month) }
func (p PayPeriod) End() TimePoint   { return EndOfMonth(p.Year, p.Month) }

// Contains returns true if the date falls inside the pay month.
func (p PayPeriod) Contains(tp TimePoint) bool {
	return tp.Year() == p.Year && tp.Month() == p.Month
}

func (p PayPeriod) Next() PayPeriod     { return PayPeriodOf(p.Start().AddMonths(1)) }
func (p PayPeriod) Previous() PayPeriod { return PayPeriodOf(p.Start().AddMonths(-1)) }

func (p PayPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// =============================================================================
// PERIOD - Accrual year window
// =============================================================================

// Period is an inclusive date range [Start, End].
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how accrual years are calculated
type PeriodType string

const (
	PeriodCalendarYear PeriodType = "calendar_year" // Jan 1 - Dec 31
	PeriodFiscalYear   PeriodType = "fiscal_year"   // Custom start (e.g., Jul 1)
)

// PeriodConfig defines the year over which year-to-date figures accrue.
type PeriodConfig struct {
	Type PeriodType

	// For fiscal year: which month starts the fiscal year (1-12)
	FiscalYearStartMonth time.Month
}

// CalendarYear is the default accrual year.
func CalendarYear() PeriodConfig {
	return PeriodConfig{Type: PeriodCalendarYear}
}

// FiscalYear starts the accrual year on the first day of the given month.
func FiscalYear(start time.Month) PeriodConfig {
	return PeriodConfig{Type: PeriodFiscalYear, FiscalYearStartMonth: start}
}

// PeriodFor returns the accrual year that contains the given date.
func (pc PeriodConfig) PeriodFor(date TimePoint) Period {
	if pc.Type == PeriodFiscalYear && pc.FiscalYearStartMonth > time.January && pc.FiscalYearStartMonth <= time.December {
		return pc.fiscalYearPeriod(date)
	}
	return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year())}
}

func (pc PeriodConfig) fiscalYearPeriod(date TimePoint) Period {
	year := date.Year()
	fiscalStart := NewTimePoint(year, pc.FiscalYearStartMonth, 1)

	// If date is before fiscal year start, we're in previous fiscal year
	if date.Before(fiscalStart) {
		fiscalStart = NewTimePoint(year-1, pc.FiscalYearStartMonth, 1)
	}

	fiscalEnd := fiscalStart.AddYears(1).AddDays(-1)
	return Period{Start: fiscalStart, End: fiscalEnd}
}

// StartMonth reports the first month of the accrual year.
func (pc PeriodConfig) StartMonth() time.Month {
	if pc.Type == PeriodFiscalYear && pc.FiscalYearStartMonth > time.January && pc.FiscalYearStartMonth <= time.December {
		return pc.FiscalYearStartMonth
	}
	return time.January
}
