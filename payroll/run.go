package payroll

import (
	"context"
	"fmt"

	"github.com/warp/payroll-engine/generic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// PAYROLL RUN - Compute payslips for every employee in a period
// =============================================================================

// DefaultRunConcurrency bounds parallel computations in a run.
const DefaultRunConcurrency = 4

// Runner computes payslips for all employees of a ProfileStore.
// Every calculation is independent, so they run concurrently; the store is
// the only shared resource.
type Runner struct {
	Profiles    generic.ProfileStore
	Policies    *PolicySet
	Concurrency int
	Logger      *zap.Logger
}

// RunResult is the outcome for one employee.
type RunResult struct {
	EmployeeID generic.EmployeeID
	Figures    PayslipFigures
}

// Run computes every employee's payslip for the period. Results are ordered
// like ListProfiles (by employee ID). The period is validated first.
func (r *Runner) Run(ctx context.Context, period generic.PayPeriod) ([]RunResult, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("payroll_run").With(zap.String("period", period.String()))

	profiles, err := r.Profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	policies := r.Policies
	if policies == nil {
		policies = NewPolicySet()
	}
	calc := NewCalculator(policies.For(period))

	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultRunConcurrency
	}

	results := make([]RunResult, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, rec := range profiles {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			profile, allowances := ProfileFromRecord(rec)
			results[i] = RunResult{
				EmployeeID: rec.ID,
				Figures: calc.BuildPayslipFigures(PayslipInput{
					Profile:    profile,
					Allowances: allowances,
					Period:     period,
				}),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("payroll run aborted", zap.Error(err))
		return nil, err
	}

	logger.Info("payroll run computed",
		zap.Int("employees", len(results)),
		zap.String("policy", string(calc.Policy().ID)),
	)
	return results, nil
}
