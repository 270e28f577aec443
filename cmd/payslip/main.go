/*
main.go - Offline payslip calculator

PURPOSE:
  Computes one payslip from the command line, without a database or server.
  Input is validated strictly: any bad amount or date is reported and the
  command exits non-zero.

USAGE:
  payslip --base 100000 \
      --allowance "House Allowance=20000" \
      --allowance "Travel Allowance=10000" \
      --allowance "Medical Allowance=5000" \
      --hire 2023-01-15 --period 2025-06

FLAGS:
  --base          Base monthly salary (required)
  --allowance     Name=amount, repeatable
  --hire          Hire date YYYY-MM-DD (required)
  --period        Pay period YYYY-MM (default: current month)
  --payment-date  Evaluation date for YTD figures (default: end of period)
  --policy        YAML/JSON tax policy file (default: built-in brackets)
  --json          Print JSON instead of a table

SEE ALSO:
  - payroll/strict.go: Input validation
  - factory/policy.go: Policy file format
*/
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

type options struct {
	base        string
	allowances  []string
	hire        string
	period      string
	paymentDate string
	policyFile  string
	asJSON      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "payslip",
		Short:        "Compute a monthly payslip",
		Long:         `Computes gross pay, provident fund, income tax, net pay and year-to-date totals for one employee and one pay period.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPayslip(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.base, "base", "", "base monthly salary")
	flags.StringArrayVar(&opts.allowances, "allowance", nil, `allowance as "Name=amount" (repeatable)`)
	flags.StringVar(&opts.hire, "hire", "", "hire date (YYYY-MM-DD)")
	flags.StringVar(&opts.period, "period", "", "pay period (YYYY-MM, default current month)")
	flags.StringVar(&opts.paymentDate, "payment-date", "", "evaluation date for YTD figures (YYYY-MM-DD)")
	flags.StringVar(&opts.policyFile, "policy", "", "tax policy file (.yaml, .yml or .json)")
	flags.BoolVar(&opts.asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("hire")

	return cmd
}

func runPayslip(out io.Writer, opts *options) error {
	policy := payroll.DefaultPolicy()
	if opts.policyFile != "" {
		p, err := factory.NewPolicyFactory().LoadFile(opts.policyFile)
		if err != nil {
			return err
		}
		policy = p
	}

	period := generic.PayPeriodOf(generic.TimePointOf(time.Now()))
	if opts.period != "" {
		p, err := generic.ParsePayPeriod(opts.period)
		if err != nil {
			return err
		}
		period = p
	}

	allowances, err := parseAllowanceFlags(opts.allowances)
	if err != nil {
		return err
	}

	figures, err := payroll.NewCalculator(policy).BuildPayslipStrict(payroll.StrictInput{
		BaseMonthlySalary: opts.base,
		Allowances:        allowances,
		HireDate:          opts.hire,
		Year:              period.Year,
		Month:             int(period.Month),
		AsOf:              opts.paymentDate,
	})
	if err != nil {
		return err
	}

	dto := api.NewPayslipDTO(figures, policy.Currency)
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dto)
	}
	return printPayslip(out, dto)
}

// parseAllowanceFlags turns "House Allowance=20000" flags into a map.
// A repeated name keeps the last value.
func parseAllowanceFlags(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, amount, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid allowance %q: want Name=amount", v)
		}
		out[name] = strings.TrimSpace(amount)
	}
	return out, nil
}

func printPayslip(out io.Writer, p api.PayslipDTO) error {
	fmt.Fprintf(out, "Period %s  (as of %s, %d months accrued, policy %s)\n\n",
		p.Period, p.EvaluationDate, p.MonthsAccrued, p.PolicyID)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "EARNINGS\tMONTHLY\tYTD\t\n")
	for _, l := range p.Earnings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", l.Name, l.Monthly, l.YTD)
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t\n", p.GrossMonthlyEarnings, p.TotalEarningsYTD)
	fmt.Fprintf(tw, "\t\t\t\n")
	fmt.Fprintf(tw, "DEDUCTIONS\tMONTHLY\tYTD\t\n")
	for _, l := range p.Deductions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", l.Name, l.Monthly, l.YTD)
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t\n", p.TotalMonthlyDeduction, p.TotalDeductionsYTD)
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nNet pay: %s %s\n", p.Currency, p.NetMonthlyPay)
	return err
}
