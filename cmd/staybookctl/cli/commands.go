package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/staybook/staybook/internal/cashflow"
	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/internal/summary"
	"github.com/staybook/staybook/jobs"
)

func newSeedCmd(r *runner) *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Backfill derived records",
	}
	seed.AddCommand(&cobra.Command{
		Use:   "commissions",
		Short: "Record a commission for every assigned reservation that lacks one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, env *Env) error {
				if env.Seeder == nil {
					return errNotConfigured
				}
				result, err := env.Seeder.SeedAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created=%d skipped=%d\n", result.Created, result.Skipped)
				return nil
			})
		},
	})
	return seed
}

func newSummaryCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show GRO reservation and commission totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := readPeriod(cmd)
			if err != nil {
				return err
			}
			staffID, _ := cmd.Flags().GetInt64("staff")
			asJSON, _ := cmd.Flags().GetBool("json")
			return r.with(cmd, func(ctx context.Context, env *Env) error {
				if env.Summaries == nil {
					return errNotConfigured
				}
				var rows []summary.StaffSummary
				if staffID > 0 {
					one, err := env.Summaries.Summarize(ctx, staffID, period)
					if err != nil {
						return err
					}
					rows = []summary.StaffSummary{one}
				} else {
					rows, err = env.Summaries.SummarizeAll(ctx, period)
					if err != nil {
						return err
					}
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"data": rows, "totals": summary.Totals(rows)})
				}
				return writeSummaryTable(cmd.OutOrStdout(), rows)
			})
		},
	}
	periodFlags(cmd)
	cmd.Flags().Int64("staff", 0, "Limit to one staff member id")
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
	return cmd
}

func writeSummaryTable(w io.Writer, rows []summary.StaffSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STAFF\tRESERVATIONS\tCANCELLED\tREVENUE\tCOMMISSION\tPAID\tPENDING\t")
	line := func(name string, s summary.StaffSummary) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t\n", name, s.Count, s.CancelledCount,
			shared.FormatIDR(s.Revenue), shared.FormatIDR(s.Commission),
			shared.FormatIDR(s.PaidCommission), shared.FormatIDR(s.PendingCommission))
	}
	for _, s := range rows {
		line(s.StaffName, s)
	}
	line("TOTAL", summary.Totals(rows))
	return tw.Flush()
}

func newLedgerCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Print the cash-flow ledger of paid invoices and completed expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := readPeriod(cmd)
			if err != nil {
				return err
			}
			var opening *int64
			if cmd.Flags().Changed("opening") {
				v, _ := cmd.Flags().GetInt64("opening")
				opening = &v
			}
			asCSV, _ := cmd.Flags().GetBool("csv")
			return r.with(cmd, func(ctx context.Context, env *Env) error {
				if env.Ledgers == nil {
					return errNotConfigured
				}
				report, err := env.Ledgers.Ledger(ctx, period, opening)
				if err != nil {
					return err
				}
				if asCSV {
					return cashflow.WriteLedgerCSV(cmd.OutOrStdout(), report)
				}
				return writeLedgerTable(cmd.OutOrStdout(), report)
			})
		},
	}
	periodFlags(cmd)
	cmd.Flags().Int64("opening", 0, "Opening balance in Rupiah; defaults to the carried-over balance")
	cmd.Flags().Bool("csv", false, "Write CSV to stdout")
	return cmd
}

func writeLedgerTable(w io.Writer, report cashflow.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tREFERENCE\tDESCRIPTION\tAMOUNT\tBALANCE")
	for _, e := range report.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Date.Format("2006-01-02"), e.Type, e.Reference,
			e.Description, shared.FormatIDR(e.Amount), shared.FormatIDR(e.RunningBalance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nopening %s  income %s  expenses %s  closing %s\n",
		shared.FormatIDR(report.OpeningBalance), shared.FormatIDR(report.TotalIncome),
		shared.FormatIDR(report.TotalExpenses), shared.FormatIDR(report.ClosingBalance))
	return err
}

func newJobsCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "trigger TASK",
		Short:     "Enqueue a task now (" + strings.Join(jobs.TaskTypes(), ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: jobs.TaskTypes(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, env *Env) error {
				if env.Jobs == nil {
					return errNotConfigured
				}
				info, err := env.Jobs.Enqueue(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, env *Env) error {
				if env.Jobs == nil {
					return errNotConfigured
				}
				stats, err := env.Jobs.Stats(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), stats)
			})
		},
	})
	return cmd
}

func newUserCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API accounts",
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			return r.with(cmd, func(ctx context.Context, env *Env) error {
				if env.Users == nil {
					return errNotConfigured
				}
				user, err := env.Users.CreateUser(ctx, email, password, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user id=%d email=%s role=%s\n", user.ID, user.Email, user.Role)
				return nil
			})
		},
	}
	create.Flags().String("email", "", "Login email")
	create.Flags().String("password", "", "Initial password, at least 8 characters")
	create.Flags().String("role", shared.RoleStaff, "Role: admin or staff")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
