// Package cli implements the staybookctl operations commands.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/staybook/staybook/internal/auth"
	"github.com/staybook/staybook/internal/cashflow"
	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/internal/summary"
	"github.com/staybook/staybook/jobs"
)

// Seeder records missing commission entries.
type Seeder interface {
	SeedAll(ctx context.Context) (commission.SeedResult, error)
}

// Summaries computes GRO summaries.
type Summaries interface {
	Summarize(ctx context.Context, staffID int64, period shared.Period) (summary.StaffSummary, error)
	SummarizeAll(ctx context.Context, period shared.Period) ([]summary.StaffSummary, error)
}

// Ledgers builds cash-flow ledgers.
type Ledgers interface {
	Ledger(ctx context.Context, period shared.Period, opening *int64) (cashflow.Report, error)
}

// Jobs submits and inspects background tasks.
type Jobs interface {
	Enqueue(ctx context.Context, taskType string) (*asynq.TaskInfo, error)
	Stats(ctx context.Context) (jobs.QueueStats, error)
}

// Users manages accounts.
type Users interface {
	CreateUser(ctx context.Context, email, password, role string) (*auth.User, error)
}

// Env is what commands run against. Unused fields may be nil.
type Env struct {
	Seeder    Seeder
	Summaries Summaries
	Ledgers   Ledgers
	Jobs      Jobs
	Users     Users
}

// Opener connects the environment. The returned func releases it.
type Opener func(ctx context.Context) (*Env, func(), error)

var errNotConfigured = errors.New("staybookctl: dependency not configured")

// NewRootCmd builds the command tree.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "staybookctl",
		Short:         "StayBook operations tool",
		Long:          "Operate the StayBook back-office: seed commissions, inspect GRO summaries and the cash-flow ledger, manage jobs and users.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Duration("timeout", 2*time.Minute, "Overall command timeout")

	r := &runner{open: open}
	root.AddCommand(
		newSeedCmd(r),
		newSummaryCmd(r),
		newLedgerCmd(r),
		newJobsCmd(r),
		newUserCmd(r),
	)
	return root
}

type runner struct {
	open Opener
}

// with opens the environment under the command's timeout and runs fn.
func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, env *Env) error) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	env, release, err := r.open(ctx)
	if err != nil {
		return err
	}
	if release != nil {
		defer release()
	}
	return fn(ctx, env)
}

func periodFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Start date (YYYY-MM-DD), inclusive")
	cmd.Flags().String("to", "", "End date (YYYY-MM-DD), inclusive")
}

func readPeriod(cmd *cobra.Command) (shared.Period, error) {
	var period shared.Period
	for _, f := range []struct {
		name string
		dst  **time.Time
	}{{"from", &period.From}, {"to", &period.To}} {
		raw, _ := cmd.Flags().GetString(f.name)
		if raw == "" {
			continue
		}
		t, err := shared.ParseDate(raw)
		if err != nil {
			return shared.Period{}, err
		}
		*f.dst = &t
	}
	return period, period.Validate()
}
