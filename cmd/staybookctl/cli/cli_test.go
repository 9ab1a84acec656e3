package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook/internal/auth"
	"github.com/staybook/staybook/internal/cashflow"
	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/internal/summary"
	"github.com/staybook/staybook/jobs"
)

type stubEnv struct {
	seeded     int
	period     shared.Period
	staffID    int64
	opening    *int64
	enqueued   []string
	createdFor string
}

func (s *stubEnv) SeedAll(ctx context.Context) (commission.SeedResult, error) {
	s.seeded++
	return commission.SeedResult{Created: 4, Skipped: 9}, nil
}

func (s *stubEnv) Summarize(ctx context.Context, staffID int64, period shared.Period) (summary.StaffSummary, error) {
	s.staffID, s.period = staffID, period
	if staffID == 99 {
		return summary.StaffSummary{}, shared.ErrNotFound
	}
	return summary.StaffSummary{StaffID: staffID, StaffName: "Ayu", Count: 2, Revenue: 3_000_000, Commission: 100_000, PendingCommission: 100_000}, nil
}

func (s *stubEnv) SummarizeAll(ctx context.Context, period shared.Period) ([]summary.StaffSummary, error) {
	s.period = period
	return []summary.StaffSummary{
		{StaffID: 1, StaffName: "Ayu", Count: 2, Revenue: 3_000_000, Commission: 100_000, PaidCommission: 50_000, PendingCommission: 50_000},
		{StaffID: 2, StaffName: "Budi", Count: 1, Revenue: 1_200_000, Commission: 50_000, PendingCommission: 50_000},
	}, nil
}

func (s *stubEnv) Ledger(ctx context.Context, period shared.Period, opening *int64) (cashflow.Report, error) {
	s.period, s.opening = period, opening
	return cashflow.Report{
		Entries: []cashflow.Entry{
			{Date: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), Type: cashflow.Expense, Reference: "EXP-000001", Description: "Laundry", Amount: 200_000, RunningBalance: 800_000},
			{Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Type: cashflow.Income, Reference: "INV-202507-0001", Description: "Invoice INV-202507-0001 - PT Bali Tour", Amount: 1_000_000, RunningBalance: 1_000_000},
		},
		TotalIncome:    1_000_000,
		TotalExpenses:  200_000,
		ClosingBalance: 800_000,
	}, nil
}

func (s *stubEnv) Enqueue(ctx context.Context, taskType string) (*asynq.TaskInfo, error) {
	if _, err := jobs.NewTask(taskType); err != nil {
		return nil, err
	}
	s.enqueued = append(s.enqueued, taskType)
	return &asynq.TaskInfo{ID: "t-1", Type: taskType, Queue: jobs.QueueDefault}, nil
}

func (s *stubEnv) Stats(ctx context.Context) (jobs.QueueStats, error) {
	return jobs.QueueStats{Queue: jobs.QueueDefault, Pending: 3}, nil
}

func (s *stubEnv) CreateUser(ctx context.Context, email, password, role string) (*auth.User, error) {
	s.createdFor = email + "/" + role
	return &auth.User{ID: 7, Email: email, Role: role}, nil
}

func run(t *testing.T, stub *stubEnv, args ...string) (string, error) {
	t.Helper()
	env := &Env{Seeder: stub, Summaries: stub, Ledgers: stub, Jobs: stub, Users: stub}
	cmd := NewRootCmd(func(ctx context.Context) (*Env, func(), error) { return env, func() {}, nil })
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedCommissions(t *testing.T) {
	stub := &stubEnv{}
	out, err := run(t, stub, "seed", "commissions")
	require.NoError(t, err)
	require.Equal(t, 1, stub.seeded)
	require.Equal(t, "created=4 skipped=9\n", out)
}

func TestSummaryTableHasTotals(t *testing.T) {
	stub := &stubEnv{}
	out, err := run(t, stub, "summary", "--from", "2025-07-01", "--to", "2025-07-31")
	require.NoError(t, err)
	require.NotNil(t, stub.period.From)
	require.Equal(t, "2025-07-31", stub.period.To.Format("2006-01-02"))
	require.Contains(t, out, "Budi")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(strings.TrimSpace(lines[3]), "TOTAL"))
	require.Contains(t, lines[3], "Rp 150.000")
}

func TestSummaryForOneStaffAsJSON(t *testing.T) {
	stub := &stubEnv{}
	out, err := run(t, stub, "summary", "--staff", "3", "--json")
	require.NoError(t, err)
	require.Equal(t, int64(3), stub.staffID)
	require.Contains(t, out, `"staff_name": "Ayu"`)

	_, err = run(t, stub, "summary", "--staff", "99")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSummaryRejectsInvertedPeriod(t *testing.T) {
	_, err := run(t, &stubEnv{}, "summary", "--from", "2025-08-01", "--to", "2025-07-01")
	require.ErrorIs(t, err, shared.ErrInvalidPeriod)

	_, err = run(t, &stubEnv{}, "summary", "--from", "01/08/2025")
	require.Error(t, err)
}

func TestLedgerOpeningFlag(t *testing.T) {
	stub := &stubEnv{}
	_, err := run(t, stub, "ledger")
	require.NoError(t, err)
	require.Nil(t, stub.opening)

	out, err := run(t, stub, "ledger", "--opening", "0", "--csv")
	require.NoError(t, err)
	require.NotNil(t, stub.opening)
	require.Zero(t, *stub.opening)
	require.Contains(t, out, "INV-202507-0001")
}

func TestLedgerTable(t *testing.T) {
	out, err := run(t, &stubEnv{}, "ledger", "--from", "2025-07-01")
	require.NoError(t, err)
	require.Contains(t, out, "EXP-000001")
	require.Contains(t, out, "closing Rp 800.000")
}

func TestJobsTriggerAndStats(t *testing.T) {
	stub := &stubEnv{}
	out, err := run(t, stub, "jobs", "trigger", jobs.TaskInvoicesOverdue)
	require.NoError(t, err)
	require.Equal(t, []string{jobs.TaskInvoicesOverdue}, stub.enqueued)
	require.Contains(t, out, "id=t-1")

	_, err = run(t, stub, "jobs", "trigger", "mail:send")
	require.Error(t, err)

	out, err = run(t, stub, "jobs", "stats")
	require.NoError(t, err)
	require.Contains(t, out, `"pending": 3`)
}

func TestUserCreate(t *testing.T) {
	stub := &stubEnv{}
	out, err := run(t, stub, "user", "create", "--email", "gro@staybook.test", "--password", "rahasia123")
	require.NoError(t, err)
	require.Equal(t, "gro@staybook.test/staff", stub.createdFor)
	require.Contains(t, out, "id=7")

	_, err = run(t, stub, "user", "create", "--email", "x@staybook.test")
	require.Error(t, err)
}

func TestOpenErrorPropagates(t *testing.T) {
	cmd := NewRootCmd(func(ctx context.Context) (*Env, func(), error) { return nil, nil, errors.New("pg down") })
	cmd.SetArgs([]string{"seed", "commissions"})
	cmd.SetOut(new(bytes.Buffer))
	require.EqualError(t, cmd.ExecuteContext(context.Background()), "pg down")
}
