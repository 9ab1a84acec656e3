package summary

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/internal/staff"
)

type reservationStub struct {
	rows  []reservations.Reservation
	calls int
}

func (s *reservationStub) List(ctx context.Context, f reservations.Filter) ([]reservations.Reservation, int, error) {
	s.calls++
	var out []reservations.Reservation
	for _, r := range s.rows {
		if f.StaffID != nil && (r.StaffID == nil || *r.StaffID != *f.StaffID) {
			continue
		}
		if !f.Period.Contains(r.CheckIn) {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

type entryStub struct {
	entries []commission.Entry
}

func (s *entryStub) List(ctx context.Context, f commission.Filter) ([]commission.Entry, error) {
	return s.entries, nil
}

type directoryStub map[int64]string

func (d directoryStub) Get(ctx context.Context, id int64) (*staff.Member, error) {
	name, ok := d[id]
	if !ok {
		return nil, staff.ErrNotFound
	}
	return &staff.Member{ID: id, Name: name, IsActive: true}, nil
}

func (d directoryStub) Names(ctx context.Context) (map[int64]string, error) {
	return d, nil
}

type cacheCounter map[string]int

func (c cacheCounter) SummaryCacheRequest(result string) { c[result]++ }

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func newTestService(t *testing.T) (*Service, *reservationStub, *miniredis.Miniredis, cacheCounter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := cacheCounter{}
	rows := &reservationStub{rows: []reservations.Reservation{
		{ID: 1, StaffID: ptr(1), FinalPrice: 1_000_000, Status: reservations.StatusSelesai, CheckIn: day("2025-06-10")},
		{ID: 2, StaffID: ptr(1), FinalPrice: 500_000, Status: reservations.StatusPending, CheckIn: day("2025-07-02")},
		{ID: 3, StaffID: ptr(2), FinalPrice: 750_000, Status: reservations.StatusProses, CheckIn: day("2025-07-05")},
	}}
	entries := &entryStub{entries: []commission.Entry{entry(1, 1, 50_000, commission.StatusPaid)}}
	svc := NewService(rows, entries, directoryStub{1: "Ayu", 2: "Komang", 3: "Nyoman"}, policy,
		NewCache(client, time.Minute, counter), nil)
	return svc, rows, mr, counter
}

func TestSummarizeUsesCache(t *testing.T) {
	svc, rows, _, counter := newTestService(t)
	ctx := context.Background()

	first, err := svc.Summarize(ctx, 1, shared.Period{})
	require.NoError(t, err)
	require.Equal(t, 2, first.Count)
	require.Equal(t, int64(1_500_000), first.Revenue)
	require.Equal(t, int64(100_000), first.Commission)
	require.Equal(t, int64(50_000), first.PaidCommission)

	second, err := svc.Summarize(ctx, 1, shared.Period{})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, rows.calls)
	require.Equal(t, 1, counter["miss"])
	require.Equal(t, 1, counter["hit"])

	require.NoError(t, svc.Bump(ctx))
	_, err = svc.Summarize(ctx, 1, shared.Period{})
	require.NoError(t, err)
	require.Equal(t, 2, rows.calls)
}

func TestSummarizePeriod(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	from, to := day("2025-07-01"), day("2025-07-31")

	got, err := svc.Summarize(context.Background(), 1, shared.Period{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, 1, got.Count)
	require.Equal(t, int64(500_000), got.Revenue)
	require.Zero(t, got.PaidCommission)
}

func TestSummarizeStaffWithoutReservations(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	got, err := svc.Summarize(context.Background(), 3, shared.Period{})
	require.NoError(t, err)
	require.Equal(t, StaffSummary{StaffID: 3, StaffName: "Nyoman"}, got)
}

func TestSummarizeUnknownStaff(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Summarize(context.Background(), 99, shared.Period{})
	require.True(t, shared.IsNotFound(err))
}

func TestSummarizeRejectsInvertedPeriod(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	from, to := day("2025-08-01"), day("2025-07-01")
	_, err := svc.SummarizeAll(context.Background(), shared.Period{From: &from, To: &to})
	require.ErrorIs(t, err, shared.ErrInvalidPeriod)
}

func TestSummarizeAll(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	got, err := svc.SummarizeAll(context.Background(), shared.Period{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Ayu", got[0].StaffName)
	require.Equal(t, "Komang", got[1].StaffName)
	require.Equal(t, 3, Totals(got).Count)
}

func TestSummarizeFallsBackWhenRedisDown(t *testing.T) {
	svc, rows, mr, _ := newTestService(t)
	mr.Close()

	got, err := svc.SummarizeAll(context.Background(), shared.Period{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 1, rows.calls)
}

func TestCacheWithoutClient(t *testing.T) {
	c := NewCache(nil, time.Minute, nil)
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "all", "-..-")
	require.NoError(t, err)
	require.Equal(t, "staybook:summary:all:-..-", key)
	require.NoError(t, c.Bump(ctx))

	raw, err := c.Fetch(ctx, key, func(context.Context) (any, error) { return []int{1, 2}, nil })
	require.NoError(t, err)
	require.JSONEq(t, `[1,2]`, string(raw))
}

func TestCacheBumpChangesKey(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, nil)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "all")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "all")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}
