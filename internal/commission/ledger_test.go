package commission

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/reservations"
)

type memoryRepo struct {
	entries map[uuid.UUID]*Entry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{entries: make(map[uuid.UUID]*Entry)}
}

func (r *memoryRepo) Insert(ctx context.Context, e Entry) (bool, error) {
	for _, existing := range r.entries {
		if existing.ReservationID == e.ReservationID {
			return false, nil
		}
	}
	r.entries[e.ID] = &e
	return true, nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memoryRepo) GetByReservation(ctx context.Context, reservationID int64) (*Entry, error) {
	for _, e := range r.entries {
		if e.ReservationID == reservationID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, f Filter) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if f.StaffID != nil && e.StaffID != *f.StaffID {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationID < out[j].ReservationID })
	return out, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, paidAt *time.Time) error {
	e, ok := r.entries[id]
	if !ok || e.Status != from {
		return ErrInvalidTransition
	}
	e.Status = to
	e.PaidAt = paidAt
	return nil
}

func (r *memoryRepo) UpdateStaff(ctx context.Context, id uuid.UUID, staffID int64) error {
	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.StaffID = staffID
	return nil
}

type sliceSource []reservations.Reservation

func (s sliceSource) List(ctx context.Context, f reservations.Filter) ([]reservations.Reservation, int, error) {
	return s, len(s), nil
}

type metricsSpy struct {
	recorded int
	changes  []string
}

func (m *metricsSpy) CommissionRecorded()                   { m.recorded++ }
func (m *metricsSpy) CommissionStatusChanged(status string) { m.changes = append(m.changes, status) }

type bumpCounter struct{ n int }

func (b *bumpCounter) Bump(context.Context) error {
	b.n++
	return nil
}

func staffID(v int64) *int64 { return &v }

func reservation(id int64, staff *int64, status reservations.Status) reservations.Reservation {
	return reservations.Reservation{ID: id, BookingCode: "BK", StaffID: staff, FinalPrice: 1_000_000, Status: status}
}

var fixedNow = time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

func newLedger(repo Repository, source ReservationSource, opts ...LedgerOption) *Ledger {
	opts = append([]LedgerOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewLedger(repo, source, Policy{FixedAmount: 50_000}, opts...)
}

func TestRecordCommissionIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	metrics := &metricsSpy{}
	ledger := newLedger(repo, nil, WithMetrics(metrics))
	ctx := context.Background()
	res := reservation(1, staffID(7), reservations.StatusSelesai)

	first, err := ledger.RecordCommission(ctx, res)
	require.NoError(t, err)
	require.Equal(t, int64(50_000), first.Amount)
	require.Equal(t, StatusPending, first.Status)
	require.Equal(t, int64(7), first.StaffID)

	second, err := ledger.RecordCommission(ctx, res)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.entries, 1)
	require.Equal(t, 1, metrics.recorded)
}

func TestRecordCommissionKeepsCapturedAmount(t *testing.T) {
	repo := newMemoryRepo()
	ctx := context.Background()
	res := reservation(1, staffID(7), reservations.StatusPending)

	_, err := newLedger(repo, nil).RecordCommission(ctx, res)
	require.NoError(t, err)

	raised := NewLedger(repo, nil, Policy{FixedAmount: 75_000})
	entry, err := raised.RecordCommission(ctx, res)
	require.NoError(t, err)
	require.Equal(t, int64(50_000), entry.Amount)
}

func TestRecordCommissionUnassigned(t *testing.T) {
	ledger := newLedger(newMemoryRepo(), nil)
	_, err := ledger.RecordCommission(context.Background(), reservation(1, nil, reservations.StatusPending))
	require.ErrorIs(t, err, ErrUnassigned)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSeedAllTwiceProducesOneEntryPerReservation(t *testing.T) {
	repo := newMemoryRepo()
	cache := &bumpCounter{}
	source := sliceSource{
		reservation(1, staffID(1), reservations.StatusSelesai),
		reservation(2, staffID(1), reservations.StatusPending),
		reservation(3, nil, reservations.StatusPending),
		reservation(4, staffID(2), reservations.StatusBatal),
	}
	ledger := newLedger(repo, source, WithCache(cache))
	ctx := context.Background()

	first, err := ledger.SeedAll(ctx)
	require.NoError(t, err)
	require.Equal(t, SeedResult{Created: 3, Skipped: 0}, first)

	second, err := ledger.SeedAll(ctx)
	require.NoError(t, err)
	require.Equal(t, SeedResult{Created: 0, Skipped: 3}, second)

	require.Len(t, repo.entries, 3)
	perReservation := map[int64]int{}
	for _, e := range repo.entries {
		perReservation[e.ReservationID]++
	}
	require.Equal(t, map[int64]int{1: 1, 2: 1, 4: 1}, perReservation)

	cancelled, err := ledger.List(ctx, Filter{Status: StatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	require.Equal(t, int64(4), cancelled[0].ReservationID)
	require.Equal(t, 1, cache.n)
}

func TestSetStatusTransitions(t *testing.T) {
	repo := newMemoryRepo()
	metrics := &metricsSpy{}
	ledger := newLedger(repo, nil, WithMetrics(metrics))
	ctx := context.Background()
	entry, err := ledger.RecordCommission(ctx, reservation(1, staffID(1), reservations.StatusSelesai))
	require.NoError(t, err)

	paid, err := ledger.SetStatus(ctx, entry.ID, StatusPaid)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.True(t, paid.PaidAt.Equal(fixedNow))

	again, err := ledger.SetStatus(ctx, entry.ID, StatusPaid)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, again.Status)

	_, err = ledger.SetStatus(ctx, entry.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)

	reversed, err := ledger.SetStatus(ctx, entry.ID, StatusPending)
	require.NoError(t, err)
	require.Nil(t, reversed.PaidAt)

	cancelled, err := ledger.SetStatus(ctx, entry.ID, StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	require.Equal(t, []string{"paid", "pending", "cancelled"}, metrics.changes)

	_, err = ledger.SetStatus(ctx, entry.ID, Status("void"))
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = ledger.SetStatus(ctx, uuid.New(), StatusPaid)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCanTransitionMatrix(t *testing.T) {
	require.True(t, CanTransition(StatusPending, StatusPaid))
	require.True(t, CanTransition(StatusPending, StatusCancelled))
	require.True(t, CanTransition(StatusPaid, StatusPending))
	require.True(t, CanTransition(StatusCancelled, StatusPending))
	require.True(t, CanTransition(StatusPaid, StatusPaid))
	require.False(t, CanTransition(StatusPaid, StatusCancelled))
	require.False(t, CanTransition(StatusCancelled, StatusPaid))
	require.False(t, CanTransition(Status(""), StatusPaid))
}

func TestSyncReservationLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	ledger := newLedger(repo, nil)
	ctx := context.Background()

	res := reservation(10, nil, reservations.StatusPending)
	require.NoError(t, ledger.SyncReservation(ctx, res))
	require.Empty(t, repo.entries)

	res.StaffID = staffID(1)
	require.NoError(t, ledger.SyncReservation(ctx, res))
	entry, err := repo.GetByReservation(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, StatusPending, entry.Status)

	res.StaffID = staffID(2)
	require.NoError(t, ledger.SyncReservation(ctx, res))
	entry, err = repo.GetByReservation(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), entry.StaffID)

	res.Status = reservations.StatusBatal
	require.NoError(t, ledger.SyncReservation(ctx, res))
	entry, err = repo.GetByReservation(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, entry.Status)

	res.Status = reservations.StatusPending
	require.NoError(t, ledger.SyncReservation(ctx, res))
	entry, err = repo.GetByReservation(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, StatusPending, entry.Status)
	require.Len(t, repo.entries, 1)
}

func TestSyncReservationLeavesPaidEntry(t *testing.T) {
	repo := newMemoryRepo()
	ledger := newLedger(repo, nil)
	ctx := context.Background()
	res := reservation(11, staffID(1), reservations.StatusSelesai)

	entry, err := ledger.RecordCommission(ctx, res)
	require.NoError(t, err)
	_, err = ledger.SetStatus(ctx, entry.ID, StatusPaid)
	require.NoError(t, err)

	res.StaffID = staffID(3)
	require.NoError(t, ledger.SyncReservation(ctx, res))
	require.NoError(t, ledger.CancelForReservation(ctx, res.ID))

	stored, err := repo.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, stored.Status)
	require.Equal(t, int64(1), stored.StaffID)
}

func TestCancelForReservationWithoutEntry(t *testing.T) {
	ledger := newLedger(newMemoryRepo(), nil)
	require.NoError(t, ledger.CancelForReservation(context.Background(), 404))
}

// staleRepo serves the entry as it was when the wrapper was built, the way a
// concurrent request sees it after reading before another write lands.
type staleRepo struct {
	*memoryRepo
	snapshot Entry
}

func (r *staleRepo) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	cp := r.snapshot
	return &cp, nil
}

func TestSetStatusRejectsStaleRead(t *testing.T) {
	repo := newMemoryRepo()
	ctx := context.Background()
	entry, err := newLedger(repo, nil).RecordCommission(ctx, reservation(1, staffID(1), reservations.StatusSelesai))
	require.NoError(t, err)

	stale := &staleRepo{memoryRepo: repo, snapshot: *entry}
	ledger := newLedger(stale, nil)

	_, err = ledger.SetStatus(ctx, entry.ID, StatusPaid)
	require.NoError(t, err)

	_, err = ledger.SetStatus(ctx, entry.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, err, httpx.ErrConflict)

	stored, err := repo.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)
}

func TestRecordCommissionBumpsCacheOnCreate(t *testing.T) {
	cache := &bumpCounter{}
	ledger := newLedger(newMemoryRepo(), nil, WithCache(cache))
	ctx := context.Background()
	res := reservation(5, staffID(1), reservations.StatusPending)

	_, err := ledger.RecordCommission(ctx, res)
	require.NoError(t, err)
	_, err = ledger.RecordCommission(ctx, res)
	require.NoError(t, err)
	require.Equal(t, 1, cache.n)
}
