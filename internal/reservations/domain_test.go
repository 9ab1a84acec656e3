package reservations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestDerivedAmounts(t *testing.T) {
	cases := []struct {
		name      string
		res       Reservation
		remaining int64
		profit    int64
	}{
		{"full", Reservation{FinalPrice: 1_000_000, CustomerDeposit: 300_000, BasePrice: int64Ptr(700_000)}, 700_000, 300_000},
		{"missing base price", Reservation{FinalPrice: 1_000_000, CustomerDeposit: 1_000_000}, 0, 1_000_000},
		{"overpaid deposit", Reservation{FinalPrice: 500_000, CustomerDeposit: 600_000, BasePrice: int64Ptr(0)}, -100_000, 500_000},
		{"loss", Reservation{FinalPrice: 400_000, BasePrice: int64Ptr(450_000)}, 400_000, -50_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.remaining, tc.res.RemainingPayment())
			require.Equal(t, tc.profit, tc.res.Profit())
		})
	}
}

func TestDerivedAmountsFollowSourceFields(t *testing.T) {
	res := Reservation{FinalPrice: 1_000_000, CustomerDeposit: 200_000}
	require.Equal(t, int64(800_000), res.RemainingPayment())

	res.CustomerDeposit = 1_000_000
	res.BasePrice = int64Ptr(600_000)
	require.Equal(t, int64(0), res.RemainingPayment())
	require.Equal(t, int64(400_000), res.Profit())
}

func TestNewView(t *testing.T) {
	in := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	v := NewView(Reservation{FinalPrice: 2_500_000, CustomerDeposit: 500_000, CheckIn: in, CheckOut: in.AddDate(0, 0, 3)})
	require.Equal(t, 3, v.Nights)
	require.Equal(t, "Rp 2.000.000", v.RemainingPayment.Display)
	require.Equal(t, "Rp 2.500.000", v.FinalPriceText)
}

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(StatusPending, StatusProses))
	require.True(t, CanTransition(StatusProses, StatusSelesai))
	require.True(t, CanTransition(StatusPending, StatusBatal))
	require.True(t, CanTransition(StatusBatal, StatusPending))
	require.True(t, CanTransition(StatusSelesai, StatusSelesai))
	require.False(t, CanTransition(StatusSelesai, StatusBatal))
	require.False(t, CanTransition(StatusBatal, StatusSelesai))
	require.False(t, CanTransition(StatusPending, Status("Unknown")))
}
