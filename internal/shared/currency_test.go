package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatIDR(t *testing.T) {
	cases := map[int64]string{
		0:          "Rp 0",
		60:         "Rp 60",
		1000:       "Rp 1.000",
		50000:      "Rp 50.000",
		1000000:    "Rp 1.000.000",
		1234567890: "Rp 1.234.567.890",
		-60:        "-Rp 60",
		-1500000:   "-Rp 1.500.000",
	}
	for amount, want := range cases {
		require.Equal(t, want, FormatIDR(amount), amount)
	}
}

func TestFormatIDRMinInt(t *testing.T) {
	require.Equal(t, "-Rp 9.223.372.036.854.775.808", FormatIDR(math.MinInt64))
}

func TestNewMoney(t *testing.T) {
	m := NewMoney(2500000)
	require.Equal(t, int64(2500000), m.Amount)
	require.Equal(t, "Rp 2.500.000", m.Display)
}
