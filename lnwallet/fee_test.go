package lnwallet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFeeByFeerateRounding checks P7: fee_by_feerate is always even and
// equals 2*floor(bytes*rate/2000).
func TestFeeByFeerateRounding(t *testing.T) {
	cases := []struct {
		bytes, rate, want uint64
	}{
		{338, 20000, 6760},
		{370, 20000, 7400},
		{1, 1, 0},
		{1001, 3000, 3002},
	}
	for _, c := range cases {
		got := feeByFeerate(c.bytes, c.rate)
		require.Equal(t, c.want, got)
		require.Zero(t, got%2, "fee must round to an even satoshi count")
	}
}

func TestCommitmentBytes(t *testing.T) {
	require.Equal(t, uint32(338), commitmentBytes(0))
	require.Equal(t, uint32(370), commitmentBytes(1))
	require.Equal(t, uint32(338+32*5), commitmentBytes(5))
}

func TestIsDust(t *testing.T) {
	require.True(t, isDust(500, 546))
	require.False(t, isDust(546_000, 546))
	require.False(t, isDust(1_000_000, 546))
}
