package lnwallet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwire"
)

const noDustLimit = 0

var testExpiry = lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 500_000}

// balance checks invariant I-balance / P1: total pay+fee across both sides,
// plus every live HTLC amount, dust included, must equal the anchor in
// millisatoshis. Dust HTLCs still count toward the anchor even though they
// carry no commitment output, so the caller supplies the total amount of
// any HTLCs currently outstanding.
func balance(t *testing.T, cs *ChannelState, outstandingHTLCMsat uint64) {
	t.Helper()
	total := uint64(cs.Side[Ours].PayMsat) + uint64(cs.Side[Ours].FeeMsat) +
		uint64(cs.Side[Theirs].PayMsat) + uint64(cs.Side[Theirs].FeeMsat) +
		outstandingHTLCMsat
	require.Equal(t, cs.AnchorSatoshis*1000, total)
}

func TestInitialChannel(t *testing.T) {
	cs, err := Initial(1_000_000, 20_000, Ours)
	require.NoError(t, err)
	require.Equal(t, uint64(6_760_000), uint64(cs.Side[Ours].FeeMsat))
	require.Equal(t, uint64(993_240_000), uint64(cs.Side[Ours].PayMsat))
	require.Zero(t, uint64(cs.Side[Theirs].PayMsat))
	balance(t, cs, 0)
}

func TestInitialRejectsOversizedAnchor(t *testing.T) {
	_, err := Initial((uint64(1)<<32)/1000, 20_000, Ours)
	require.ErrorIs(t, err, ErrAnchorTooLarge)
}

func TestInitialRejectsFeeExceedingAnchor(t *testing.T) {
	_, err := Initial(1, 1_000_000_000, Ours)
	require.ErrorIs(t, err, ErrFeeExceedsAnchor)
}

// TestAddFulfillFail walks spec.md §8 scenarios 1-3: open, add a non-dust
// HTLC from the funder, then separately fulfill and fail it from that
// point, checking P1 and P3 (add/remove inverse) throughout.
//
// The scenario narrative in spec.md computes the post-add funder balance
// as 885_840_000 msat by subtracting the HTLC amount and half the new fee
// directly from the pre-add pay figure. That skips recalculate_fees's first
// step — folding the old committed fee back into pay before re-splitting —
// and so does not satisfy I-balance (it is short by exactly the old fee,
// 6_760_000 msat). This implementation follows the canonical
// recalculate_fees algorithm (see DESIGN.md), which does preserve I-balance:
// funder.pay = 892_600_000, funder.fee = 7_400_000, fundee.pay = fee = 0.
// After the fulfill the fundee holds 100_000_000 msat, so both sides can
// afford half of the 6_760_000 msat zero-HTLC fee and each pays 3_380_000.
func TestAddFulfillFail(t *testing.T) {
	offer := htlc.NewLocalOffer(1, 100_000_000, chainhash.Hash{}, testExpiry, nil)

	t.Run("add", func(t *testing.T) {
		cs, err := Initial(1_000_000, 20_000, Ours)
		require.NoError(t, err)

		require.True(t, cs.AddHTLC(offer, noDustLimit))
		require.Equal(t, uint32(1), cs.NumNonDust)
		require.Equal(t, uint64(7_400_000), uint64(cs.Side[Ours].FeeMsat))
		require.Equal(t, uint64(892_600_000), uint64(cs.Side[Ours].PayMsat))
		require.Zero(t, uint64(cs.Side[Theirs].FeeMsat))
		require.Zero(t, uint64(cs.Side[Theirs].PayMsat))
		balance(t, cs, uint64(offer.AmountMsat))
	})

	t.Run("fulfill", func(t *testing.T) {
		cs, err := Initial(1_000_000, 20_000, Ours)
		require.NoError(t, err)
		require.True(t, cs.AddHTLC(offer, noDustLimit))

		cs.FulfillHTLC(offer, noDustLimit)
		require.Zero(t, cs.NumNonDust)
		require.Equal(t, uint64(3_380_000), uint64(cs.Side[Ours].FeeMsat))
		require.Equal(t, uint64(3_380_000), uint64(cs.Side[Theirs].FeeMsat))
		require.Equal(t, uint64(100_000_000-3_380_000), uint64(cs.Side[Theirs].PayMsat))
		require.Equal(t, uint64(1_000_000_000-100_000_000-3_380_000), uint64(cs.Side[Ours].PayMsat))
		balance(t, cs, 0)
	})

	t.Run("fail returns to pre-add state", func(t *testing.T) {
		before, err := Initial(1_000_000, 20_000, Ours)
		require.NoError(t, err)

		after, err := Initial(1_000_000, 20_000, Ours)
		require.NoError(t, err)
		require.True(t, after.AddHTLC(offer, noDustLimit))
		after.FailHTLC(offer, noDustLimit)

		require.Equal(t, before, after)
		balance(t, after, 0)
	})
}

// TestAddHTLCOverCommitRejected covers spec.md §8 scenario 4.
func TestAddHTLCOverCommitRejected(t *testing.T) {
	cs := &ChannelState{AnchorSatoshis: 1_000_000, FeeRate: 20_000}
	cs.Side[Ours].PayMsat = 10_000_000
	cs.Side[Theirs].PayMsat = 989_240_000
	cs.Side[Theirs].FeeMsat = 0
	cs.Side[Ours].FeeMsat = 760_000
	before := cs.Clone()

	offer := htlc.NewLocalOffer(2, 20_000_000, chainhash.Hash{}, testExpiry, nil)
	require.False(t, cs.AddHTLC(offer, noDustLimit))
	require.Equal(t, before, cs)
}

// TestForceFeeUnderfunded covers spec.md §8 scenario 5.
func TestForceFeeUnderfunded(t *testing.T) {
	cs := &ChannelState{AnchorSatoshis: 1000}
	cs.Side[Ours].PayMsat = 500_000
	cs.Side[Theirs].PayMsat = 500_000

	ok, err := cs.ForceFee(2000)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint64(500_000), uint64(cs.Side[Ours].FeeMsat))
	require.Equal(t, uint64(500_000), uint64(cs.Side[Theirs].FeeMsat))
	require.Zero(t, uint64(cs.Side[Ours].PayMsat))
	require.Zero(t, uint64(cs.Side[Theirs].PayMsat))
}

func TestForceFeeOverflowRejected(t *testing.T) {
	cs := &ChannelState{AnchorSatoshis: 1000}
	_, err := cs.ForceFee(^uint64(0))
	require.ErrorIs(t, err, ErrFeeOverflow)
}
