package channeldb

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwallet"
	"github.com/lnchand/lnchand/lnwire"
)

// TestReplayLedger checks P5's other half: ReplayLedger must rebuild the
// exact lnwallet.ChannelState a live AddHTLC/FailHTLC/FulfillHTLC sequence
// would have produced, purely from the HTLCs' persisted terminal/live
// states (spec.md §8, §4.6's recovery-order description).
func TestReplayLedger(t *testing.T) {
	const anchorSat = 1_000_000
	const feeRate = 100
	const dustLimitSat = 100

	expiry := lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 500}
	preimage := chainhash.Hash{0xaa}

	fulfilled := htlc.NewLocalOffer(0, 60_000_000, chainhash.Hash{1}, expiry, nil)
	fulfilled.State = htlc.RcvdRemoveAckRevocation
	fulfilled.Preimage = &preimage

	failed := htlc.NewRemoteOffer(1, 40_000_000, chainhash.Hash{2}, expiry, nil)
	failed.State = htlc.SentRemoveAckRevocation

	live := htlc.NewRemoteOffer(2, 25_000_000, chainhash.Hash{3}, expiry, nil)
	live.State = htlc.RcvdAddAckRevocation

	p := &Peer{
		Anchor:     &Anchor{Amount: anchorSat},
		OurFeeRate: feeRate,
		HTLCs:      []*htlc.HTLC{fulfilled, failed, live},
	}

	ours, theirs, err := ReplayLedger(p, lnwallet.Ours, dustLimitSat)
	require.NoError(t, err)

	for _, cs := range []*lnwallet.ChannelState{ours, theirs} {
		require.EqualValues(t, 1, cs.NumNonDust)
		require.EqualValues(t, 1, cs.Side[lnwallet.Theirs].NumHTLCs)
		require.EqualValues(t, 0, cs.Side[lnwallet.Ours].NumHTLCs)

		total := uint64(cs.Side[lnwallet.Ours].PayMsat) + uint64(cs.Side[lnwallet.Ours].FeeMsat) +
			uint64(cs.Side[lnwallet.Theirs].PayMsat) + uint64(cs.Side[lnwallet.Theirs].FeeMsat) +
			uint64(live.AmountMsat)
		require.Equal(t, uint64(anchorSat*1000), total)
	}
}

// TestReplayLedgerRejectsUnaffordable checks ReplayLedger surfaces a
// corrupt/overcommitted ledger as an error instead of silently producing a
// ChannelState that violates the balance invariant.
func TestReplayLedgerRejectsUnaffordable(t *testing.T) {
	expiry := lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 500}

	tooBig := htlc.NewLocalOffer(0, 2_000_000_000, chainhash.Hash{9}, expiry, nil)
	tooBig.State = htlc.SentAddAckRevocation

	p := &Peer{
		Anchor:     &Anchor{Amount: 1_000_000},
		OurFeeRate: 100,
		HTLCs:      []*htlc.HTLC{tooBig},
	}

	_, _, err := ReplayLedger(p, lnwallet.Ours, 100)
	require.Error(t, err)
}
