package peer

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwire"
	"github.com/lnchand/lnchand/shachain"
)

var testCfg = &Config{
	LocktimeMax:             144 * 30,
	AnchorConfirmsMax:       10,
	CommitmentFeeMinPercent: 50,
	CommitmentFeeMaxPercent: 800,
}

func testPubKeyBytes(t *testing.T) [33]byte {
	t.Helper()
	_, pub := btcec.PrivKeyFromBytes([]byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
		17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32,
	})
	var out [33]byte
	copy(out[:], pub.SerializeCompressed())
	return out
}

func validOpenMsg(t *testing.T) *lnwire.OpenChannel {
	return &lnwire.OpenChannel{
		CommitKey:      testPubKeyBytes(t),
		FinalKey:       testPubKeyBytes(t),
		Delay:          lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 144},
		InitialFeeRate: 100,
		Anchor:         lnwire.AnchorOfferWillCreate,
		MinDepth:       6,
	}
}

func TestAcceptOpenHappyPath(t *testing.T) {
	msg := validOpenMsg(t)
	theirs, _, _, err := AcceptOpen(testCfg, lnwire.AnchorOfferWontCreate, 100, msg)
	require.NoError(t, err)
	require.Equal(t, lnwire.AnchorOfferWillCreate, theirs.OfferedAnchor)
	require.Equal(t, uint32(6), theirs.MinDepth)
}

func TestAcceptOpenRejectsExcessiveDelay(t *testing.T) {
	msg := validOpenMsg(t)
	msg.Delay.Value = testCfg.LocktimeMax + 1
	_, _, _, err := AcceptOpen(testCfg, lnwire.AnchorOfferWontCreate, 100, msg)
	require.Error(t, err)
}

func TestAcceptOpenRejectsExcessiveMinDepth(t *testing.T) {
	msg := validOpenMsg(t)
	msg.MinDepth = testCfg.AnchorConfirmsMax + 1
	_, _, _, err := AcceptOpen(testCfg, lnwire.AnchorOfferWontCreate, 100, msg)
	require.Error(t, err)
}

func TestAcceptOpenRejectsFeeRateOutOfBand(t *testing.T) {
	msg := validOpenMsg(t)
	msg.InitialFeeRate = 1 // below the 50% floor of ourFeeRate=100
	_, _, _, err := AcceptOpen(testCfg, lnwire.AnchorOfferWontCreate, 100, msg)
	require.Error(t, err)

	msg = validOpenMsg(t)
	msg.InitialFeeRate = 10000 // above the 800% ceiling
	_, _, _, err = AcceptOpen(testCfg, lnwire.AnchorOfferWontCreate, 100, msg)
	require.Error(t, err)
}

func TestAcceptOpenRejectsMatchingAnchorOffer(t *testing.T) {
	msg := validOpenMsg(t)
	msg.Anchor = lnwire.AnchorOfferWontCreate
	_, _, _, err := AcceptOpen(testCfg, lnwire.AnchorOfferWontCreate, 100, msg)
	require.Error(t, err)
}

func TestAcceptOpenRejectsBadPubkey(t *testing.T) {
	msg := validOpenMsg(t)
	msg.CommitKey = [33]byte{}
	_, _, _, err := AcceptOpen(testCfg, lnwire.AnchorOfferWontCreate, 100, msg)
	require.Error(t, err)
}

func TestAcceptAddHTLCHappyPath(t *testing.T) {
	msg := &lnwire.UpdateAddHTLC{
		ID:         1,
		AmountMsat: 1000,
		Expiry:     lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 100},
	}
	h, err := AcceptAddHTLC(0, func(uint64) bool { return false }, msg)
	require.NoError(t, err)
	require.Equal(t, htlc.Remote, h.Owner)
	require.Equal(t, htlc.RcvdAddHTLC, h.State)
}

func TestAcceptAddHTLCRejectsZeroAmount(t *testing.T) {
	msg := &lnwire.UpdateAddHTLC{ID: 1, Expiry: lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 100}}
	_, err := AcceptAddHTLC(0, func(uint64) bool { return false }, msg)
	require.Error(t, err)
}

func TestAcceptAddHTLCRejectsOverCap(t *testing.T) {
	msg := &lnwire.UpdateAddHTLC{
		ID:         1,
		AmountMsat: 1000,
		Expiry:     lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 100},
	}
	_, err := AcceptAddHTLC(maxHTLCsPerSide, func(uint64) bool { return false }, msg)
	require.Error(t, err)
}

func TestAcceptAddHTLCRejectsDuplicateID(t *testing.T) {
	msg := &lnwire.UpdateAddHTLC{
		ID:         7,
		AmountMsat: 1000,
		Expiry:     lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 100},
	}
	_, err := AcceptAddHTLC(0, func(id uint64) bool { return id == 7 }, msg)
	require.Error(t, err)
}

func committedLocalHTLC() *htlc.HTLC {
	h := htlc.NewLocalOffer(42, 5000, chainhash.Hash{}, lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 100}, nil)
	h.State = htlc.SentAddAckRevocation
	return h
}

func TestFindCommittedHTLCRejectsUncommitted(t *testing.T) {
	h := htlc.NewRemoteOffer(1, 1000, chainhash.Hash{}, lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 100}, nil)
	lookup := func(id uint64) (*htlc.HTLC, bool) { return h, true }
	_, err := findCommittedHTLC(lookup, 1)
	require.Error(t, err)
}

func TestFindCommittedHTLCRejectsUnknownID(t *testing.T) {
	lookup := func(id uint64) (*htlc.HTLC, bool) { return nil, false }
	_, err := findCommittedHTLC(lookup, 99)
	require.Error(t, err)
}

func TestAcceptFulfillHTLC(t *testing.T) {
	preimage := chainhash.Hash{1, 2, 3}
	rhash := chainhash.Hash(sha256.Sum256(preimage[:]))

	h := committedLocalHTLC()
	h.RHash = rhash
	lookup := func(id uint64) (*htlc.HTLC, bool) { return h, true }

	msg := &lnwire.UpdateFulfillHTLC{ID: 42, PaymentPreimage: [32]byte(preimage)}
	got, already, err := AcceptFulfillHTLC(lookup, msg)
	require.NoError(t, err)
	require.False(t, already)
	require.NotNil(t, got.Preimage)
	require.Equal(t, preimage, *got.Preimage)

	// Repeating the same fulfill is idempotent, not an error.
	got2, already2, err2 := AcceptFulfillHTLC(lookup, msg)
	require.NoError(t, err2)
	require.True(t, already2)
	require.Equal(t, preimage, *got2.Preimage)
}

func TestAcceptFulfillHTLCRejectsWrongPreimage(t *testing.T) {
	h := committedLocalHTLC()
	h.RHash = chainhash.Hash{9, 9, 9}
	lookup := func(id uint64) (*htlc.HTLC, bool) { return h, true }

	msg := &lnwire.UpdateFulfillHTLC{ID: 42, PaymentPreimage: [32]byte{1, 2, 3}}
	_, _, err := AcceptFulfillHTLC(lookup, msg)
	require.Error(t, err)
}

func TestAcceptFailHTLC(t *testing.T) {
	h := committedLocalHTLC()
	lookup := func(id uint64) (*htlc.HTLC, bool) { return h, true }
	got, err := AcceptFailHTLC(lookup, &lnwire.UpdateFailHTLC{ID: 42})
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestAcceptCommitSymmetry(t *testing.T) {
	_, err := AcceptCommit(&lnwire.UpdateCommit{HasSig: false}, true)
	require.Error(t, err)

	_, err = AcceptCommit(&lnwire.UpdateCommit{HasSig: true}, false)
	require.Error(t, err)

	sig, err := AcceptCommit(&lnwire.UpdateCommit{HasSig: true}, true)
	require.NoError(t, err)
	require.NotNil(t, sig)

	sig, err = AcceptCommit(&lnwire.UpdateCommit{HasSig: false}, false)
	require.NoError(t, err)
	require.Nil(t, sig)
}

func TestAcceptRevocation(t *testing.T) {
	store := &shachain.Store{}
	preimage := chainhash.Hash{5, 5, 5}
	prevHash := chainhash.Hash(sha256.Sum256(preimage[:]))
	nextHash := chainhash.Hash{7, 7, 7}

	msg := &lnwire.UpdateRevocation{
		RevocationPreimage: [32]byte(preimage),
		NextRevocationHash: [32]byte(nextHash),
	}

	got, err := AcceptRevocation(store, prevHash, 1, msg)
	require.NoError(t, err)
	require.Equal(t, nextHash, got)
	require.Equal(t, 1, store.NumValid())
}

func TestAcceptRevocationRejectsWrongPreimage(t *testing.T) {
	store := &shachain.Store{}
	msg := &lnwire.UpdateRevocation{
		RevocationPreimage: [32]byte{1, 2, 3},
	}
	_, err := AcceptRevocation(store, chainhash.Hash{9, 9, 9}, 1, msg)
	require.Error(t, err)
}

func TestAcceptReconnect(t *testing.T) {
	resume, err := AcceptReconnect(10, &lnwire.Reconnect{Ack: 5})
	require.NoError(t, err)
	require.Equal(t, uint64(5), resume)

	_, err = AcceptReconnect(3, &lnwire.Reconnect{Ack: 5})
	require.Error(t, err)
}
