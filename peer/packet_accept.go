package peer

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/lnchand/lnchand/channeldb"
	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwire"
	"github.com/lnchand/lnchand/shachain"
)

// AcceptOpen validates an inbound PKT_OPEN against cfg and our own current
// feerate/anchor offer, grounded on original_source/daemon/packets.c's
// accept_pkt_open. On success it returns the peer's visible state to
// persist to their_visible_state, plus the revocation hashes carried in
// the packet.
func AcceptOpen(cfg *Config, ourOfferedAnchor lnwire.AnchorOffer, ourFeeRate uint64,
	msg *lnwire.OpenChannel) (*channeldb.TheirVisibleState, chainhash.Hash, chainhash.Hash, error) {

	log.Tracef("accepting OPEN_CHANNEL: %v", dumpMsg(msg))

	var zero chainhash.Hash

	if !msg.Delay.InBlocks() {
		return nil, zero, zero, protocolErrorf("delay not expressed in blocks")
	}
	if msg.Delay.Value > cfg.LocktimeMax {
		return nil, zero, zero, protocolErrorf("delay %d exceeds locktime_max %d", msg.Delay.Value, cfg.LocktimeMax)
	}
	if msg.MinDepth > cfg.AnchorConfirmsMax {
		return nil, zero, zero, protocolErrorf("min_depth %d exceeds anchor_confirms_max %d", msg.MinDepth, cfg.AnchorConfirmsMax)
	}

	lowerBound := ourFeeRate * cfg.CommitmentFeeMinPercent / 100
	upperBound := ourFeeRate * cfg.CommitmentFeeMaxPercent / 100
	if msg.InitialFeeRate < lowerBound {
		return nil, zero, zero, protocolErrorf("commitment fee rate %d below floor %d", msg.InitialFeeRate, lowerBound)
	}
	if msg.InitialFeeRate > upperBound {
		return nil, zero, zero, protocolErrorf("commitment fee rate %d above ceiling %d", msg.InitialFeeRate, upperBound)
	}

	switch msg.Anchor {
	case lnwire.AnchorOfferWillCreate, lnwire.AnchorOfferWontCreate:
	default:
		return nil, zero, zero, protocolErrorf("unknown anchor offer value %d", msg.Anchor)
	}
	if msg.Anchor == ourOfferedAnchor {
		return nil, zero, zero, protocolErrorf("both sides offer anchor, or neither does")
	}

	commitKey, err := btcec.ParsePubKey(msg.CommitKey[:])
	if err != nil {
		return nil, zero, zero, protocolErrorf("bad commit_key: %v", err)
	}
	finalKey, err := btcec.ParsePubKey(msg.FinalKey[:])
	if err != nil {
		return nil, zero, zero, protocolErrorf("bad final_key: %v", err)
	}

	theirs := &channeldb.TheirVisibleState{
		OfferedAnchor:      msg.Anchor,
		CommitKey:          commitKey,
		FinalKey:           finalKey,
		Locktime:           msg.Delay,
		MinDepth:           msg.MinDepth,
		CommitFeeRate:      msg.InitialFeeRate,
		NextRevocationHash: chainhash.Hash(msg.NextRevocationHash),
	}

	return theirs, chainhash.Hash(msg.RevocationHash), chainhash.Hash(msg.NextRevocationHash), nil
}

// AcceptAnchor validates an inbound PKT_OPEN_ANCHOR: only the side that
// did not offer to create the anchor, from a peer that did, may accept
// one (original_source's accept_pkt_anchor, asserts turned into reported
// protocol errors since the precondition is peer-driven, not an internal
// invariant).
func AcceptAnchor(ourOfferedAnchor, theirOfferedAnchor lnwire.AnchorOffer, msg *lnwire.OpenAnchorMsg) (*channeldb.Anchor, error) {
	if ourOfferedAnchor != lnwire.AnchorOfferWontCreate || theirOfferedAnchor != lnwire.AnchorOfferWillCreate {
		return nil, ErrUnexpectedPacket("OPEN_ANCHOR")
	}

	return &channeldb.Anchor{
		TxID:   chainhash.Hash(msg.TxID),
		Index:  msg.OutputIndex,
		Amount: msg.Amount,
		Ours:   false,
	}, nil
}

// AcceptOpenCommitSig extracts the funder's signature over our initial
// commitment. Field-level signature validation is the ChainAdapter's job
// (see lnwallet.ChainAdapter.VerifySig); this step just unwraps the
// packet, matching accept_pkt_open_commit_sig's narrow scope.
func AcceptOpenCommitSig(msg *lnwire.OpenCommitSig) lnwire.CompactSig {
	return msg.Sig
}

// AcceptAddHTLC validates an inbound PKT_UPDATE_ADD_HTLC, grounded on
// accept_pkt_htlc_add: amount must be positive, expiry must be in blocks,
// the remote side's outstanding HTLC count must stay under the BOLT-2 cap,
// and the id must not already be in use among HTLCs the remote side
// offered. idInUse should report whether id already names a REMOTE-owned
// HTLC.
func AcceptAddHTLC(remoteNumHTLCs uint32, idInUse func(id uint64) bool, msg *lnwire.UpdateAddHTLC) (*htlc.HTLC, error) {
	log.Tracef("accepting UPDATE_ADD_HTLC: %v", dumpMsg(msg))

	if msg.AmountMsat == 0 {
		return nil, protocolErrorf("amount_msat must be greater than 0")
	}
	if !msg.Expiry.InBlocks() {
		return nil, protocolErrorf("HTLC expiry in seconds not supported")
	}
	if remoteNumHTLCs >= maxHTLCsPerSide {
		return nil, protocolErrorf("remote side already offers %d HTLCs, at the limit", remoteNumHTLCs)
	}
	if idInUse(msg.ID) {
		return nil, protocolErrorf("HTLC id %d clashes with an existing remote-owned HTLC", msg.ID)
	}

	return htlc.NewRemoteOffer(msg.ID, msg.AmountMsat, chainhash.Hash(msg.RHash), msg.Expiry, msg.Routing), nil
}

// findCommittedHTLC is the shared guard accept_pkt_htlc_fail and
// accept_pkt_htlc_fulfill both route through in original_source
// (find_commited_htlc): the referenced HTLC must exist and must be one this
// side offered that has reached SENT_ADD_ACK_REVOCATION — fully committed
// on both sides — before the peer may fulfill or fail it.
func findCommittedHTLC(lookup func(id uint64) (*htlc.HTLC, bool), id uint64) (*htlc.HTLC, error) {
	h, ok := lookup(id)
	if !ok {
		return nil, protocolErrorf("did not find HTLC %d", id)
	}
	if h.State != htlc.SentAddAckRevocation {
		return nil, protocolErrorf("HTLC %d is in state %s, not eligible for removal", id, h.State)
	}
	return h, nil
}

// AcceptFailHTLC validates an inbound PKT_UPDATE_FAIL_HTLC.
func AcceptFailHTLC(lookup func(id uint64) (*htlc.HTLC, bool), msg *lnwire.UpdateFailHTLC) (*htlc.HTLC, error) {
	return findCommittedHTLC(lookup, msg.ID)
}

// AcceptFulfillHTLC validates an inbound PKT_UPDATE_FULFILL_HTLC: the
// preimage must actually solve the HTLC's rhash puzzle. A repeat fulfill
// for an HTLC whose preimage is already set is accepted idempotently
// (original_source's was_already_fulfilled out-param), not rejected.
func AcceptFulfillHTLC(lookup func(id uint64) (*htlc.HTLC, bool), msg *lnwire.UpdateFulfillHTLC) (h *htlc.HTLC, alreadyFulfilled bool, err error) {
	h, err = findCommittedHTLC(lookup, msg.ID)
	if err != nil {
		return nil, false, err
	}

	gotHash := chainhash.Hash(sha256.Sum256(msg.PaymentPreimage[:]))
	if gotHash != h.RHash {
		return nil, false, protocolErrorf("invalid preimage for HTLC %d", msg.ID)
	}

	if h.Preimage != nil {
		return h, true, nil
	}
	preimage := chainhash.Hash(msg.PaymentPreimage)
	h.Preimage = &preimage
	return h, false, nil
}

// AcceptCommit validates an inbound PKT_UPDATE_COMMIT's signature presence
// against whether one was expected: a signature must be present iff the
// sender's staging state carries unacknowledged changes relative to our
// last-acked commitment (spec.md §4.5).
func AcceptCommit(msg *lnwire.UpdateCommit, expectSig bool) (*lnwire.CompactSig, error) {
	switch {
	case expectSig && !msg.HasSig:
		return nil, protocolErrorf("expected a signature, got none")
	case !expectSig && msg.HasSig:
		return nil, protocolErrorf("got an unexpected signature")
	case !expectSig:
		return nil, nil
	}
	sig := msg.Sig
	return &sig, nil
}

// AcceptRevocation validates an inbound PKT_UPDATE_REVOCATION, grounded on
// accept_pkt_revocation: the preimage must hash to the previously-recorded
// prev_revocation_hash, and inserting it into store at index
// 0xFFFFFFFFFFFFFFFF-(commitNum-1) must respect the shachain's
// monotonicity/derivability rules. On success, the peer's next revocation
// hash is returned for the caller to persist.
func AcceptRevocation(store *shachain.Store, prevRevocationHash chainhash.Hash, commitNum uint64,
	msg *lnwire.UpdateRevocation) (nextRevocationHash chainhash.Hash, err error) {

	log.Tracef("accepting UPDATE_REVOCATION: %v", dumpMsg(msg))

	preimage := chainhash.Hash(msg.RevocationPreimage)
	got := chainhash.Hash(sha256.Sum256(preimage[:]))
	if got != prevRevocationHash {
		return chainhash.Hash{}, protocolErrorf("revocation preimage does not match previous commitment")
	}

	index := ^uint64(0) - (commitNum - 1)
	if err := store.AddHash(index, preimage); err != nil {
		return chainhash.Hash{}, protocolErrorf("preimage not next in shachain: %v", err)
	}

	return chainhash.Hash(msg.NextRevocationHash), nil
}

// AcceptCloseShutdown records the peer's closing output script, beginning
// or continuing cooperative-close negotiation.
func AcceptCloseShutdown(msg *lnwire.CloseShutdown) []byte {
	return msg.ScriptPubkey
}

// AcceptReconnect validates an inbound PKT_RECONNECT against this side's
// own outbound order counter: the peer's Ack must not exceed packets we
// have actually sent, and tells the caller how far into the outbound
// queue to resume delivery (spec.md §6 names the packet; its replay
// semantics follow original_source's pkt_reconnect handling).
func AcceptReconnect(ourOrderCounter uint64, msg *lnwire.Reconnect) (resumeFrom uint64, err error) {
	if msg.Ack > ourOrderCounter {
		return 0, protocolErrorf("peer acked order %d, we have only sent up to %d", msg.Ack, ourOrderCounter)
	}
	return msg.Ack, nil
}
