package channeldb

import (
	"database/sql"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwallet"
	"github.com/lnchand/lnchand/lnwire"
	"github.com/lnchand/lnchand/shachain"
)

func parsePubKeyColumn(b []byte) (*btcec.PublicKey, error) {
	key, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("channeldb: bad pubkey column: %w", err)
	}
	return key, nil
}

// LoadPeer reads every table for id and assembles a Peer, in the order
// spec.md §4.6 prescribes: address, secrets, closing, then — once the
// channel has reached at least OPEN_WAITING — anchor, their-visible-state,
// shachain, commit_info (both sides), and the HTLC table in id order.
// Rows that legitimately don't exist yet (closing, anchor) are left nil
// rather than treated as an error.
func LoadPeer(db *sql.DB, id lnwire.PeerID) (*Peer, error) {
	p, err := LoadPeerRow(db, id)
	if err != nil {
		return nil, err
	}

	addr, err := LoadAddress(db, id)
	switch err {
	case nil:
		p.Address = addr
	case ErrPeerNotFound:
	default:
		return nil, fmt.Errorf("channeldb: loading address for %s: %w", id, err)
	}

	secrets, err := LoadSecrets(db, id)
	switch err {
	case nil:
		p.Secrets = secrets
	case ErrPeerNotFound:
	default:
		return nil, fmt.Errorf("channeldb: loading secrets for %s: %w", id, err)
	}

	closing, err := LoadClosing(db, id)
	switch err {
	case nil:
		p.Closing = closing
	case ErrClosingNotFound:
	default:
		return nil, fmt.Errorf("channeldb: loading closing state for %s: %w", id, err)
	}

	if p.State < StateOpenWaiting {
		return p, nil
	}

	anchor, err := LoadAnchor(db, id)
	switch err {
	case nil:
		p.Anchor = anchor
	case ErrPeerNotFound:
	default:
		return nil, fmt.Errorf("channeldb: loading anchor for %s: %w", id, err)
	}

	theirs, err := LoadTheirVisibleState(db, id)
	switch err {
	case nil:
		p.Theirs = theirs
	case ErrPeerNotFound:
	default:
		return nil, fmt.Errorf("channeldb: loading their_visible_state for %s: %w", id, err)
	}

	shachainBytes, err := LoadShachain(db, id)
	switch err {
	case nil:
		p.Shachain = shachainBytes
	case ErrShachainNotFound:
	default:
		return nil, fmt.Errorf("channeldb: loading shachain for %s: %w", id, err)
	}

	for _, side := range [2]lnwallet.Side{lnwallet.Ours, lnwallet.Theirs} {
		ci, err := LoadCommitInfo(db, id, side)
		if err != nil {
			return nil, fmt.Errorf("channeldb: loading commit_info(%s) for %s: %w", side, id, err)
		}
		p.Commits[side] = ci
	}

	htlcs, err := LoadHTLCs(db, id)
	if err != nil {
		return nil, fmt.Errorf("channeldb: loading htlcs for %s: %w", id, err)
	}
	p.HTLCs = htlcs

	return p, nil
}

// LoadAllPeerIDs lists every peer row's id, for an application to iterate
// over at startup.
func LoadAllPeerIDs(db *sql.DB) ([]lnwire.PeerID, error) {
	rows, err := db.Query(`SELECT peer FROM peers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lnwire.PeerID
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var id lnwire.PeerID
		copy(id[:], raw)
		out = append(out, id)
	}
	return out, rows.Err()
}

// ReplayLedger rebuilds the two committed ChannelState snapshots a loaded
// Peer's HTLC table implies: the one the local side's last-signed
// commitment reflects, and the one the remote side's does. Each HTLC is
// replayed in the id order it was loaded, adding it to a side's cstate iff
// that side's WAS_COMMITTED flag is set, then immediately fulfilling or
// failing it if the HTLC has also reached its terminal state — exactly
// the spec.md §4.6 recovery recipe ("HTLCs are replayed in id order ...
// using the WAS_COMMITTED flags to determine whether to apply add, then
// fulfill/fail").
func ReplayLedger(p *Peer, funder lnwallet.Side, dustLimitSat uint64) (ours, theirs *lnwallet.ChannelState, err error) {
	ours, err = lnwallet.Initial(p.Anchor.Amount, p.OurFeeRate, funder)
	if err != nil {
		return nil, nil, fmt.Errorf("channeldb: replay: %w", err)
	}
	theirs, err = lnwallet.Initial(p.Anchor.Amount, p.OurFeeRate, funder)
	if err != nil {
		return nil, nil, fmt.Errorf("channeldb: replay: %w", err)
	}

	for _, h := range p.HTLCs {
		if h.State.LocalWasCommitted() {
			if err := replayOne(ours, h, dustLimitSat); err != nil {
				return nil, nil, fmt.Errorf("channeldb: replay local htlc %d: %w", h.ID, err)
			}
		}
		if h.State.RemoteWasCommitted() {
			if err := replayOne(theirs, h, dustLimitSat); err != nil {
				return nil, nil, fmt.Errorf("channeldb: replay remote htlc %d: %w", h.ID, err)
			}
		}
	}

	return ours, theirs, nil
}

func replayOne(cs *lnwallet.ChannelState, h *htlc.HTLC, dustLimitSat uint64) error {
	if !cs.AddHTLC(h, dustLimitSat) {
		return fmt.Errorf("htlc %d no longer affordable on replay (invariant violation)", h.ID)
	}
	if !h.State.Terminal() {
		return nil
	}
	if h.Preimage != nil {
		cs.FulfillHTLC(h, dustLimitSat)
	} else {
		cs.FailHTLC(h, dustLimitSat)
	}
	return nil
}

// ResolveSrcLinks is recovery's second pass (spec.md §4.6): for every HTLC
// with a non-nil Src, confirm the referenced upstream HTLC actually exists
// among the peers loaded in this process. all must already have their
// HTLCs populated (as LoadPeer leaves them). A dangling reference is an
// invariant violation, not a recoverable condition — the on-disk state no
// longer reflects a coherent forwarding graph.
func ResolveSrcLinks(all map[lnwire.PeerID]*Peer) error {
	for _, p := range all {
		for _, h := range p.HTLCs {
			if h.Src == nil {
				continue
			}
			srcPeer, ok := all[h.Src.PeerID]
			if !ok {
				return fmt.Errorf("channeldb: htlc %d references unknown src peer %s", h.ID, h.Src.PeerID)
			}
			if !hasHTLC(srcPeer, h.Src.ID) {
				return fmt.Errorf("channeldb: htlc %d references missing src htlc %d on peer %s",
					h.ID, h.Src.ID, h.Src.PeerID)
			}
		}
	}
	return nil
}

func hasHTLC(p *Peer, id uint64) bool {
	for _, h := range p.HTLCs {
		if h.ID == id {
			return true
		}
	}
	return false
}

// LoadTheirVisibleState reads the their_visible_state row for id.
func LoadTheirVisibleState(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID) (*TheirVisibleState, error) {
	var offeredAnchor string
	var commitKeyBytes, finalKeyBytes, nextRevHashBytes []byte
	var locktime, minDepth uint32
	var feeRate uint64

	row := q.QueryRow(`SELECT offered_anchor, commitkey, finalkey, locktime, mindepth,
		commit_fee_rate, next_revocation_hash FROM their_visible_state WHERE peer = ?`, id[:])
	if err := row.Scan(&offeredAnchor, &commitKeyBytes, &finalKeyBytes, &locktime,
		&minDepth, &feeRate, &nextRevHashBytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPeerNotFound
		}
		return nil, err
	}

	tvs := &TheirVisibleState{
		Locktime:      lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: locktime},
		MinDepth:      minDepth,
		CommitFeeRate: feeRate,
	}
	copy(tvs.NextRevocationHash[:], nextRevHashBytes)

	switch offeredAnchor {
	case "will-create-anchor":
		tvs.OfferedAnchor = lnwire.AnchorOfferWillCreate
	case "wont-create-anchor":
		tvs.OfferedAnchor = lnwire.AnchorOfferWontCreate
	default:
		return nil, fmt.Errorf("channeldb: unknown offered_anchor value %q", offeredAnchor)
	}

	commitKey, err := parsePubKeyColumn(commitKeyBytes)
	if err != nil {
		return nil, err
	}
	finalKey, err := parsePubKeyColumn(finalKeyBytes)
	if err != nil {
		return nil, err
	}
	tvs.CommitKey = commitKey
	tvs.FinalKey = finalKey

	return tvs, nil
}

// DecodeShachain parses a peer's stored shachain bytes, or returns an
// empty Store if none has been persisted yet (no revocation received
// so far).
func DecodeShachain(b []byte) (*shachain.Store, error) {
	if b == nil {
		return &shachain.Store{}, nil
	}
	return shachain.FromBytes(b)
}
