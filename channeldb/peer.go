package channeldb

import (
	"database/sql"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwallet"
	"github.com/lnchand/lnchand/lnwire"
)

// PeerState tracks a channel's progress through opening, active use, and
// closing. Values are persisted as TEXT (spec.md §6) and are ordered so
// recovery can ask "have we gotten at least as far as OPEN_WAITING" with a
// plain comparison.
type PeerState uint8

const (
	StateInit PeerState = iota
	StateOpenWaiting
	StateOpen
	StateClosing
	StateClosed
)

var peerStateNames = map[PeerState]string{
	StateInit:        "INIT",
	StateOpenWaiting: "OPEN_WAITING",
	StateOpen:        "OPEN",
	StateClosing:     "CLOSING",
	StateClosed:      "CLOSED",
}

func (s PeerState) String() string {
	if name, ok := peerStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// PeerStateFromName is the inverse of String, used when scanning the
// persisted TEXT column back into a PeerState.
func PeerStateFromName(name string) (PeerState, error) {
	for s, n := range peerStateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("channeldb: unknown peer state %q", name)
}

// Secrets is the per-peer key material backing commitment and final
// outputs, plus the seed this node derives its own revocation hashes from
// (peer_secrets table).
type Secrets struct {
	CommitKey      *btcec.PublicKey
	FinalKey       *btcec.PublicKey
	RevocationSeed chainhash.Hash
}

// TheirVisibleState mirrors the peer's own open-channel offer, as seen on
// the wire (their_visible_state table): the parameters OUR side validated
// against accept_open's bounds, plus the next revocation hash they intend
// to reveal.
type TheirVisibleState struct {
	OfferedAnchor      lnwire.AnchorOffer
	CommitKey          *btcec.PublicKey
	FinalKey           *btcec.PublicKey
	Locktime           lnwire.Locktime
	MinDepth           uint32
	CommitFeeRate      uint64
	NextRevocationHash chainhash.Hash
}

// SaveTheirVisibleState upserts the their_visible_state row.
func SaveTheirVisibleState(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, t *TheirVisibleState) error {
	_, err := q.Exec(`INSERT INTO their_visible_state
			(peer, offered_anchor, commitkey, finalkey, locktime, mindepth,
			 commit_fee_rate, next_revocation_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(peer) DO UPDATE SET offered_anchor=excluded.offered_anchor,
			commitkey=excluded.commitkey, finalkey=excluded.finalkey,
			locktime=excluded.locktime, mindepth=excluded.mindepth,
			commit_fee_rate=excluded.commit_fee_rate,
			next_revocation_hash=excluded.next_revocation_hash`,
		id[:], t.OfferedAnchor.String(), t.CommitKey.SerializeCompressed(),
		t.FinalKey.SerializeCompressed(), t.Locktime.Value, t.MinDepth,
		t.CommitFeeRate, t.NextRevocationHash[:])
	return err
}

// Anchor records the funding outpoint and confirmation target (anchors
// table).
type Anchor struct {
	TxID     chainhash.Hash
	Index    uint32
	Amount   uint64
	OkDepth  uint32
	MinDepth uint32
	Ours     bool
}

// CommitInfo is one side's view of its own commitment transaction: the
// revocation hash it has committed to, the counterparty's signature over
// it, and (REMOTE only) the previous hash still awaiting revocation
// (spec.md §3/§4.4).
type CommitInfo struct {
	Side                lnwallet.Side
	CommitNum           uint64
	RevocationHash      chainhash.Hash
	XmitOrder           uint64
	Sig                 *lnwire.CompactSig
	PrevRevocationHash  *chainhash.Hash
	Cstate              *lnwallet.ChannelState
}

// ClosingState is the cooperative-close negotiation record (closing
// table): who sent CLOSE_SHUTDOWN first, the fee each side has proposed,
// and how many CLOSE_SIGNATURE rounds have been exchanged so far.
type ClosingState struct {
	OurFee        uint64
	TheirFee      uint64
	TheirSig      *lnwire.CompactSig
	OurScript     []byte
	TheirScript   []byte
	ShutdownOrder *uint64
	ClosingOrder  *uint64
	SigsIn        uint32
}

// Peer aggregates everything persisted for one channel counterparty:
// identity, state, secrets, the funding anchor, both commitment streams,
// the live and tombstoned HTLC table, the revocation chain received from
// them, and any in-progress close negotiation (spec.md §3's Peer).
type Peer struct {
	ID            lnwire.PeerID
	Address       string
	State         PeerState
	OfferedAnchor lnwire.AnchorOffer
	OurFeeRate    uint64

	Secrets   *Secrets
	Anchor    *Anchor
	Theirs    *TheirVisibleState
	Commits   [2]*CommitInfo // indexed by lnwallet.Side
	HTLCs     []*htlc.HTLC
	Shachain  []byte // encoded shachain.Store, see shachain.EncodedSize
	Closing   *ClosingState
	OrderCounter uint64
}

// SavePeerRow upserts the peers table row.
func SavePeerRow(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, p *Peer) error {
	_, err := q.Exec(`INSERT INTO peers (peer, state, offered_anchor, our_feerate)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(peer) DO UPDATE SET state=excluded.state,
			offered_anchor=excluded.offered_anchor,
			our_feerate=excluded.our_feerate`,
		p.ID[:], p.State.String(), p.OfferedAnchor.String(), p.OurFeeRate)
	return err
}

// LoadPeerRow reads just the peers table row for id.
func LoadPeerRow(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID) (*Peer, error) {
	var stateName, anchorName string
	var feeRate uint64
	row := q.QueryRow(`SELECT state, offered_anchor, our_feerate FROM peers WHERE peer = ?`, id[:])
	if err := row.Scan(&stateName, &anchorName, &feeRate); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPeerNotFound
		}
		return nil, err
	}

	state, err := PeerStateFromName(stateName)
	if err != nil {
		return nil, err
	}

	var offered lnwire.AnchorOffer
	switch anchorName {
	case "will-create-anchor":
		offered = lnwire.AnchorOfferWillCreate
	case "wont-create-anchor":
		offered = lnwire.AnchorOfferWontCreate
	default:
		return nil, fmt.Errorf("channeldb: unknown offered_anchor value %q", anchorName)
	}

	return &Peer{
		ID:            id,
		State:         state,
		OfferedAnchor: offered,
		OurFeeRate:    feeRate,
	}, nil
}

// SaveAddress upserts the peer_address row.
func SaveAddress(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, addr string) error {
	_, err := q.Exec(`INSERT INTO peer_address (peer, addr) VALUES (?, ?)
		ON CONFLICT(peer) DO UPDATE SET addr=excluded.addr`, id[:], addr)
	return err
}

// LoadAddress reads the peer_address row for id.
func LoadAddress(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID) (string, error) {
	var addr string
	row := q.QueryRow(`SELECT addr FROM peer_address WHERE peer = ?`, id[:])
	if err := row.Scan(&addr); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrPeerNotFound
		}
		return "", err
	}
	return addr, nil
}

// SaveSecrets upserts the peer_secrets row.
func SaveSecrets(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, s *Secrets) error {
	_, err := q.Exec(`INSERT INTO peer_secrets (peer, commitkey, finalkey, revocation_seed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(peer) DO UPDATE SET commitkey=excluded.commitkey,
			finalkey=excluded.finalkey, revocation_seed=excluded.revocation_seed`,
		id[:], s.CommitKey.SerializeCompressed(), s.FinalKey.SerializeCompressed(), s.RevocationSeed[:])
	return err
}

// LoadSecrets reads the peer_secrets row for id.
func LoadSecrets(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID) (*Secrets, error) {
	var commitKeyBytes, finalKeyBytes, seedBytes []byte
	row := q.QueryRow(`SELECT commitkey, finalkey, revocation_seed FROM peer_secrets WHERE peer = ?`, id[:])
	if err := row.Scan(&commitKeyBytes, &finalKeyBytes, &seedBytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPeerNotFound
		}
		return nil, err
	}

	commitKey, err := btcec.ParsePubKey(commitKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("channeldb: bad commitkey: %w", err)
	}
	finalKey, err := btcec.ParsePubKey(finalKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("channeldb: bad finalkey: %w", err)
	}

	var seed chainhash.Hash
	copy(seed[:], seedBytes)

	return &Secrets{CommitKey: commitKey, FinalKey: finalKey, RevocationSeed: seed}, nil
}

// SaveAnchor upserts the anchors row.
func SaveAnchor(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, a *Anchor) error {
	_, err := q.Exec(`INSERT INTO anchors (peer, txid, idx, amount, ok_depth, min_depth, ours)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(peer) DO UPDATE SET txid=excluded.txid, idx=excluded.idx,
			amount=excluded.amount, ok_depth=excluded.ok_depth,
			min_depth=excluded.min_depth, ours=excluded.ours`,
		id[:], a.TxID[:], a.Index, a.Amount, a.OkDepth, a.MinDepth, a.Ours)
	return err
}

// LoadAnchor reads the anchors row for id.
func LoadAnchor(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID) (*Anchor, error) {
	var a Anchor
	var txidBytes []byte
	var ours bool
	row := q.QueryRow(`SELECT txid, idx, amount, ok_depth, min_depth, ours FROM anchors WHERE peer = ?`, id[:])
	if err := row.Scan(&txidBytes, &a.Index, &a.Amount, &a.OkDepth, &a.MinDepth, &ours); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPeerNotFound
		}
		return nil, err
	}
	copy(a.TxID[:], txidBytes)
	a.Ours = ours
	return &a, nil
}

// SaveCommitInfo upserts one side's commit_info row.
func SaveCommitInfo(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, ci *CommitInfo) error {
	var sigBytes []byte
	if ci.Sig != nil {
		sigBytes = ci.Sig[:]
	}
	var prevHashBytes []byte
	if ci.PrevRevocationHash != nil {
		prevHashBytes = ci.PrevRevocationHash[:]
	}

	_, err := q.Exec(`INSERT INTO commit_info
			(peer, side, commit_num, revocation_hash, xmit_order, sig, prev_revocation_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(peer, side) DO UPDATE SET commit_num=excluded.commit_num,
			revocation_hash=excluded.revocation_hash, xmit_order=excluded.xmit_order,
			sig=excluded.sig, prev_revocation_hash=excluded.prev_revocation_hash`,
		id[:], ci.Side.String(), ci.CommitNum, ci.RevocationHash[:], ci.XmitOrder,
		sigBytes, prevHashBytes)
	return err
}

// LoadCommitInfo reads one side's commit_info row.
func LoadCommitInfo(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID, side lnwallet.Side) (*CommitInfo, error) {
	var commitNum, xmitOrder uint64
	var revHashBytes []byte
	var sigBytes, prevHashBytes []byte

	row := q.QueryRow(`SELECT commit_num, revocation_hash, xmit_order, sig, prev_revocation_hash
		FROM commit_info WHERE peer = ? AND side = ?`, id[:], side.String())
	if err := row.Scan(&commitNum, &revHashBytes, &xmitOrder, &sigBytes, &prevHashBytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCommitInfoMissing
		}
		return nil, err
	}

	ci := &CommitInfo{
		Side:      side,
		CommitNum: commitNum,
		XmitOrder: xmitOrder,
	}
	copy(ci.RevocationHash[:], revHashBytes)
	if sigBytes != nil {
		var sig lnwire.CompactSig
		copy(sig[:], sigBytes)
		ci.Sig = &sig
	}
	if prevHashBytes != nil {
		var h chainhash.Hash
		copy(h[:], prevHashBytes)
		ci.PrevRevocationHash = &h
	}
	return ci, nil
}

// SaveHTLC upserts one htlcs row.
func SaveHTLC(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, h *htlc.HTLC) error {
	var preimageBytes []byte
	if h.Preimage != nil {
		preimageBytes = h.Preimage[:]
	}
	var srcPeerBytes []byte
	var srcID *uint64
	if h.Src != nil {
		srcPeerBytes = h.Src.PeerID[:]
		srcID = &h.Src.ID
	}

	_, err := q.Exec(`INSERT INTO htlcs
			(peer, id, owner, state, msatoshis, expiry, rhash, r, routing, src_peer, src_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(peer, owner, id) DO UPDATE SET state=excluded.state, r=excluded.r`,
		id[:], h.ID, h.Owner.String(), h.State.String(), uint64(h.AmountMsat), h.Expiry.Value,
		h.RHash[:], preimageBytes, h.Routing, srcPeerBytes, srcID)
	return err
}

// LoadHTLCs reads every htlcs row for id, ordered by id ascending (the
// order recovery replays them in, spec.md §4.6).
func LoadHTLCs(q interface {
	Query(string, ...interface{}) (*sql.Rows, error)
}, id lnwire.PeerID) ([]*htlc.HTLC, error) {
	rows, err := q.Query(`SELECT id, owner, state, msatoshis, expiry, rhash, r, routing, src_peer, src_id
		FROM htlcs WHERE peer = ? ORDER BY id ASC`, id[:])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*htlc.HTLC
	for rows.Next() {
		var hid uint64
		var ownerName, stateName string
		var amountMsat uint64
		var expiry uint32
		var rhashBytes, preimageBytes, routing, srcPeerBytes []byte
		var srcID *uint64

		if err := rows.Scan(&hid, &ownerName, &stateName, &amountMsat, &expiry, &rhashBytes,
			&preimageBytes, &routing, &srcPeerBytes, &srcID); err != nil {
			return nil, err
		}

		owner, err := htlc.OwnerFromName(ownerName)
		if err != nil {
			return nil, err
		}
		state, err := htlc.StateFromName(stateName)
		if err != nil {
			return nil, err
		}

		h := &htlc.HTLC{
			ID:         hid,
			Owner:      owner,
			AmountMsat: lnwire.MilliSatoshi(amountMsat),
			Expiry:     lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: expiry},
			Routing:    routing,
			State:      state,
		}
		copy(h.RHash[:], rhashBytes)
		if preimageBytes != nil {
			var p chainhash.Hash
			copy(p[:], preimageBytes)
			h.Preimage = &p
		}
		if srcPeerBytes != nil && srcID != nil {
			var peerID lnwire.PeerID
			copy(peerID[:], srcPeerBytes)
			h.Src = &htlc.Ref{PeerID: peerID, ID: *srcID}
		}

		out = append(out, h)
	}
	return out, rows.Err()
}

// SaveShachain upserts the peer's encoded shachain row. b must be exactly
// shachain.EncodedSize bytes.
func SaveShachain(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, b []byte) error {
	_, err := q.Exec(`INSERT INTO shachain (peer, shachain) VALUES (?, ?)
		ON CONFLICT(peer) DO UPDATE SET shachain=excluded.shachain`, id[:], b)
	return err
}

// LoadShachain reads the peer's encoded shachain row.
func LoadShachain(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID) ([]byte, error) {
	var b []byte
	row := q.QueryRow(`SELECT shachain FROM shachain WHERE peer = ?`, id[:])
	if err := row.Scan(&b); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrShachainNotFound
		}
		return nil, err
	}
	return b, nil
}

// SaveClosing upserts the closing negotiation row.
func SaveClosing(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, c *ClosingState) error {
	var theirSigBytes []byte
	if c.TheirSig != nil {
		theirSigBytes = c.TheirSig[:]
	}
	_, err := q.Exec(`INSERT INTO closing
			(peer, our_fee, their_fee, their_sig, our_script, their_script,
			 shutdown_order, closing_order, sigs_in)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(peer) DO UPDATE SET our_fee=excluded.our_fee,
			their_fee=excluded.their_fee, their_sig=excluded.their_sig,
			our_script=excluded.our_script, their_script=excluded.their_script,
			shutdown_order=excluded.shutdown_order, closing_order=excluded.closing_order,
			sigs_in=excluded.sigs_in`,
		id[:], c.OurFee, c.TheirFee, theirSigBytes, c.OurScript, c.TheirScript,
		c.ShutdownOrder, c.ClosingOrder, c.SigsIn)
	return err
}

// LoadClosing reads the closing negotiation row for id.
func LoadClosing(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}, id lnwire.PeerID) (*ClosingState, error) {
	var c ClosingState
	var theirSigBytes []byte
	row := q.QueryRow(`SELECT our_fee, their_fee, their_sig, our_script, their_script,
		shutdown_order, closing_order, sigs_in FROM closing WHERE peer = ?`, id[:])
	if err := row.Scan(&c.OurFee, &c.TheirFee, &theirSigBytes, &c.OurScript, &c.TheirScript,
		&c.ShutdownOrder, &c.ClosingOrder, &c.SigsIn); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClosingNotFound
		}
		return nil, err
	}
	if theirSigBytes != nil {
		var sig lnwire.CompactSig
		copy(sig[:], theirSigBytes)
		c.TheirSig = &sig
	}
	return &c, nil
}

// SaveWalletKey replaces this node's own signing key (the wallet table's
// single row). It is not keyed by peer — the same key backs every channel
// this node holds — and not part of LoadPeer's replay order (spec.md
// §4.6 scopes recovery to the per-peer tables); an external signer reads
// it once at startup rather than on every peer's replay.
func SaveWalletKey(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, privKey *btcec.PrivateKey) error {
	if _, err := q.Exec(`DELETE FROM wallet`); err != nil {
		return err
	}
	_, err := q.Exec(`INSERT INTO wallet (privkey) VALUES (?)`, privKey.Serialize())
	return err
}

// LoadWalletKey reads this node's signing key.
func LoadWalletKey(q interface {
	QueryRow(string, ...interface{}) *sql.Row
}) (*btcec.PrivateKey, error) {
	var keyBytes []byte
	row := q.QueryRow(`SELECT privkey FROM wallet`)
	if err := row.Scan(&keyBytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrWalletKeyNotFound
		}
		return nil, err
	}
	priv, _ := btcec.PrivKeyFromBytes(keyBytes)
	return priv, nil
}

// SaveTheirCommitment appends a (txid, commit_num) entry to their_commitments:
// the record of every commitment transaction the peer has held a valid
// signature over, kept after it is superseded and revoked so a later
// on-chain sighting of txid can still be matched back to the commit_num
// that would let a breach remedy spend it. Unlike the rest of this file's
// Save* functions this is insert-only, not an upsert — spec.md §4.6 lists
// no primary key for the table, since the same peer legitimately
// accumulates one row per commitment over the channel's life.
func SaveTheirCommitment(q interface {
	Exec(string, ...interface{}) (sql.Result, error)
}, id lnwire.PeerID, txid chainhash.Hash, commitNum uint64) error {
	_, err := q.Exec(`INSERT INTO their_commitments (peer, txid, commit_num) VALUES (?, ?, ?)`,
		id[:], txid[:], commitNum)
	return err
}

// TheirCommitment is one row of the peer's commitment-transaction history.
type TheirCommitment struct {
	TxID      chainhash.Hash
	CommitNum uint64
}

// LoadTheirCommitments reads every their_commitments row for id, ordered by
// commit_num ascending (oldest first).
func LoadTheirCommitments(q interface {
	Query(string, ...interface{}) (*sql.Rows, error)
}, id lnwire.PeerID) ([]TheirCommitment, error) {
	rows, err := q.Query(`SELECT txid, commit_num FROM their_commitments
		WHERE peer = ? ORDER BY commit_num ASC`, id[:])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TheirCommitment
	for rows.Next() {
		var txidBytes []byte
		var c TheirCommitment
		if err := rows.Scan(&txidBytes, &c.CommitNum); err != nil {
			return nil, err
		}
		copy(c.TxID[:], txidBytes)
		out = append(out, c)
	}
	return out, rows.Err()
}
