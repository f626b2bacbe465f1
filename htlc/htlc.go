// Package htlc implements the hash-time-locked-contract state machine
// shared by both sides of a payment channel: the HTLC record itself, the
// 20-state lattice each one moves through from offer to settlement, and the
// derived flags that tell the ledger and the durable store which
// commitment(s) an HTLC currently lives in.
package htlc

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/lnchand/lnchand/lnwire"
)

// Owner identifies which side of the channel offered an HTLC. It never
// changes for the lifetime of the HTLC and determines which half of the
// state lattice (SENT_ADD_* / RCVD_ADD_*) it starts on.
type Owner uint8

const (
	// Local is the side running this process.
	Local Owner = iota
	// Remote is the channel counterparty.
	Remote
)

func (o Owner) String() string {
	if o == Local {
		return "LOCAL"
	}
	return "REMOTE"
}

// Other returns the opposite owner.
func (o Owner) Other() Owner {
	if o == Local {
		return Remote
	}
	return Local
}

// OwnerFromName reverses String, for scanning a persisted owner column.
func OwnerFromName(name string) (Owner, error) {
	switch name {
	case "LOCAL":
		return Local, nil
	case "REMOTE":
		return Remote, nil
	default:
		return 0, fmt.Errorf("htlc: unknown owner name %q", name)
	}
}

// Ref is a weak reference to an HTLC in a peer's table: enough to look one
// up without holding a pointer across persistence boundaries. Used by
// htlc.HTLC.Src to record the upstream HTLC a forwarded payment settles
// back to, mirroring the original daemon's peer/id pair lookup
// (find_commited_htlc in packets.c) without this package depending on the
// peer package.
type Ref struct {
	PeerID lnwire.PeerID
	ID     uint64
}

// HTLC is one hash-time-locked contract offered across a channel. Fields
// mirror the wire fields of UpdateAddHTLC plus the bookkeeping needed to
// drive it through State: an id unique per offering side, the locked
// amount, payment hash, expiry, an opaque routing blob for the next hop,
// and — once fulfilled — the preimage that unlocked it.
type HTLC struct {
	ID         uint64
	Owner      Owner
	AmountMsat lnwire.MilliSatoshi
	RHash      chainhash.Hash
	Expiry     lnwire.Locktime
	Routing    []byte

	State State

	// Preimage is set once the HTLC is fulfilled; nil while pending or
	// if it is ultimately failed instead.
	Preimage *chainhash.Hash

	// Src, if non-nil, names the HTLC this one was forwarded from: the
	// upstream id to settle back once this one resolves. Left nil for
	// HTLCs that originate or terminate at this node.
	Src *Ref
}

// NewLocalOffer creates an HTLC this side is proposing, entering the
// lattice at SENT_ADD_HTLC.
func NewLocalOffer(id uint64, amountMsat lnwire.MilliSatoshi, rHash chainhash.Hash, expiry lnwire.Locktime, routing []byte) *HTLC {
	return &HTLC{
		ID:         id,
		Owner:      Local,
		AmountMsat: amountMsat,
		RHash:      rHash,
		Expiry:     expiry,
		Routing:    routing,
		State:      SentAddHTLC,
	}
}

// NewRemoteOffer records an HTLC the peer has just proposed, entering the
// lattice at RCVD_ADD_HTLC.
func NewRemoteOffer(id uint64, amountMsat lnwire.MilliSatoshi, rHash chainhash.Hash, expiry lnwire.Locktime, routing []byte) *HTLC {
	return &HTLC{
		ID:         id,
		Owner:      Remote,
		AmountMsat: amountMsat,
		RHash:      rHash,
		Expiry:     expiry,
		Routing:    routing,
		State:      RcvdAddHTLC,
	}
}

// ErrNotRemovable is returned by BeginLocalRemoval/BeginRemoteRemoval when
// the HTLC has not finished the add half of the lattice yet.
type ErrNotRemovable struct {
	ID    uint64
	State State
}

func (e *ErrNotRemovable) Error() string {
	return fmt.Sprintf("htlc: id %d not eligible for removal from %s", e.ID, e.State)
}

// BeginLocalRemoval starts removal of an HTLC the peer offered: this side
// is settling or failing it, so it must currently be RCVD_ADD_ACK_REVOCATION
// (fully committed, owner REMOTE). Moves it to SENT_REMOVE_HTLC.
func (h *HTLC) BeginLocalRemoval() error {
	if h.Owner != Remote || h.State != RcvdAddAckRevocation {
		return &ErrNotRemovable{ID: h.ID, State: h.State}
	}
	h.State = SentRemoveHTLC
	return nil
}

// BeginRemoteRemoval starts removal of an HTLC this side offered, in
// response to a fulfill/fail packet from the peer: it must currently be
// SENT_ADD_ACK_REVOCATION (fully committed, owner LOCAL). Moves it to
// RCVD_REMOVE_HTLC.
func (h *HTLC) BeginRemoteRemoval() error {
	if h.Owner != Local || h.State != SentAddAckRevocation {
		return &ErrNotRemovable{ID: h.ID, State: h.State}
	}
	h.State = RcvdRemoveHTLC
	return nil
}

// Apply advances the HTLC's state by the given event, returning
// ErrProtocolViolation if the event does not apply from its current state.
func (h *HTLC) Apply(event Event) error {
	next, err := Next(h.State, event)
	if err != nil {
		return err
	}
	h.State = next
	return nil
}
