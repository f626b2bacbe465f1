package lnwallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/clock"

	"github.com/lnchand/lnchand/lnwire"
)

// ChainAdapter is the boundary between the ledger/commitment core and
// on-chain transaction construction, signing, and the current dust
// threshold. The core never builds or broadcasts a transaction itself; it
// asks the adapter to do so against a ChannelState it has already computed,
// mirroring how the rest of this module treats chain I/O as an injected
// dependency rather than a concern of its own (chainntfs.ChainNotifier took
// the same register-an-interest-with-an-external-source shape for block and
// spend events; this interface narrows that shape to the commit-tx/dust
// concerns the ledger needs).
type ChainAdapter interface {
	// DustLimit returns the current dust threshold in satoshis: HTLCs
	// below it are omitted from the commitment transaction's output set
	// (spec.md §4.1) even though their value still counts in the
	// balance invariant.
	DustLimit() uint64

	// BuildCommitTx constructs the commitment transaction for side's
	// view of cstate, to be signed with revocationHash as the
	// per-commitment point. It does not sign; Sign does.
	BuildCommitTx(cstate *ChannelState, side Side, revocationHash chainhash.Hash) (CommitTx, error)

	// Sign produces a compact signature over tx under the channel's
	// funding key.
	Sign(tx CommitTx) (lnwire.CompactSig, error)

	// VerifySig checks a peer-supplied signature over tx against the
	// peer's funding public key.
	VerifySig(tx CommitTx, sig lnwire.CompactSig, peerFundingKey *btcec.PublicKey) error
}

// CommitTx is an opaque handle to a constructed, not-yet-broadcast
// commitment transaction. The core only ever carries it between
// ChainAdapter calls and the persisted txid; it never inspects the
// transaction's structure.
type CommitTx interface {
	TxID() chainhash.Hash
}

// KeyVault supplies per-peer key material: the channel's own keys, and the
// per-commitment revocation seed used to derive and later reveal
// commitment-specific secrets via shachain.
type KeyVault interface {
	// CommitKey returns this side's public key used in the commitment
	// transaction's funding output.
	CommitKey(peer lnwire.PeerID) (*btcec.PublicKey, error)

	// FinalKey returns this side's public key for the final payout
	// script once the channel closes.
	FinalKey(peer lnwire.PeerID) (*btcec.PublicKey, error)

	// RevocationPreimage derives the preimage revealed to revoke the
	// commitment identified by commitNum (spec.md §4.4 step 2).
	RevocationPreimage(peer lnwire.PeerID, commitNum uint64) (chainhash.Hash, error)

	// RevocationHash derives the hash counterpart of
	// RevocationPreimage(peer, commitNum), offered to the peer ahead of
	// revealing the preimage.
	RevocationHash(peer lnwire.PeerID, commitNum uint64) (chainhash.Hash, error)
}

// BlockHeightSource reports the current chain tip height, used to validate
// HTLC expiries and funding confirmation depths. It stands in for the
// spec's Clock/block-height collaborator; lnd's clock.Clock (wired via
// Clock below) covers wall-clock time for any timeout bookkeeping that
// isn't block-height denominated.
type BlockHeightSource interface {
	BlockHeight() (uint32, error)
}

// Clock is the wall-clock time source used for timers and staleness checks
// outside the block-height domain (reconnect backoff, persistence
// timestamps). It is an alias for lnd's clock.Clock rather than a
// redeclared interface, so callers can pass clock.NewDefaultClock in
// production and clock.NewTestClock in tests without this package needing
// its own fake.
type Clock = clock.Clock
