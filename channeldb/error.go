package channeldb

import "fmt"

var (
	// ErrPeerNotFound is returned when a peer row, or one of the per-peer
	// rows a load requires (address, secrets, anchor, their_visible_state),
	// is missing at the point a caller expects it to already exist.
	ErrPeerNotFound = fmt.Errorf("channeldb: no peer row for that peer id")

	// ErrHTLCNotFound is returned when an HTLC lookup by (peer, id) finds
	// no row.
	ErrHTLCNotFound = fmt.Errorf("channeldb: no htlc with that id for peer")

	// ErrShachainNotFound is returned when a peer has no persisted
	// shachain row yet (not yet received a first revocation).
	ErrShachainNotFound = fmt.Errorf("channeldb: no shachain row for that peer")

	// ErrCommitInfoMissing is an invariant violation (spec.md §7 kind 2):
	// every peer must carry exactly two commit_info rows, OURS and
	// THEIRS, once past OPEN_WAITING. Its absence on replay means the
	// store is corrupt, not that the caller should retry.
	ErrCommitInfoMissing = fmt.Errorf("channeldb: missing commit_info row for a required side")

	// ErrClosingNotFound is returned when no cooperative-close
	// negotiation has been recorded for a peer.
	ErrClosingNotFound = fmt.Errorf("channeldb: no closing row for that peer")

	// ErrWalletKeyNotFound is returned when no signing key has been
	// saved to the wallet table yet.
	ErrWalletKeyNotFound = fmt.Errorf("channeldb: no wallet key saved")
)
