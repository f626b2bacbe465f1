package peer

// Config holds the values the packet validators and routing advertiser
// need from outside the core (spec.md §6 Configuration). It carries no
// struct tags itself — cmd/lnchand owns the go-flags-tagged Config that
// populates one of these at startup, keeping the parsing concern out of
// the protocol logic.
type Config struct {
	// LocktimeMax is the upper bound on an accepted channel delay, in
	// blocks.
	LocktimeMax uint32

	// AnchorConfirmsMax is the upper bound on the min_depth we accept
	// from a peer offering the anchor.
	AnchorConfirmsMax uint32

	// CommitmentFeeMinPercent and CommitmentFeeMaxPercent bound the
	// peer's proposed initial fee rate relative to our own current
	// feerate (spec.md §9: max_percent bounds the upper edge, not a
	// second use of min_percent).
	CommitmentFeeMinPercent uint64
	CommitmentFeeMaxPercent uint64

	// MinHTLCExpiry, FeeBase, FeePerSatoshi are routing advertisements
	// this node publishes; the core doesn't enforce them on accept, but
	// carries them for whatever announces routing policy.
	MinHTLCExpiry   uint32
	FeeBase         uint64
	FeePerSatoshi   uint64
}

// maxHTLCsPerSide is the BOLT-2 cap on live HTLCs one side may offer in
// the other's commitment transaction (spec.md §4.5).
const maxHTLCsPerSide = 300
