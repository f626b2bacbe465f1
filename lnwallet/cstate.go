package lnwallet

import (
	"fmt"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwire"
)

// Side indexes the two views a ChannelState carries: this node's and its
// peer's.
type Side uint8

const (
	Ours Side = iota
	Theirs
)

func (s Side) String() string {
	if s == Ours {
		return "OURS"
	}
	return "THEIRS"
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Ours {
		return Theirs
	}
	return Ours
}

// ownerSide maps an HTLC's owner to the ledger side that funds it: the side
// that offered an HTLC is the side whose pay_msat it was deducted from.
func ownerSide(owner htlc.Owner) Side {
	if owner == htlc.Local {
		return Ours
	}
	return Theirs
}

// OneSide is one side's view of the channel's funds: what it would receive
// to its final output, what it has committed to paying in fees, and how
// many HTLCs it currently has outstanding.
type OneSide struct {
	PayMsat  lnwire.MilliSatoshi
	FeeMsat  lnwire.MilliSatoshi
	NumHTLCs uint32
}

// ChannelState is the two-sided funds ledger (spec.md §3): the funding
// amount and feerate fixed at open, the live non-dust HTLC count, and each
// side's OneSide. Invariant I-balance holds after every successful
// operation: Side[Ours].Pay+Fee + Side[Theirs].Pay+Fee + Σ live HTLC
// amounts, dust included (in msat) == AnchorSatoshis*1000.
type ChannelState struct {
	AnchorSatoshis uint64
	FeeRate        uint64
	NumNonDust     uint32
	Side           [2]OneSide
}

// ErrAnchorTooLarge is returned by Initial when the funding amount does not
// fit the 32-bit millisatoshi bound the wire format assumes.
var ErrAnchorTooLarge = fmt.Errorf("lnwallet: anchor amount exceeds 2^32/1000 satoshis")

// ErrFeeExceedsAnchor is returned by Initial when the initial commitment
// fee alone would exceed the entire funding amount.
var ErrFeeExceedsAnchor = fmt.Errorf("lnwallet: initial fee exceeds anchor amount")

// Initial builds the channel's starting ledger: the funder receives the
// full anchor amount less the zero-HTLC commitment fee, which is recorded
// entirely on the funder's side (spec.md §4.2, scenario 1).
func Initial(anchorSatoshis, feeRate uint64, funder Side) (*ChannelState, error) {
	if anchorSatoshis >= (uint64(1)<<32)/1000 {
		return nil, ErrAnchorTooLarge
	}

	feeMsat := uint64(commitmentFeeMsat(0, feeRate))
	if feeMsat > anchorSatoshis*1000 {
		return nil, ErrFeeExceedsAnchor
	}

	cs := &ChannelState{
		AnchorSatoshis: anchorSatoshis,
		FeeRate:        feeRate,
	}
	cs.Side[funder].PayMsat = lnwire.MilliSatoshi(anchorSatoshis*1000 - feeMsat)
	cs.Side[funder].FeeMsat = lnwire.MilliSatoshi(feeMsat)
	return cs, nil
}

// Clone returns an independent copy, used to stage a tentative mutation
// that can be discarded without touching the original on rejection.
func (cs *ChannelState) Clone() *ChannelState {
	clone := *cs
	return &clone
}

// payFee pays as much of feeMsat as side can afford from pay_msat,
// returning whatever remains unpaid.
func payFee(side *OneSide, feeMsat uint64) uint64 {
	if uint64(side.PayMsat) >= feeMsat {
		side.PayMsat -= lnwire.MilliSatoshi(feeMsat)
		side.FeeMsat += lnwire.MilliSatoshi(feeMsat)
		return 0
	}
	remainder := feeMsat - uint64(side.PayMsat)
	side.FeeMsat += side.PayMsat
	side.PayMsat = 0
	return remainder
}

// recalculateFees folds each side's current fee back into its pay, then
// re-splits feeMsat per the BOLT-2 rule: try half from each side, and push
// anything either side can't afford onto the other, up to what it has
// (spec.md §4.2, P2).
func recalculateFees(a, b *OneSide, feeMsat uint64) {
	a.PayMsat += a.FeeMsat
	b.PayMsat += b.FeeMsat
	a.FeeMsat = 0
	b.FeeMsat = 0

	remainder := payFee(a, feeMsat/2) + payFee(b, feeMsat/2)
	remainder = payFee(a, remainder)
	payFee(b, remainder)
}

// changeFunding takes htlcMsatDelta out of (positive) or puts it into
// (negative) a's pay, against b, at the given non-dust HTLC count, then
// re-splits fees.
// The conversion of a negative delta into the unsigned MilliSatoshi field
// relies on the same two's-complement wraparound the original C used when
// assigning an int64_t delta into a uint64_t field: a->pay_msat -= htlc_msat
// cancels out correctly once recalculateFees folds the fee back in, even
// though the intermediate value momentarily "underflows".
func changeFunding(anchorSatoshis, feeRate uint64, htlcMsatDelta int64, a, b *OneSide, numNonDust uint32) bool {
	feeMsat := uint64(commitmentFeeMsat(numNonDust, feeRate))

	if htlcMsatDelta > 0 {
		if uint64(htlcMsatDelta)+feeMsat/2 > uint64(a.PayMsat)+uint64(a.FeeMsat) {
			return false
		}
	}

	a.PayMsat -= lnwire.MilliSatoshi(htlcMsatDelta)
	recalculateFees(a, b, feeMsat)
	return true
}

// AddHTLC tentatively charges h's amount to its offering side and re-splits
// fees at the new non-dust count, rejecting (and leaving cs untouched) if
// the offerer cannot afford it (spec.md §4.2).
func (cs *ChannelState) AddHTLC(h *htlc.HTLC, dustLimitSat uint64) bool {
	side := ownerSide(h.Owner)
	other := side.Other()

	nonDust := cs.NumNonDust
	if !isDust(h.AmountMsat, dustLimitSat) {
		nonDust++
	}

	if !changeFunding(cs.AnchorSatoshis, cs.FeeRate, int64(h.AmountMsat),
		&cs.Side[side], &cs.Side[other], nonDust) {
		return false
	}

	cs.NumNonDust = nonDust
	cs.Side[side].NumHTLCs++
	return true
}

// removeHTLC credits h's amount to beneficiary, debits the creating side's
// NumHTLCs, and re-splits fees at the reduced non-dust count. It cannot
// fail — htlc amounts are always positive, so changeFunding's affordability
// check never triggers on removal — so a failure here is a bug (spec.md
// §4.2) and is treated as fatal, not a data-dependent condition.
func (cs *ChannelState) removeHTLC(h *htlc.HTLC, beneficiary Side, dustLimitSat uint64) {
	creator := ownerSide(h.Owner)

	nonDust := cs.NumNonDust
	if !isDust(h.AmountMsat, dustLimitSat) {
		if nonDust == 0 {
			panic("lnwallet: num_nondust underflow on HTLC removal")
		}
		nonDust--
	}

	ok := changeFunding(cs.AnchorSatoshis, cs.FeeRate, -int64(h.AmountMsat),
		&cs.Side[beneficiary], &cs.Side[beneficiary.Other()], nonDust)
	if !ok {
		panic("lnwallet: balance invariant violated removing HTLC")
	}

	if cs.Side[creator].NumHTLCs == 0 {
		panic("lnwallet: num_htlcs underflow on HTLC removal")
	}
	cs.Side[creator].NumHTLCs--
	cs.NumNonDust = nonDust
}

// FailHTLC returns h's amount to the side that offered it (spec.md §4.2,
// scenario 3).
func (cs *ChannelState) FailHTLC(h *htlc.HTLC, dustLimitSat uint64) {
	side := ownerSide(h.Owner)
	cs.removeHTLC(h, side, dustLimitSat)
}

// FulfillHTLC credits h's amount to the side that accepted it (spec.md
// §4.2, scenario 2).
func (cs *ChannelState) FulfillHTLC(h *htlc.HTLC, dustLimitSat uint64) {
	side := ownerSide(h.Owner).Other()
	cs.removeHTLC(h, side, dustLimitSat)
}

// AdjustFee re-splits the commitment fee at a new feerate, paying as much
// of the target as each side can afford (spec.md §4.2). Unlike ForceFee,
// it never fails: any shortfall is simply left unpaid (a fee lower than the
// nominal target).
func (cs *ChannelState) AdjustFee(feeRate uint64) {
	cs.FeeRate = feeRate
	feeMsat := uint64(commitmentFeeMsat(cs.NumNonDust, feeRate))
	recalculateFees(&cs.Side[Ours], &cs.Side[Theirs], feeMsat)
}

// ErrFeeOverflow is returned by ForceFee when the requested fee, scaled to
// millisatoshis, would overflow the accounting type (spec.md §9: adopt u64
// throughout, checking against u64::MAX/1000).
var ErrFeeOverflow = fmt.Errorf("lnwallet: requested fee overflows millisatoshi accounting")

// ForceFee sets the commitment fee to exactly feeSatoshis, splitting it
// between both sides, and reports whether the full amount could be paid
// (spec.md §4.2, §8 scenario 5). On underpayment the fee is still set to
// whatever both sides could collectively afford, and false is returned.
func (cs *ChannelState) ForceFee(feeSatoshis uint64) (bool, error) {
	if feeSatoshis > ^uint64(0)/1000 {
		return false, ErrFeeOverflow
	}

	feeMsat := feeSatoshis * 1000
	recalculateFees(&cs.Side[Ours], &cs.Side[Theirs], feeMsat)

	paid := uint64(cs.Side[Ours].FeeMsat) + uint64(cs.Side[Theirs].FeeMsat)
	return paid == feeMsat, nil
}
