package lnwallet

import "github.com/lnchand/lnchand/lnwire"

// baseCommitmentBytes is the fixed weight of a commitment transaction with
// zero non-dust HTLC outputs; each additional non-dust HTLC adds
// htlcOutputBytes. Values are protocol constants (spec.md §4.1) and must be
// reproduced exactly, not re-derived from a real transaction encoding.
const (
	baseCommitmentBytes = 338
	htlcOutputBytes     = 32
)

// commitmentBytes returns the byte count of a commitment transaction
// carrying numNonDust non-dust HTLC outputs.
func commitmentBytes(numNonDust uint32) uint32 {
	return baseCommitmentBytes + htlcOutputBytes*numNonDust
}

// feeByFeerate computes the satoshi fee for a commitment transaction of the
// given byte count at the given feerate (satoshis per 1000 bytes). The
// result always rounds down to an even satoshi count (P7): it is
// 2*floor(bytes*rate/2000).
func feeByFeerate(bytes, rate uint64) uint64 {
	return bytes * rate / 2000 * 2
}

// commitmentFeeMsat is feeByFeerate expressed in millisatoshis, the unit
// the ledger tracks balances in.
func commitmentFeeMsat(numNonDust uint32, feeRate uint64) lnwire.MilliSatoshi {
	sat := feeByFeerate(uint64(commitmentBytes(numNonDust)), feeRate)
	return lnwire.MilliSatoshi(sat * 1000)
}

// isDust reports whether an HTLC of the given millisatoshi amount is dust
// under the supplied threshold, which a ChainAdapter expresses in whole
// satoshis (spec.md §4.1): dust HTLCs are omitted from the commitment
// transaction's output set but still count toward the balance invariant.
func isDust(amountMsat lnwire.MilliSatoshi, dustLimitSat uint64) bool {
	return uint64(amountMsat.ToSatoshis()) < dustLimitSat
}
