package lnwire

import "io"

// UpdateAddHTLC proposes a new HTLC be added to the channel (spec.md §6,
// PKT_UPDATE_ADD_HTLC). ID is assigned by the offering side and is unique
// amongst all of that side's past and future HTLCs on this channel.
type UpdateAddHTLC struct {
	ID         uint64
	AmountMsat MilliSatoshi
	RHash      [32]byte
	Expiry     Locktime
	Routing    []byte
}

var _ Message = (*UpdateAddHTLC)(nil)

func (u *UpdateAddHTLC) Decode(r io.Reader, pver uint32) error {
	return readElements(r,
		&u.ID,
		&u.AmountMsat,
		&u.RHash,
		&u.Expiry,
		&u.Routing,
	)
}

func (u *UpdateAddHTLC) Encode(w io.Writer, pver uint32) error {
	return writeElements(w,
		u.ID,
		u.AmountMsat,
		u.RHash,
		u.Expiry,
		u.Routing,
	)
}

func (u *UpdateAddHTLC) MsgType() MessageType { return MsgUpdateAddHTLC }

func (u *UpdateAddHTLC) MaxPayloadLength(uint32) uint32 {
	// 8 + 8 + 32 + 5 + (4 length prefix + up to 1300 bytes of onion routing)
	return 1357
}
