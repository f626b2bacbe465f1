package lnwire

import "io"

// UpdateFulfillHTLC is sent to settle a particular HTLC referenced by its ID
// within a specific channel, by disclosing the preimage that hashes to its
// r_hash (spec.md §6, PKT_UPDATE_FULFILL_HTLC). A subsequent UpdateCommit
// will be sent to "lock-in" the removal, possibly batching several settled
// HTLCs in one signature.
type UpdateFulfillHTLC struct {
	// ID denotes the exact HTLC, by the offering side's numbering, being
	// settled.
	ID uint64

	// PaymentPreimage is the value required to fully settle an HTLC: its
	// SHA-256 must equal the HTLC's RHash.
	PaymentPreimage [32]byte
}

// NewUpdateFulfillHTLC returns a new UpdateFulfillHTLC for the given HTLC id
// and preimage.
func NewUpdateFulfillHTLC(id uint64, preimage [32]byte) *UpdateFulfillHTLC {
	return &UpdateFulfillHTLC{
		ID:              id,
		PaymentPreimage: preimage,
	}
}

var _ Message = (*UpdateFulfillHTLC)(nil)

func (c *UpdateFulfillHTLC) Decode(r io.Reader, pver uint32) error {
	return readElements(r,
		&c.ID,
		&c.PaymentPreimage,
	)
}

func (c *UpdateFulfillHTLC) Encode(w io.Writer, pver uint32) error {
	return writeElements(w,
		c.ID,
		c.PaymentPreimage,
	)
}

func (c *UpdateFulfillHTLC) MsgType() MessageType {
	return MsgUpdateFulfillHTLC
}

func (c *UpdateFulfillHTLC) MaxPayloadLength(uint32) uint32 {
	// 8 + 32
	return 40
}
