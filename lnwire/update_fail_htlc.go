package lnwire

import "io"

// UpdateFailHTLC fails a particular HTLC, returning its funds to the
// offering side (spec.md §6, PKT_UPDATE_FAIL_HTLC). The reason blob is
// opaque to the core; forwarding nodes wrap/unwrap it, which is out of
// scope here.
type UpdateFailHTLC struct {
	ID     uint64
	Reason []byte
}

var _ Message = (*UpdateFailHTLC)(nil)

func (u *UpdateFailHTLC) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &u.ID, &u.Reason)
}

func (u *UpdateFailHTLC) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, u.ID, u.Reason)
}

func (u *UpdateFailHTLC) MsgType() MessageType { return MsgUpdateFailHTLC }

func (u *UpdateFailHTLC) MaxPayloadLength(uint32) uint32 {
	return 8 + 4 + 292
}
