package lnwire

import "io"

// UpdateRevocation revokes the sender's previous commitment and supplies the
// hash of its own next one (spec.md §4.4, PKT_UPDATE_REVOCATION). Sent in
// response to UpdateCommit once the receiver has rotated its own commitment.
type UpdateRevocation struct {
	RevocationPreimage [32]byte
	NextRevocationHash [32]byte
}

var _ Message = (*UpdateRevocation)(nil)

func (u *UpdateRevocation) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &u.RevocationPreimage, &u.NextRevocationHash)
}

func (u *UpdateRevocation) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, u.RevocationPreimage, u.NextRevocationHash)
}

func (u *UpdateRevocation) MsgType() MessageType { return MsgUpdateRevocation }

func (u *UpdateRevocation) MaxPayloadLength(uint32) uint32 {
	return 64
}
