package lnwire

import "io"

// OpenAnchorMsg announces the funding (anchor) outpoint and amount to the
// non-funding peer (spec.md §6, PKT_OPEN_ANCHOR). Named with a Msg suffix to
// avoid colliding with the channeldb anchor record of the same concept.
type OpenAnchorMsg struct {
	TxID        [32]byte
	OutputIndex uint32
	Amount      uint64
}

var _ Message = (*OpenAnchorMsg)(nil)

func (a *OpenAnchorMsg) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &a.TxID, &a.OutputIndex, &a.Amount)
}

func (a *OpenAnchorMsg) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, a.TxID, a.OutputIndex, a.Amount)
}

func (a *OpenAnchorMsg) MsgType() MessageType { return MsgOpenAnchor }

func (a *OpenAnchorMsg) MaxPayloadLength(uint32) uint32 {
	return 44
}
