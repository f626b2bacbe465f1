package lnwire

import "io"

// OpenCommitSig carries the funder's signature over the fundee's initial
// commitment transaction (spec.md §6, PKT_OPEN_COMMIT_SIG).
type OpenCommitSig struct {
	Sig CompactSig
}

var _ Message = (*OpenCommitSig)(nil)

func (o *OpenCommitSig) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &o.Sig)
}

func (o *OpenCommitSig) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, o.Sig)
}

func (o *OpenCommitSig) MsgType() MessageType { return MsgOpenCommitSig }

func (o *OpenCommitSig) MaxPayloadLength(uint32) uint32 {
	return 64
}

// OpenComplete closes out the three-way open handshake once the anchor has
// reached the agreed min_depth (spec.md §6, PKT_OPEN_COMPLETE). It carries
// no fields.
type OpenComplete struct{}

var _ Message = (*OpenComplete)(nil)

func (o *OpenComplete) Decode(r io.Reader, pver uint32) error { return nil }
func (o *OpenComplete) Encode(w io.Writer, pver uint32) error { return nil }
func (o *OpenComplete) MsgType() MessageType                  { return MsgOpenComplete }
func (o *OpenComplete) MaxPayloadLength(uint32) uint32        { return 0 }
