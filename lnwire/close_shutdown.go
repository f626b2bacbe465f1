package lnwire

import "io"

// CloseShutdown begins cooperative close negotiation by announcing the
// sender's closing output script (spec.md §6, PKT_CLOSE_SHUTDOWN).
type CloseShutdown struct {
	ScriptPubkey []byte
}

var _ Message = (*CloseShutdown)(nil)

func (c *CloseShutdown) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &c.ScriptPubkey)
}

func (c *CloseShutdown) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, c.ScriptPubkey)
}

func (c *CloseShutdown) MsgType() MessageType { return MsgCloseShutdown }

func (c *CloseShutdown) MaxPayloadLength(uint32) uint32 {
	return 4 + 520
}

// CloseSignature proposes (or counter-proposes) a closing fee along with a
// signature over the resulting cooperative-close transaction (spec.md §6,
// PKT_CLOSE_SIGNATURE).
type CloseSignature struct {
	Fee uint64
	Sig CompactSig
}

var _ Message = (*CloseSignature)(nil)

func (c *CloseSignature) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &c.Fee, &c.Sig)
}

func (c *CloseSignature) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, c.Fee, c.Sig)
}

func (c *CloseSignature) MsgType() MessageType { return MsgCloseSignature }

func (c *CloseSignature) MaxPayloadLength(uint32) uint32 {
	return 8 + 64
}
