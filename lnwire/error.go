package lnwire

import "io"

// Error is sent in response to a protocol violation: a malformed field, a
// state-machine violation, an unaffordable HTLC, a signature mismatch, a
// duplicate HTLC id, or an HTLC-count overrun (spec.md §7.1). Receipt of
// this packet is followed by a graceful channel close.
type Error struct {
	Problem string
}

var _ Message = (*Error)(nil)

func (e *Error) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &e.Problem)
}

func (e *Error) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, e.Problem)
}

func (e *Error) MsgType() MessageType { return MsgError }

func (e *Error) MaxPayloadLength(uint32) uint32 {
	return MaxMessagePayload
}

// Reconnect is sent immediately upon reconnection, acknowledging the last
// outbound packet order the sender is known to have processed, so the peer
// can resume its FIFO outbound queue from the right point (spec.md §6,
// PKT_RECONNECT).
type Reconnect struct {
	Ack uint64
}

var _ Message = (*Reconnect)(nil)

func (r *Reconnect) Decode(rd io.Reader, pver uint32) error {
	return readElements(rd, &r.Ack)
}

func (r *Reconnect) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, r.Ack)
}

func (r *Reconnect) MsgType() MessageType { return MsgReconnect }

func (r *Reconnect) MaxPayloadLength(uint32) uint32 {
	return 8
}
