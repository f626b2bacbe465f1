package lnwire

import "io"

// OpenChannel is the first packet sent by either side of a prospective
// channel (spec.md §6, PKT_OPEN).
type OpenChannel struct {
	RevocationHash     [32]byte
	NextRevocationHash [32]byte
	CommitKey          [33]byte
	FinalKey           [33]byte
	Delay              Locktime
	InitialFeeRate     uint64
	Anchor             AnchorOffer
	MinDepth           uint32
}

var _ Message = (*OpenChannel)(nil)

func (o *OpenChannel) Decode(r io.Reader, pver uint32) error {
	return readElements(r,
		&o.RevocationHash,
		&o.NextRevocationHash,
		(*PeerID)(&o.CommitKey),
		(*PeerID)(&o.FinalKey),
		&o.Delay,
		&o.InitialFeeRate,
		&o.Anchor,
		&o.MinDepth,
	)
}

func (o *OpenChannel) Encode(w io.Writer, pver uint32) error {
	return writeElements(w,
		o.RevocationHash,
		o.NextRevocationHash,
		PeerID(o.CommitKey),
		PeerID(o.FinalKey),
		o.Delay,
		o.InitialFeeRate,
		o.Anchor,
		o.MinDepth,
	)
}

func (o *OpenChannel) MsgType() MessageType { return MsgOpen }

func (o *OpenChannel) MaxPayloadLength(uint32) uint32 {
	// 32 + 32 + 33 + 33 + 5 + 8 + 1 + 4
	return 148
}
