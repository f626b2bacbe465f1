package lnwire

import (
	"fmt"
	"io"
)

// UpdateCommit signs the receiving side's staging commitment, incorporating
// every change queued since the last commitment (spec.md §4.4,
// PKT_UPDATE_COMMIT). Sig is present iff the sender's staging state has
// unacknowledged changes relative to the receiver's last-acked commitment;
// peer.AcceptCommit enforces that symmetry.
type UpdateCommit struct {
	HasSig bool
	Sig    CompactSig
}

var _ Message = (*UpdateCommit)(nil)

func (u *UpdateCommit) Decode(r io.Reader, pver uint32) error {
	if err := readElements(r, &u.HasSig); err != nil {
		return err
	}
	if !u.HasSig {
		return nil
	}
	return readElements(r, &u.Sig)
}

func (u *UpdateCommit) Encode(w io.Writer, pver uint32) error {
	if err := writeElements(w, u.HasSig); err != nil {
		return err
	}
	if !u.HasSig {
		return nil
	}
	return writeElements(w, u.Sig)
}

func (u *UpdateCommit) MsgType() MessageType { return MsgUpdateCommit }

func (u *UpdateCommit) MaxPayloadLength(uint32) uint32 {
	return 65
}

func (u *UpdateCommit) String() string {
	if !u.HasSig {
		return "update_commit{no-op}"
	}
	return fmt.Sprintf("update_commit{sig=%x}", u.Sig[:8])
}
