package htlc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/lnchand/lnchand/lnwire"
)

var testExpiry = lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 144}

// TestAddLattice walks a LOCAL-offered HTLC through the full add path and
// checks the committed-ness flags at each step, per spec.md §4.3.
func TestAddLattice(t *testing.T) {
	s := SentAddHTLC
	require.False(t, s.LocalCommitted())
	require.False(t, s.RemoteCommitted())

	s, err := Next(s, EventOutboundCommit)
	require.NoError(t, err)
	require.Equal(t, SentAddCommit, s)

	s, err = Next(s, EventInboundRevocation)
	require.NoError(t, err)
	require.Equal(t, RcvdAddRevocation, s)
	require.True(t, s.RemoteCommitted())
	require.False(t, s.LocalCommitted())

	s, err = Next(s, EventInboundCommit)
	require.NoError(t, err)
	require.Equal(t, RcvdAddAckCommit, s)

	s, err = Next(s, EventOutboundRevocation)
	require.NoError(t, err)
	require.Equal(t, SentAddAckRevocation, s)
	require.True(t, s.LocalCommitted())
	require.True(t, s.RemoteCommitted())
	require.True(t, s.AddAcked())
}

// TestAddLatticeMirror walks a REMOTE-offered HTLC through the mirrored add
// path.
func TestAddLatticeMirror(t *testing.T) {
	s := RcvdAddHTLC

	s, err := Next(s, EventInboundCommit)
	require.NoError(t, err)
	require.Equal(t, RcvdAddCommit, s)

	s, err = Next(s, EventOutboundRevocation)
	require.NoError(t, err)
	require.Equal(t, SentAddRevocation, s)
	require.True(t, s.LocalCommitted())
	require.False(t, s.RemoteCommitted())

	s, err = Next(s, EventOutboundCommit)
	require.NoError(t, err)
	require.Equal(t, SentAddAckCommit, s)

	s, err = Next(s, EventInboundRevocation)
	require.NoError(t, err)
	require.Equal(t, RcvdAddAckRevocation, s)
	require.True(t, s.LocalCommitted())
	require.True(t, s.RemoteCommitted())
	require.True(t, s.AddAcked())
}

// TestRemoveLattice walks a REMOTE-offered HTLC (owner REMOTE, so removal is
// local-initiated) through the full remove path to its terminal state.
func TestRemoveLattice(t *testing.T) {
	h := NewRemoteOffer(1, 1000, chainhash.Hash{}, testExpiry, nil)
	h.State = RcvdAddAckRevocation
	require.NoError(t, h.BeginLocalRemoval())
	require.Equal(t, SentRemoveHTLC, h.State)

	require.NoError(t, h.Apply(EventOutboundCommit))
	require.Equal(t, SentRemoveCommit, h.State)

	require.NoError(t, h.Apply(EventInboundRevocation))
	require.Equal(t, RcvdRemoveRevocation, h.State)
	require.True(t, h.State.LocalCommitted())
	require.False(t, h.State.RemoteCommitted())

	require.NoError(t, h.Apply(EventInboundCommit))
	require.Equal(t, RcvdRemoveAckCommit, h.State)

	require.NoError(t, h.Apply(EventOutboundRevocation))
	require.Equal(t, SentRemoveAckRevocation, h.State)
	require.True(t, h.State.Terminal())
	require.False(t, h.State.LocalCommitted())
	require.False(t, h.State.RemoteCommitted())
	require.True(t, h.State.LocalWasCommitted())
	require.True(t, h.State.RemoteWasCommitted())
}

// TestBeginRemovalRejectsWrongState ensures removal is refused before the
// add half of the lattice has completed.
func TestBeginRemovalRejectsWrongState(t *testing.T) {
	h := NewLocalOffer(2, 500, chainhash.Hash{}, testExpiry, nil)
	err := h.BeginRemoteRemoval()
	require.Error(t, err)
	require.Equal(t, SentAddHTLC, h.State)
}

func TestNextRejectsWrongEvent(t *testing.T) {
	_, err := Next(SentAddHTLC, EventInboundCommit)
	require.Error(t, err)

	var violation *ErrProtocolViolation
	require.ErrorAs(t, err, &violation)
}

func TestStateNameRoundTrip(t *testing.T) {
	for s := SentAddHTLC; s <= SentRemoveAckRevocation; s++ {
		name := s.String()
		parsed, err := StateFromName(name)
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	_, err := StateFromName("NOT_A_REAL_STATE")
	require.Error(t, err)
}
