package peer

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwire"
)

func TestOutQueueFIFOOrder(t *testing.T) {
	q := NewOutQueue(0)
	defer q.Stop()

	h := htlc.NewLocalOffer(1, 1000, chainhash.Hash{}, lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 100}, nil)
	o1 := ProduceAddHTLC(q, h)
	o2 := ProduceFailHTLC(q, 2, []byte("nope"))
	o3 := ProduceError(q, "boom")

	require.Equal(t, uint64(0), o1)
	require.Equal(t, uint64(1), o2)
	require.Equal(t, uint64(2), o3)
	require.Equal(t, uint64(3), q.OrderCounter())

	var got []lnwire.Message
	for i := 0; i < 3; i++ {
		select {
		case m := <-q.ChanOut():
			got = append(got, m.(lnwire.Message))
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for queued message")
		}
	}

	require.IsType(t, &lnwire.UpdateAddHTLC{}, got[0])
	require.IsType(t, &lnwire.UpdateFailHTLC{}, got[1])
	require.IsType(t, &lnwire.Error{}, got[2])
}

func TestOutQueueReplayResumesAfterAck(t *testing.T) {
	q := NewOutQueue(0)
	defer q.Stop()

	ProduceError(q, "one")
	ProduceError(q, "two")
	ProduceError(q, "three")

	// Drain the live sends before replaying, so only replayed messages
	// are left on the channel.
	for i := 0; i < 3; i++ {
		<-q.ChanOut()
	}

	q.Replay(1) // ack'd orders 0 and 1; only order 2 ("three") resends.

	select {
	case m := <-q.ChanOut():
		errMsg := m.(*lnwire.Error)
		require.Equal(t, "three", errMsg.Problem)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for replayed message")
	}
}

func TestProduceOpenRoundTripsFields(t *testing.T) {
	q := NewOutQueue(0)
	defer q.Stop()

	rh := chainhash.Hash{1}
	nrh := chainhash.Hash{2}
	var commitKey, finalKey [33]byte

	ProduceOpen(q, rh, nrh, commitKey, finalKey,
		lnwire.Locktime{Unit: lnwire.LocktimeBlocks, Value: 144}, 500,
		lnwire.AnchorOfferWillCreate, 6)

	m := (<-q.ChanOut()).(*lnwire.OpenChannel)
	require.Equal(t, [32]byte(rh), m.RevocationHash)
	require.Equal(t, uint64(500), m.InitialFeeRate)
	require.Equal(t, lnwire.AnchorOfferWillCreate, m.Anchor)
}
