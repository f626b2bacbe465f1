package lnwire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	var rHash [32]byte
	copy(rHash[:], bytes.Repeat([]byte{0xab}, 32))

	msgs := []Message{
		&OpenChannel{
			Delay:          Locktime{Unit: LocktimeBlocks, Value: 144},
			InitialFeeRate: 20000,
			Anchor:         AnchorOfferWillCreate,
			MinDepth:       6,
		},
		&OpenAnchorMsg{OutputIndex: 1, Amount: 1_000_000},
		&OpenCommitSig{},
		&OpenComplete{},
		&UpdateAddHTLC{
			ID:         7,
			AmountMsat: 100_000_000,
			RHash:      rHash,
			Expiry:     Locktime{Unit: LocktimeBlocks, Value: 500_000},
			Routing:    []byte("onion-blob"),
		},
		NewUpdateFulfillHTLC(7, rHash),
		&UpdateFailHTLC{ID: 7, Reason: []byte("insufficient funds")},
		&UpdateCommit{HasSig: true},
		&UpdateCommit{HasSig: false},
		&UpdateRevocation{RevocationPreimage: rHash, NextRevocationHash: rHash},
		&CloseShutdown{ScriptPubkey: []byte{0x00, 0x14}},
		&CloseSignature{Fee: 500},
		&Error{Problem: "state machine violation"},
		&Reconnect{Ack: 42},
	}

	for _, msg := range msgs {
		var buf bytes.Buffer
		_, err := WriteMessage(&buf, msg, 0)
		require.NoError(t, err)

		decoded, err := ReadMessage(&buf, 0)
		require.NoError(t, err)
		require.Equal(t, msg, decoded)
	}
}

func TestReadMessageUnknownType(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff})

	_, err := ReadMessage(&buf, 0)
	require.Error(t, err)
}
