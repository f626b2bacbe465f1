package peer

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/queue"

	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwire"
)

// outPkt pairs an outbound wire message with the order this side assigned
// it: every packet a connection sends carries a strictly increasing order
// number (spec.md §4.5/§6), recorded so a PKT_RECONNECT replay can resume
// from any acked point without resending or skipping anything.
type outPkt struct {
	order uint64
	msg   lnwire.Message
}

// OutQueue is the per-connection outbound packet pipeline: a strictly
// ordered FIFO of everything this side has ever queued to send, backed by
// lnd/queue.ConcurrentQueue the way the wider lnd/breez stack uses it for
// unbounded producer/consumer handoff. A connection replays from it after
// a reconnect instead of recomputing packets from channel state.
type OutQueue struct {
	cq      *queue.ConcurrentQueue
	counter uint64
	sent    []outPkt
}

// NewOutQueue creates an OutQueue starting its order counter at
// startOrder (0 for a brand new channel, or one past the highest order
// counter reloaded from the durable store during recovery).
func NewOutQueue(startOrder uint64) *OutQueue {
	q := &OutQueue{
		cq:      queue.NewConcurrentQueue(100),
		counter: startOrder,
	}
	q.cq.Start()
	return q
}

// Stop drains and halts the underlying queue.
func (q *OutQueue) Stop() {
	q.cq.Stop()
}

// ChanOut is the channel a connection's writer goroutine drains outbound
// messages from.
func (q *OutQueue) ChanOut() <-chan interface{} {
	return q.cq.ChanOut()
}

// enqueue assigns the next order number to msg, records it for future
// replay, and hands it to the writer goroutine.
func (q *OutQueue) enqueue(msg lnwire.Message) uint64 {
	order := q.counter
	q.counter++
	q.sent = append(q.sent, outPkt{order: order, msg: msg})
	log.Tracef("queueing outbound packet order=%d: %v", order, dumpMsg(msg))
	q.cq.ChanIn() <- msg
	return order
}

// OrderCounter reports the next order number this queue will assign
// (spec.md §4.5). The counter lives only in this in-memory queue; channeldb
// has no column for it.
func (q *OutQueue) OrderCounter() uint64 {
	return q.counter
}

// Replay resends every queued packet with an order number strictly
// greater than ack, honoring a peer's PKT_RECONNECT(ack) without
// recomputing channel state (spec.md §6's supplemented reconnect
// handling, grounded on original_source's connection-resumption path in
// daemon/packets.c).
func (q *OutQueue) Replay(ack uint64) {
	for _, p := range q.sent {
		if p.order > ack {
			q.cq.ChanIn() <- p.msg
		}
	}
}

// ProduceOpen builds the PKT_OPEN this side sends to propose a channel.
func ProduceOpen(q *OutQueue, revocationHash, nextRevocationHash chainhash.Hash, commitKey, finalKey [33]byte,
	delay lnwire.Locktime, feeRate uint64, anchor lnwire.AnchorOffer, minDepth uint32) uint64 {

	msg := &lnwire.OpenChannel{
		RevocationHash:     [32]byte(revocationHash),
		NextRevocationHash: [32]byte(nextRevocationHash),
		CommitKey:          commitKey,
		FinalKey:           finalKey,
		Delay:              delay,
		InitialFeeRate:     feeRate,
		Anchor:             anchor,
		MinDepth:           minDepth,
	}
	return q.enqueue(msg)
}

// ProduceAnchor builds the PKT_OPEN_ANCHOR the anchor-funding side sends
// once its funding transaction is constructed.
func ProduceAnchor(q *OutQueue, txid chainhash.Hash, index uint32, amount uint64) uint64 {
	return q.enqueue(&lnwire.OpenAnchorMsg{TxID: [32]byte(txid), OutputIndex: index, Amount: amount})
}

// ProduceOpenCommitSig builds the PKT_OPEN_COMMIT_SIG carrying the
// funder's signature over the non-funder's initial commitment.
func ProduceOpenCommitSig(q *OutQueue, sig lnwire.CompactSig) uint64 {
	return q.enqueue(&lnwire.OpenCommitSig{Sig: sig})
}

// ProduceOpenComplete builds the PKT_OPEN_COMPLETE that ends channel
// establishment once both sides have exchanged signatures.
func ProduceOpenComplete(q *OutQueue) uint64 {
	return q.enqueue(&lnwire.OpenComplete{})
}

// ProduceAddHTLC builds the PKT_UPDATE_ADD_HTLC that proposes h, assigned
// the id h already carries (the caller picks the id before constructing
// the HTLC record).
func ProduceAddHTLC(q *OutQueue, h *htlc.HTLC) uint64 {
	return q.enqueue(&lnwire.UpdateAddHTLC{
		ID:         h.ID,
		AmountMsat: h.AmountMsat,
		RHash:      [32]byte(h.RHash),
		Expiry:     h.Expiry,
		Routing:    h.Routing,
	})
}

// ProduceFulfillHTLC builds the PKT_UPDATE_FULFILL_HTLC releasing the
// preimage for HTLC id.
func ProduceFulfillHTLC(q *OutQueue, id uint64, preimage chainhash.Hash) uint64 {
	return q.enqueue(lnwire.NewUpdateFulfillHTLC(id, [32]byte(preimage)))
}

// ProduceFailHTLC builds the PKT_UPDATE_FAIL_HTLC failing HTLC id with an
// opaque reason blob.
func ProduceFailHTLC(q *OutQueue, id uint64, reason []byte) uint64 {
	return q.enqueue(&lnwire.UpdateFailHTLC{ID: id, Reason: reason})
}

// ProduceCommit builds the PKT_UPDATE_COMMIT that proposes the staged
// changes as the next commitment. sig is absent (HasSig false) when
// nothing has changed since the last commit — the symmetric case
// AcceptCommit checks for on the receiving side.
func ProduceCommit(q *OutQueue, sig *lnwire.CompactSig) uint64 {
	msg := &lnwire.UpdateCommit{}
	if sig != nil {
		msg.HasSig = true
		msg.Sig = *sig
	}
	return q.enqueue(msg)
}

// ProduceRevocation builds the PKT_UPDATE_REVOCATION that reveals the
// preimage retiring the previous commitment, along with the next
// revocation hash this side commits to.
func ProduceRevocation(q *OutQueue, preimage, nextRevocationHash chainhash.Hash) uint64 {
	return q.enqueue(&lnwire.UpdateRevocation{
		RevocationPreimage: [32]byte(preimage),
		NextRevocationHash: [32]byte(nextRevocationHash),
	})
}

// ProduceCloseShutdown builds the PKT_CLOSE_SHUTDOWN that begins or
// responds to cooperative close, carrying the script this side wants its
// settlement output paid to.
func ProduceCloseShutdown(q *OutQueue, scriptPubkey []byte) uint64 {
	return q.enqueue(&lnwire.CloseShutdown{ScriptPubkey: scriptPubkey})
}

// ProduceCloseSignature builds the PKT_CLOSE_SIGNATURE proposing a
// closing transaction fee and this side's signature over it.
func ProduceCloseSignature(q *OutQueue, fee uint64, sig lnwire.CompactSig) uint64 {
	return q.enqueue(&lnwire.CloseSignature{Fee: fee, Sig: sig})
}

// ProduceError builds the PKT_ERR reporting a ProtocolError to the peer
// before the connection tears the channel down.
func ProduceError(q *OutQueue, problem string) uint64 {
	return q.enqueue(&lnwire.Error{Problem: problem})
}

// ProduceReconnect builds the PKT_RECONNECT announcing, on a fresh
// connection to an already-known peer, the highest order number this
// side has received so far — prompting the peer to Replay anything
// beyond it.
func ProduceReconnect(q *OutQueue, ack uint64) uint64 {
	return q.enqueue(&lnwire.Reconnect{Ack: ack})
}
