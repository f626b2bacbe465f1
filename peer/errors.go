// Package peer implements the per-connection packet validators and
// outbound packet queue that drive a channel through open, update, and
// close, grounded on original_source/daemon/packets.c's accept_pkt_*/
// queue_pkt_* functions.
package peer

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// ProtocolError is a peer-caused error (spec.md §7 kind 1): a malformed
// field, a state-machine violation, an unaffordable HTLC, a signature
// mismatch, a duplicate HTLC id, or an over-limit HTLC count. The caller
// reports it by sending an ERROR packet and closing the channel
// gracefully — it is never a crash. cause carries a stack trace captured
// at the point of the violation, useful when these surface in logs far
// from where the packet was actually rejected.
type ProtocolError struct {
	Diagnostic string
	cause      *goerrors.Error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("peer: protocol error: %s", e.Diagnostic)
}

// Unwrap exposes the stack-carrying cause for errors.As/errors.Is chains.
func (e *ProtocolError) Unwrap() error {
	return e.cause
}

// Stack returns the stack trace captured when this error was constructed.
func (e *ProtocolError) Stack() string {
	return string(e.cause.Stack())
}

func protocolErrorf(format string, args ...interface{}) *ProtocolError {
	msg := fmt.Sprintf(format, args...)
	return &ProtocolError{
		Diagnostic: msg,
		cause:      goerrors.Wrap(msg, 1),
	}
}

// ErrUnexpectedPacket is a ProtocolError raised when a packet arrives that
// doesn't apply in the peer's current state (original_source's
// pkt_err_unexpected), distinct from the field-validation errors the
// accept_* functions return directly.
func ErrUnexpectedPacket(kind string) *ProtocolError {
	return protocolErrorf("unexpected packet %s for current state", kind)
}
