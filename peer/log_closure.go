package peer

import "github.com/davecgh/go-spew/spew"

// logClosure defers formatting until the logger actually decides to emit,
// the way the teacher's own peer.go avoids spew.Sdump's cost on every
// accepted packet when only Info or above is enabled.
type logClosure func() string

func (c logClosure) String() string {
	return c()
}

func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}

// dumpMsg lazily pretty-prints a wire message for Trace-level logging,
// grounded on peer.go's readMessage/writeMessage trace lines.
func dumpMsg(msg interface{}) logClosure {
	return newLogClosure(func() string {
		return spew.Sdump(msg)
	})
}
