package lnwire

import "github.com/btcsuite/btclog"

// log is the package-level logger used by this package. It is disabled by
// default and must be enabled by callers via UseLogger.
var log btclog.Logger

func init() {
	UseLogger(btclog.Disabled)
}

// UseLogger lets a calling package override the logging backend used by
// lnwire.
func UseLogger(logger btclog.Logger) {
	log = logger
}
