package channeldb

import "github.com/btcsuite/btclog"

var log btclog.Logger

func init() {
	UseLogger(btclog.Disabled)
}

// UseLogger lets a calling package override the logging backend used by
// channeldb.
func UseLogger(logger btclog.Logger) {
	log = logger
}
