package main

import (
	"os"

	"github.com/btcsuite/btclog"

	"github.com/lnchand/lnchand/channeldb"
	"github.com/lnchand/lnchand/htlc"
	"github.com/lnchand/lnchand/lnwallet"
	"github.com/lnchand/lnchand/peer"
	"github.com/lnchand/lnchand/shachain"
)

var backendLog = btclog.NewBackend(os.Stdout)

var (
	lnchLog = backendLog.Logger("LNCH")
	chdbLog = backendLog.Logger("CHDB")
	lnwlLog = backendLog.Logger("LNWL")
	htlcLog = backendLog.Logger("HTLC")
	shchLog = backendLog.Logger("SHCH")
	peerLog = backendLog.Logger("PEER")
)

var subsystemLoggers = map[string]btclog.Logger{
	"LNCH": lnchLog,
	"CHDB": chdbLog,
	"LNWL": lnwlLog,
	"HTLC": htlcLog,
	"SHCH": shchLog,
	"PEER": peerLog,
}

func init() {
	channeldb.UseLogger(chdbLog)
	lnwallet.UseLogger(lnwlLog)
	htlc.UseLogger(htlcLog)
	shachain.UseLogger(shchLog)
	peer.UseLogger(peerLog)
}

// setLogLevels sets every subsystem logger to level, ignoring an
// unparseable level string by falling back to Info (matching btclog's own
// LevelFromString fallback behavior).
func setLogLevels(level string) {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		lvl = btclog.LevelInfo
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}
}
