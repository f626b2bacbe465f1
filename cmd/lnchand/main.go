// Command lnchand runs the off-chain payment-channel core as a standalone
// process: it opens the durable channel store, loads every known peer and
// checks their HTLC source links on startup, and leaves connection handling, wire
// framing, and on-chain transaction construction to whatever process wires
// a transport and a lnwallet.ChainAdapter in front of it (spec.md §2's
// boundary). There is no RPC server here — that surface is out of scope.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/lnchand/lnchand/channeldb"
	"github.com/lnchand/lnchand/lnwire"
)

func lnchandMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setLogLevels(cfg.LogLevel)

	lnchLog.Infof("opening channel database at %s", cfg.DataDir)
	db, err := channeldb.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("unable to open channeldb: %w", err)
	}
	defer db.Close()

	var ids []lnwire.PeerID
	peers := make(map[lnwire.PeerID]*channeldb.Peer)
	err = db.View(func(q *sql.DB) error {
		var err error
		ids, err = channeldb.LoadAllPeerIDs(q)
		if err != nil {
			return fmt.Errorf("unable to list known peers: %w", err)
		}
		lnchLog.Infof("found %d known peer(s) on disk", len(ids))

		for _, id := range ids {
			p, err := channeldb.LoadPeer(q, id)
			if err != nil {
				lnchLog.Errorf("unable to load peer %s: %v", id, err)
				continue
			}
			peers[id] = p
			lnchLog.Infof("loaded peer %s in state %s with %d htlc(s)",
				id, p.State, len(p.HTLCs))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := channeldb.ResolveSrcLinks(peers); err != nil {
		return fmt.Errorf("recovery failed: %w", err)
	}

	_ = cfg.peerConfig()

	lnchLog.Info("lnchand core ready; awaiting a transport to drive it")

	return nil
}

func main() {
	if err := lnchandMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
