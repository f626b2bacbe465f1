package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/lnchand/lnchand/peer"
)

const (
	defaultDataDir  = "chain.db"
	defaultLogLevel = "info"

	// Chosen from the original daemon's defaults (original_source's
	// daemon/options.c): 30 days of blocks, 10 confirmations, and a
	// 50%-800% acceptance band around this node's own feerate.
	defaultLocktimeMax             = 144 * 30
	defaultAnchorConfirmsMax       = 10
	defaultCommitmentFeeMinPercent = 50
	defaultCommitmentFeeMaxPercent = 800
	defaultMinHTLCExpiry     = 5
	defaultFeeBase           = 546000
	defaultFeePerSatoshi     = 10
)

// config is this daemon's command-line and config-file surface, read with
// jessevdk/go-flags the way the teacher's own entrypoint config does.
type config struct {
	DataDir  string `long:"datadir" description:"path of the sqlite channel database file"`
	LogLevel string `long:"loglevel" description:"logging level for all subsystems"`

	LocktimeMax             uint32 `long:"locktime_max" description:"largest channel delay, in blocks, this node will accept from a peer"`
	AnchorConfirmsMax       uint32 `long:"anchor_confirms_max" description:"largest min_depth this node will accept for a peer-funded anchor"`
	CommitmentFeeMinPercent uint64 `long:"commitment_fee_min_percent" description:"lower bound, as a percentage of our own feerate, on an acceptable peer-proposed commitment feerate"`
	CommitmentFeeMaxPercent uint64 `long:"commitment_fee_max_percent" description:"upper bound, as a percentage of our own feerate, on an acceptable peer-proposed commitment feerate"`
	MinHTLCExpiry           uint32 `long:"min_htlc_expiry" description:"minimum expiry, in blocks, this node will advertise for routed HTLCs"`
	FeeBase                 uint64 `long:"fee_base" description:"base millisatoshi fee this node charges to forward an HTLC"`
	FeePerSatoshi           uint64 `long:"fee_per_satoshi" description:"proportional millisatoshi fee, per satoshi forwarded, this node charges"`
}

func defaultConfig() config {
	return config{
		DataDir:                 defaultDataDir,
		LogLevel:                defaultLogLevel,
		LocktimeMax:             defaultLocktimeMax,
		AnchorConfirmsMax:       defaultAnchorConfirmsMax,
		CommitmentFeeMinPercent: defaultCommitmentFeeMinPercent,
		CommitmentFeeMaxPercent: defaultCommitmentFeeMaxPercent,
		MinHTLCExpiry:           defaultMinHTLCExpiry,
		FeeBase:                 defaultFeeBase,
		FeePerSatoshi:           defaultFeePerSatoshi,
	}
}

// loadConfig parses the command line over defaultConfig's values, the way
// the teacher's loadConfig layers flags over a hard-coded default struct.
func loadConfig() (*config, error) {
	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if cfg.CommitmentFeeMinPercent > cfg.CommitmentFeeMaxPercent {
		return nil, fmt.Errorf("commitment_fee_min_percent (%d) exceeds "+
			"commitment_fee_max_percent (%d)", cfg.CommitmentFeeMinPercent,
			cfg.CommitmentFeeMaxPercent)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DataDir), 0700); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("unable to create data directory: %w", err)
	}

	return &cfg, nil
}

// peerConfig projects the subset of config the peer package's validators
// need, keeping the go-flags struct tags out of that package entirely.
func (c *config) peerConfig() *peer.Config {
	return &peer.Config{
		LocktimeMax:             c.LocktimeMax,
		AnchorConfirmsMax:       c.AnchorConfirmsMax,
		CommitmentFeeMinPercent: c.CommitmentFeeMinPercent,
		CommitmentFeeMaxPercent: c.CommitmentFeeMaxPercent,
		MinHTLCExpiry:           c.MinHTLCExpiry,
		FeeBase:                 c.FeeBase,
		FeePerSatoshi:           c.FeePerSatoshi,
	}
}
