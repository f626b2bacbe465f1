package channeldb

// schema holds the fixed set of tables the store requires (spec.md §4.6).
// There is no migration runner: the schema is small and fixed, so startup
// simply issues CREATE TABLE IF NOT EXISTS for each one.
const schema = `
CREATE TABLE IF NOT EXISTS wallet (
	privkey BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS peers (
	peer BLOB PRIMARY KEY,
	state TEXT NOT NULL,
	offered_anchor TEXT NOT NULL,
	our_feerate INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS peer_address (
	peer BLOB PRIMARY KEY REFERENCES peers(peer),
	addr TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS peer_secrets (
	peer BLOB PRIMARY KEY REFERENCES peers(peer),
	commitkey BLOB NOT NULL,
	finalkey BLOB NOT NULL,
	revocation_seed BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS anchors (
	peer BLOB PRIMARY KEY REFERENCES peers(peer),
	txid BLOB NOT NULL,
	idx INTEGER NOT NULL,
	amount INTEGER NOT NULL,
	ok_depth INTEGER NOT NULL,
	min_depth INTEGER NOT NULL,
	ours INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS their_visible_state (
	peer BLOB PRIMARY KEY REFERENCES peers(peer),
	offered_anchor TEXT NOT NULL,
	commitkey BLOB NOT NULL,
	finalkey BLOB NOT NULL,
	locktime INTEGER NOT NULL,
	mindepth INTEGER NOT NULL,
	commit_fee_rate INTEGER NOT NULL,
	next_revocation_hash BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS commit_info (
	peer BLOB NOT NULL REFERENCES peers(peer),
	side TEXT NOT NULL,
	commit_num INTEGER NOT NULL,
	revocation_hash BLOB NOT NULL,
	xmit_order INTEGER NOT NULL,
	sig BLOB,
	prev_revocation_hash BLOB,
	PRIMARY KEY (peer, side)
);

-- owner distinguishes the two independent id sequences spec.md §3 assigns
-- ("id unique within owner"): without it (peer, id) alone could collide
-- between a locally-offered and a remote-offered HTLC sharing the same id.
CREATE TABLE IF NOT EXISTS htlcs (
	peer BLOB NOT NULL REFERENCES peers(peer),
	id INTEGER NOT NULL,
	owner TEXT NOT NULL,
	state TEXT NOT NULL,
	msatoshis INTEGER NOT NULL,
	expiry INTEGER NOT NULL,
	rhash BLOB NOT NULL,
	r BLOB,
	routing BLOB,
	src_peer BLOB,
	src_id INTEGER,
	PRIMARY KEY (peer, owner, id)
);

CREATE TABLE IF NOT EXISTS shachain (
	peer BLOB PRIMARY KEY REFERENCES peers(peer),
	shachain BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS their_commitments (
	peer BLOB NOT NULL REFERENCES peers(peer),
	txid BLOB NOT NULL,
	commit_num INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS closing (
	peer BLOB PRIMARY KEY REFERENCES peers(peer),
	our_fee INTEGER,
	their_fee INTEGER,
	their_sig BLOB,
	our_script BLOB,
	their_script BLOB,
	shutdown_order INTEGER,
	closing_order INTEGER,
	sigs_in INTEGER NOT NULL DEFAULT 0
);
`
