package htlc

import "fmt"

// State is a node in the HTLC state-machine lattice (spec.md §4.3). The
// machine is built from two mirrored five-stage paths — one for HTLCs this
// side sends updates about first, one for HTLCs the peer sends updates
// about first — run once for the add (offer) and once for the remove
// (fulfill/fail) half of an HTLC's life. That yields the 20 named states
// below; spec.md's overview table rounds this to "18" when describing the
// machine in prose, but the explicit enumeration in §4.3 is the binding
// definition, so all 20 are implemented (see DESIGN.md).
type State uint8

const (
	// Path for HTLCs this peer offered (owner LOCAL): local proposes,
	// signs, and acks first.
	SentAddHTLC State = iota
	SentAddCommit
	RcvdAddRevocation
	RcvdAddAckCommit
	SentAddAckRevocation

	// Mirror path for HTLCs the remote peer offered (owner REMOTE).
	RcvdAddHTLC
	RcvdAddCommit
	SentAddRevocation
	SentAddAckCommit
	RcvdAddAckRevocation

	// Removal (fulfill/fail) of a LOCAL-owned HTLC: the remote side,
	// which accepted it, initiates the removal.
	RcvdRemoveHTLC
	RcvdRemoveCommit
	SentRemoveRevocation
	SentRemoveAckCommit
	RcvdRemoveAckRevocation

	// Removal of a REMOTE-owned HTLC: the local side, which accepted
	// it, initiates the removal.
	SentRemoveHTLC
	SentRemoveCommit
	RcvdRemoveRevocation
	RcvdRemoveAckCommit
	SentRemoveAckRevocation
)

var stateNames = map[State]string{
	SentAddHTLC:             "SENT_ADD_HTLC",
	SentAddCommit:           "SENT_ADD_COMMIT",
	RcvdAddRevocation:       "RCVD_ADD_REVOCATION",
	RcvdAddAckCommit:        "RCVD_ADD_ACK_COMMIT",
	SentAddAckRevocation:    "SENT_ADD_ACK_REVOCATION",
	RcvdAddHTLC:             "RCVD_ADD_HTLC",
	RcvdAddCommit:           "RCVD_ADD_COMMIT",
	SentAddRevocation:       "SENT_ADD_REVOCATION",
	SentAddAckCommit:        "SENT_ADD_ACK_COMMIT",
	RcvdAddAckRevocation:    "RCVD_ADD_ACK_REVOCATION",
	RcvdRemoveHTLC:          "RCVD_REMOVE_HTLC",
	RcvdRemoveCommit:        "RCVD_REMOVE_COMMIT",
	SentRemoveRevocation:    "SENT_REMOVE_REVOCATION",
	SentRemoveAckCommit:     "SENT_REMOVE_ACK_COMMIT",
	RcvdRemoveAckRevocation: "RCVD_REMOVE_ACK_REVOCATION",
	SentRemoveHTLC:          "SENT_REMOVE_HTLC",
	SentRemoveCommit:        "SENT_REMOVE_COMMIT",
	RcvdRemoveRevocation:    "RCVD_REMOVE_REVOCATION",
	RcvdRemoveAckCommit:     "RCVD_REMOVE_ACK_COMMIT",
	SentRemoveAckRevocation: "SENT_REMOVE_ACK_REVOCATION",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("HTLC_STATE_INVALID(%d)", uint8(s))
}

// StateFromName reverses String, as required when loading a persisted
// state-name column: unknown text on load is a fatal error (spec.md §9).
func StateFromName(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("htlc: unknown state name %q", name)
}

// flags records the two committed-ness bits and their sticky WAS_COMMITTED
// counterparts for a state, as described in spec.md §4.3.
type flags struct {
	localCommitted, remoteCommitted         bool
	localWasCommitted, remoteWasCommitted   bool
}

var stateFlags = map[State]flags{
	SentAddHTLC:             {false, false, false, false},
	SentAddCommit:           {false, false, false, false},
	RcvdAddRevocation:       {false, true, false, true},
	RcvdAddAckCommit:        {false, true, false, true},
	SentAddAckRevocation:    {true, true, true, true},
	RcvdAddHTLC:             {false, false, false, false},
	RcvdAddCommit:           {false, false, false, false},
	SentAddRevocation:       {true, false, true, false},
	SentAddAckCommit:        {true, false, true, false},
	RcvdAddAckRevocation:    {true, true, true, true},
	RcvdRemoveHTLC:          {true, true, true, true},
	RcvdRemoveCommit:        {true, true, true, true},
	SentRemoveRevocation:    {false, true, true, true},
	SentRemoveAckCommit:     {false, true, true, true},
	RcvdRemoveAckRevocation: {false, false, true, true},
	SentRemoveHTLC:          {true, true, true, true},
	SentRemoveCommit:        {true, true, true, true},
	RcvdRemoveRevocation:    {true, false, true, true},
	RcvdRemoveAckCommit:     {true, false, true, true},
	SentRemoveAckRevocation: {false, false, true, true},
}

// LocalCommitted reports whether the HTLC is present in this side's current
// local commitment transaction.
func (s State) LocalCommitted() bool { return stateFlags[s].localCommitted }

// RemoteCommitted reports whether the HTLC is present in the peer's current
// commitment transaction.
func (s State) RemoteCommitted() bool { return stateFlags[s].remoteCommitted }

// LocalWasCommitted is sticky: once the HTLC entered the local commitment
// it stays true even after removal, so replay (spec.md §4.6) knows to apply
// the add before applying the terminal fulfill/fail.
func (s State) LocalWasCommitted() bool { return stateFlags[s].localWasCommitted }

// RemoteWasCommitted is the REMOTE_COMMITTED analogue of LocalWasCommitted.
func (s State) RemoteWasCommitted() bool { return stateFlags[s].remoteWasCommitted }

// Terminal reports whether this is a removed (tombstoned) terminal state:
// the HTLC has been fulfilled or failed and is no longer live in either
// commitment.
func (s State) Terminal() bool {
	return s == RcvdRemoveAckRevocation || s == SentRemoveAckRevocation
}

// AddAcked reports whether this is the terminal state of the add half of the
// lattice: the HTLC is fully committed on both sides and eligible to be
// fulfilled or failed.
func (s State) AddAcked() bool {
	return s == SentAddAckRevocation || s == RcvdAddAckRevocation
}

// Event is one of the four protocol events that can advance any HTLC's
// state (spec.md §4.3): an outbound or inbound commit, or an outbound or
// inbound revocation. Local add/fulfill/fail commands and inbound
// add/fulfill/fail packets are not represented here: adds create new HTLC
// records (see NewLocalOffer/NewRemoteOffer), and fulfills and fails move
// an existing record into a removal path (see BeginLocalRemoval/
// BeginRemoteRemoval).
type Event uint8

const (
	EventOutboundCommit Event = iota
	EventInboundCommit
	EventOutboundRevocation
	EventInboundRevocation
)

var transitions = map[Event]map[State]State{
	EventOutboundCommit: {
		SentAddHTLC:          SentAddCommit,
		SentAddRevocation:    SentAddAckCommit,
		SentRemoveHTLC:       SentRemoveCommit,
		SentRemoveRevocation: SentRemoveAckCommit,
	},
	EventInboundCommit: {
		RcvdAddHTLC:          RcvdAddCommit,
		RcvdAddRevocation:    RcvdAddAckCommit,
		RcvdRemoveHTLC:       RcvdRemoveCommit,
		RcvdRemoveRevocation: RcvdRemoveAckCommit,
	},
	EventOutboundRevocation: {
		RcvdAddCommit:       SentAddRevocation,
		RcvdAddAckCommit:    SentAddAckRevocation,
		RcvdRemoveCommit:    SentRemoveRevocation,
		RcvdRemoveAckCommit: SentRemoveAckRevocation,
	},
	EventInboundRevocation: {
		SentAddCommit:       RcvdAddRevocation,
		SentAddAckCommit:    RcvdAddAckRevocation,
		SentRemoveCommit:    RcvdRemoveRevocation,
		SentRemoveAckCommit: RcvdRemoveAckRevocation,
	},
}

// ErrProtocolViolation is returned when an event does not apply to an
// HTLC's current state: a mismatched state is a protocol error per
// spec.md §4.3 and should produce an Error packet, not a crash.
type ErrProtocolViolation struct {
	State State
	Event Event
}

func (e *ErrProtocolViolation) Error() string {
	return fmt.Sprintf("htlc: event %d not valid from state %s", e.Event, e.State)
}

// Next applies event to the current state, returning the new state or
// ErrProtocolViolation if the event does not apply from this state.
func Next(current State, event Event) (State, error) {
	next, ok := transitions[event][current]
	if !ok {
		return current, &ErrProtocolViolation{State: current, Event: event}
	}
	return next, nil
}
