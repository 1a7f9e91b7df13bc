package entities

import "time"

// Vote is one immutable ballot entry. At most one vote exists per
// (SessionID, UserID); the storage layer enforces the pair uniquely and
// keeps VoteHash unique as well. ProposalID and Choice are denormalized
// at cast time so readers never join back through the session or ballot.
// VoteHash is an audit digest computed at cast time, never recomputed.
type Vote struct {
	VoteID     string
	SessionID  string
	ProposalID string
	OptionID   string
	// Choice is the chosen option's canonical value, e.g. "yes".
	Choice   string
	UserID   string
	VoteHash string
	CastAt   time.Time
}

// VoteTotals carries the counter values observed inside the same transaction
// that inserted a vote, so callers can report consistent numbers without a
// second read.
type VoteTotals struct {
	SessionTotalVotes  int
	ProposalVotesCount int
}
