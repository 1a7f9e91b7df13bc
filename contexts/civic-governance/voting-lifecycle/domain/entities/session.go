package entities

import "time"

type VotingMethod string

const (
	MethodSimple VotingMethod = "simple"
	// Reserved methods, acknowledged extension points without tally support.
	MethodRanked    VotingMethod = "ranked"
	MethodApproval  VotingMethod = "approval"
	MethodQuadratic VotingMethod = "quadratic"
)

type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusTallying  SessionStatus = "tallying"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// VotingSession is a time-boxed ballot instance bound to one proposal. The
// workspace reference is denormalized for query efficiency. TotalVotes is a
// maintained cache updated inside the vote-insert transaction; per-option
// counts are always derived from the vote rows.
type VotingSession struct {
	SessionID   string
	ProposalID  string
	WorkspaceID string

	Title       string
	Description string

	Method         VotingMethod
	QuorumRequired int
	StartsAt       time.Time
	EndsAt         time.Time
	Status         SessionStatus

	TotalVotes         int
	WinnerOptionID     *string
	ResultCalculatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window helpers compare against a supplied now so callers stay clock-driven.

func (s VotingSession) Started(now time.Time) bool {
	return !now.Before(s.StartsAt)
}

func (s VotingSession) Ended(now time.Time) bool {
	return now.After(s.EndsAt)
}

// VotingOption is one selectable choice of a session. Value is the
// caller-facing discriminator; Order fixes display and tie-break order.
// Options are immutable once the session has left draft.
type VotingOption struct {
	OptionID    string
	SessionID   string
	Title       string
	Description string
	Order       int
	Value       string
}

const (
	OptionValueYes     = "yes"
	OptionValueNo      = "no"
	OptionValueAbstain = "abstain"
)

// DefaultSimpleOptions returns the canonical yes/no/abstain ballot in display
// order. Identifiers are left empty for the caller to assign.
func DefaultSimpleOptions() []VotingOption {
	return []VotingOption{
		{Value: OptionValueYes, Title: "In favor", Description: "I agree with the proposal and vote to approve it.", Order: 0},
		{Value: OptionValueNo, Title: "Against", Description: "I disagree with the proposal and vote against it.", Order: 1},
		{Value: OptionValueAbstain, Title: "Abstain", Description: "I prefer not to take a position in this ballot.", Order: 2},
	}
}
