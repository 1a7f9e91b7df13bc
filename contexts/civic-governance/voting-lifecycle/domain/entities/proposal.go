package entities

import "time"

type ProposalStatus string

const (
	ProposalStatusDraft            ProposalStatus = "draft"
	ProposalStatusDiscussion       ProposalStatus = "discussion"
	ProposalStatusAwaitingReview   ProposalStatus = "awaiting_review"
	ProposalStatusThresholdReached ProposalStatus = "threshold_reached"
	ProposalStatusVoting           ProposalStatus = "voting"
	ProposalStatusApproved         ProposalStatus = "approved"
	ProposalStatusRejected         ProposalStatus = "rejected"
	ProposalStatusWithdrawn        ProposalStatus = "withdrawn"
)

// Terminal reports whether the status is absorbing: once a proposal is
// approved, rejected, or withdrawn it never re-enters voting.
func (s ProposalStatus) Terminal() bool {
	switch s {
	case ProposalStatusApproved, ProposalStatusRejected, ProposalStatusWithdrawn:
		return true
	default:
		return false
	}
}

type ProposalType string

const (
	ProposalTypeAmendment        ProposalType = "amendment"
	ProposalTypeNewLaw           ProposalType = "new_law"
	ProposalTypeRepeal           ProposalType = "repeal"
	ProposalTypeBudgetAlteration ProposalType = "budget_alteration"
)

func ValidProposalType(t ProposalType) bool {
	switch t {
	case ProposalTypeAmendment, ProposalTypeNewLaw, ProposalTypeRepeal, ProposalTypeBudgetAlteration:
		return true
	default:
		return false
	}
}

// Proposal belongs to exactly one workspace. In the currently supported flow
// a new proposal enters voting directly at creation; the discussion,
// awaiting_review, and threshold_reached statuses are reserved for a
// signature-threshold workflow that no transition drives yet.
type Proposal struct {
	ProposalID  string
	WorkspaceID string
	AuthorID    string

	Number        string
	Slug          string
	Title         string
	Summary       string
	Justification string
	FullText      string

	Type   ProposalType
	Status ProposalStatus

	SignaturesCount int
	VotesCount      int

	QuorumRequired      int
	ThresholdPercentage int

	// Both window bounds are recorded when the session opens and stay fixed;
	// withdrawal and early closure do not rewrite VotingEndedAt.
	VotingStartedAt *time.Time
	VotingEndedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
