package entities

import "time"

type WorkspaceVisibility string

const (
	VisibilityPublic         WorkspaceVisibility = "public"
	VisibilityAffiliatesOnly WorkspaceVisibility = "affiliates_only"
)

type WorkspaceType string

const (
	WorkspaceTypeJurisdiction WorkspaceType = "jurisdiction"
	WorkspaceTypePolicyArea   WorkspaceType = "policy_area"
	WorkspaceTypeBudget       WorkspaceType = "budget"
)

// Workspace is a visibility-scoped container holding proposals and voting
// sessions. Visibility and the permission flags jointly gate proposal
// creation and vote casting; under affiliates_only the flags are advisory
// because affiliate standing is always required there.
type Workspace struct {
	WorkspaceID      string
	Name             string
	Slug             string
	Description      string
	Type             WorkspaceType
	Visibility       WorkspaceVisibility
	JurisdictionName string
	JurisdictionType string

	// Voting defaults applied when a proposal does not supply its own.
	QuorumPercentage       int
	VotingPeriodDays       int
	MinSignaturesForVoting int

	AllowPublicProposals         bool
	AllowPublicVoting            bool
	RequireVerificationForVoting bool

	IsActive   bool
	IsArchived bool

	OwnerID        string
	ProposalsCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}
