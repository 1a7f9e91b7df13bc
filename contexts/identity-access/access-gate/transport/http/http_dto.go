package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateWorkspaceRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Type             string `json:"type,omitempty"`
	Visibility       string `json:"visibility,omitempty"`
	JurisdictionName string `json:"jurisdiction_name,omitempty"`
	JurisdictionType string `json:"jurisdiction_type,omitempty"`

	QuorumPercentage       int `json:"quorum_percentage,omitempty"`
	VotingPeriodDays       int `json:"voting_period_days,omitempty"`
	MinSignaturesForVoting int `json:"min_signatures_for_voting,omitempty"`

	AllowPublicProposals         *bool `json:"allow_public_proposals,omitempty"`
	AllowPublicVoting            *bool `json:"allow_public_voting,omitempty"`
	RequireVerificationForVoting *bool `json:"require_verification_for_voting,omitempty"`
}

type WorkspaceResponse struct {
	WorkspaceID      string `json:"workspace_id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Description      string `json:"description,omitempty"`
	Type             string `json:"type"`
	Visibility       string `json:"visibility"`
	JurisdictionName string `json:"jurisdiction_name,omitempty"`
	JurisdictionType string `json:"jurisdiction_type,omitempty"`

	QuorumPercentage       int `json:"quorum_percentage"`
	VotingPeriodDays       int `json:"voting_period_days"`
	MinSignaturesForVoting int `json:"min_signatures_for_voting"`

	AllowPublicProposals         bool `json:"allow_public_proposals"`
	AllowPublicVoting            bool `json:"allow_public_voting"`
	RequireVerificationForVoting bool `json:"require_verification_for_voting"`

	OwnerID        string    `json:"owner_id"`
	ProposalsCount int       `json:"proposals_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type WorkspaceListResponse struct {
	Items []WorkspaceResponse `json:"items"`
}

type CapabilitiesResponse struct {
	CanViewPrivate bool `json:"can_view_private"`
	CanParticipate bool `json:"can_participate"`
	CanVote        bool `json:"can_vote"`
	CanModerate    bool `json:"can_moderate"`
}
