package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateProposalRequest struct {
	Title         string `json:"title"`
	Summary       string `json:"summary,omitempty"`
	Justification string `json:"justification,omitempty"`
	FullText      string `json:"full_text,omitempty"`
	Type          string `json:"type"`

	QuorumRequired int `json:"quorum_required,omitempty"`
	VotingDays     int `json:"voting_days,omitempty"`
}

type ProposalResponse struct {
	ProposalID  string `json:"proposal_id"`
	WorkspaceID string `json:"workspace_id"`
	AuthorID    string `json:"author_id"`

	Number        string `json:"number"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Summary       string `json:"summary,omitempty"`
	Justification string `json:"justification,omitempty"`
	FullText      string `json:"full_text,omitempty"`

	Type   string `json:"type"`
	Status string `json:"status"`

	SignaturesCount int `json:"signatures_count"`
	VotesCount      int `json:"votes_count"`

	QuorumRequired      int `json:"quorum_required"`
	ThresholdPercentage int `json:"threshold_percentage"`

	VotingStartedAt *time.Time `json:"voting_started_at,omitempty"`
	VotingEndedAt   *time.Time `json:"voting_ended_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type CreateProposalResponse struct {
	Proposal ProposalResponse `json:"proposal"`
	Session  SessionResponse  `json:"session"`
	Options  []OptionResponse `json:"options"`
}

type SessionResponse struct {
	SessionID   string `json:"session_id"`
	ProposalID  string `json:"proposal_id"`
	WorkspaceID string `json:"workspace_id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Method         string    `json:"method"`
	QuorumRequired int       `json:"quorum_required"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Status         string    `json:"status"`

	TotalVotes         int        `json:"total_votes"`
	WinnerOptionID     string     `json:"winner_option_id,omitempty"`
	ResultCalculatedAt *time.Time `json:"result_calculated_at,omitempty"`
}

type OptionResponse struct {
	OptionID    string `json:"option_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	Value       string `json:"value"`
}

type CastVoteRequest struct {
	Choice string `json:"choice"`
}

type CastVoteResponse struct {
	VoteID    string    `json:"vote_id"`
	SessionID string    `json:"session_id"`
	Option    string    `json:"option"`
	VoteHash  string    `json:"vote_hash"`
	CastAt    time.Time `json:"cast_at"`

	SessionTotalVotes  int `json:"session_total_votes"`
	ProposalVotesCount int `json:"proposal_votes_count"`
}

type SessionStatsResponse struct {
	Total   int `json:"total"`
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Abstain int `json:"abstain"`
}

type UserVoteStateResponse struct {
	HasVoted bool   `json:"has_voted"`
	Choice   string `json:"choice,omitempty"`
}

type ActiveSessionResponse struct {
	Session   SessionResponse       `json:"session"`
	Proposal  ProposalResponse      `json:"proposal"`
	Options   []OptionResponse      `json:"options"`
	Stats     SessionStatsResponse  `json:"stats"`
	UserState UserVoteStateResponse `json:"user_state"`
}

type ActiveSessionListResponse struct {
	Items []ActiveSessionResponse `json:"items"`
}

type OptionTallyResponse struct {
	Option OptionResponse `json:"option"`
	Count  int            `json:"count"`
}

type SessionResultsResponse struct {
	Session  SessionResponse  `json:"session"`
	Proposal ProposalResponse `json:"proposal"`

	Tallies        []OptionTallyResponse `json:"tallies"`
	TotalVotes     int                   `json:"total_votes"`
	QuorumRequired int                   `json:"quorum_required"`
	QuorumMet      bool                  `json:"quorum_met"`
	Winner         *OptionResponse       `json:"winner,omitempty"`
	Approved       bool                  `json:"approved"`
}

type WithdrawProposalRequest struct {
	Reason string `json:"reason,omitempty"`
}
