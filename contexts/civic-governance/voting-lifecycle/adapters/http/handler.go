package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/civic-governance/voting-lifecycle/application/commands"
	"agora/contexts/civic-governance/voting-lifecycle/application/queries"
	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	"agora/contexts/civic-governance/voting-lifecycle/domain/services"
	httptransport "agora/contexts/civic-governance/voting-lifecycle/transport/http"
)

type Handler struct {
	Proposals     commands.ProposalUseCase
	Votes         commands.VoteUseCase
	Sessions      commands.SessionUseCase
	ProposalReads queries.ProposalQueryUseCase
	SessionReads  queries.SessionQueryUseCase
	Logger        *slog.Logger
}

func (h Handler) CreateProposalHandler(
	ctx context.Context,
	userID string,
	workspaceID string,
	req httptransport.CreateProposalRequest,
) (httptransport.CreateProposalResponse, error) {
	result, err := h.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{
		UserID:         userID,
		WorkspaceID:    workspaceID,
		Title:          req.Title,
		Summary:        req.Summary,
		Justification:  req.Justification,
		FullText:       req.FullText,
		Type:           entities.ProposalType(req.Type),
		QuorumRequired: req.QuorumRequired,
		VotingDays:     req.VotingDays,
	})
	if err != nil {
		return httptransport.CreateProposalResponse{}, err
	}
	return httptransport.CreateProposalResponse{
		Proposal: mapProposal(result.Proposal),
		Session:  mapSession(result.Session),
		Options:  mapOptions(result.Options),
	}, nil
}

func (h Handler) ListProposalsHandler(
	ctx context.Context,
	userID string,
	workspaceID string,
	status string,
	authorID string,
) (httptransport.ProposalListResponse, error) {
	proposals, err := h.ProposalReads.ListProposals(ctx, userID, queries.ProposalListQuery{
		WorkspaceID: workspaceID,
		Status:      entities.ProposalStatus(status),
		AuthorID:    authorID,
	})
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, mapProposal(proposal))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

func (h Handler) GetProposalHandler(
	ctx context.Context,
	userID string,
	proposalID string,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.ProposalReads.GetProposal(ctx, userID, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	userID string,
	proposalID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		UserID:     userID,
		ProposalID: proposalID,
		Choice:     req.Choice,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		VoteID:             result.Vote.VoteID,
		SessionID:          result.Vote.SessionID,
		Option:             result.Option.Value,
		VoteHash:           result.Vote.VoteHash,
		CastAt:             result.Vote.CastAt,
		SessionTotalVotes:  result.Totals.SessionTotalVotes,
		ProposalVotesCount: result.Totals.ProposalVotesCount,
	}, nil
}

func (h Handler) WithdrawProposalHandler(
	ctx context.Context,
	userID string,
	proposalID string,
	req httptransport.WithdrawProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.WithdrawProposal(ctx, commands.WithdrawProposalCommand{
		UserID:     userID,
		ProposalID: proposalID,
		Reason:     req.Reason,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

func (h Handler) ActiveSessionsHandler(
	ctx context.Context,
	userID string,
) (httptransport.ActiveSessionListResponse, error) {
	views, err := h.SessionReads.ListActiveSessions(ctx, userID)
	if err != nil {
		return httptransport.ActiveSessionListResponse{}, err
	}
	items := make([]httptransport.ActiveSessionResponse, 0, len(views))
	for _, view := range views {
		items = append(items, httptransport.ActiveSessionResponse{
			Session:  mapSession(view.Session),
			Proposal: mapProposal(view.Proposal),
			Options:  mapOptions(view.Options),
			Stats: httptransport.SessionStatsResponse{
				Total:   view.Stats.Total,
				Yes:     view.Stats.Yes,
				No:      view.Stats.No,
				Abstain: view.Stats.Abstain,
			},
			UserState: httptransport.UserVoteStateResponse{
				HasVoted: view.UserState.HasVoted,
				Choice:   view.UserState.Choice,
			},
		})
	}
	return httptransport.ActiveSessionListResponse{Items: items}, nil
}

func (h Handler) SessionResultsHandler(
	ctx context.Context,
	userID string,
	sessionID string,
) (httptransport.SessionResultsResponse, error) {
	view, err := h.SessionReads.SessionResults(ctx, userID, sessionID)
	if err != nil {
		return httptransport.SessionResultsResponse{}, err
	}
	return mapResults(view), nil
}

func (h Handler) CloseSessionHandler(
	ctx context.Context,
	userID string,
	sessionID string,
) (httptransport.SessionResponse, error) {
	session, err := h.Sessions.CloseSession(ctx, commands.CloseSessionCommand{
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session), nil
}

func mapProposal(proposal entities.Proposal) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ProposalID:  proposal.ProposalID,
		WorkspaceID: proposal.WorkspaceID,
		AuthorID:    proposal.AuthorID,

		Number:        proposal.Number,
		Slug:          proposal.Slug,
		Title:         proposal.Title,
		Summary:       proposal.Summary,
		Justification: proposal.Justification,
		FullText:      proposal.FullText,

		Type:   string(proposal.Type),
		Status: string(proposal.Status),

		SignaturesCount: proposal.SignaturesCount,
		VotesCount:      proposal.VotesCount,

		QuorumRequired:      proposal.QuorumRequired,
		ThresholdPercentage: proposal.ThresholdPercentage,

		VotingStartedAt: proposal.VotingStartedAt,
		VotingEndedAt:   proposal.VotingEndedAt,
		CreatedAt:       proposal.CreatedAt,
	}
}

func mapSession(session entities.VotingSession) httptransport.SessionResponse {
	resp := httptransport.SessionResponse{
		SessionID:   session.SessionID,
		ProposalID:  session.ProposalID,
		WorkspaceID: session.WorkspaceID,

		Title:       session.Title,
		Description: session.Description,

		Method:         string(session.Method),
		QuorumRequired: session.QuorumRequired,
		StartsAt:       session.StartsAt,
		EndsAt:         session.EndsAt,
		Status:         string(session.Status),

		TotalVotes:         session.TotalVotes,
		ResultCalculatedAt: session.ResultCalculatedAt,
	}
	if session.WinnerOptionID != nil {
		resp.WinnerOptionID = *session.WinnerOptionID
	}
	return resp
}

func mapOptions(options []entities.VotingOption) []httptransport.OptionResponse {
	items := make([]httptransport.OptionResponse, 0, len(options))
	for _, option := range options {
		items = append(items, mapOption(option))
	}
	return items
}

func mapOption(option entities.VotingOption) httptransport.OptionResponse {
	return httptransport.OptionResponse{
		OptionID:    option.OptionID,
		Title:       option.Title,
		Description: option.Description,
		Order:       option.Order,
		Value:       option.Value,
	}
}

func mapResults(view queries.SessionResultsView) httptransport.SessionResultsResponse {
	resp := httptransport.SessionResultsResponse{
		Session:        mapSession(view.Session),
		Proposal:       mapProposal(view.Proposal),
		Tallies:        mapTallies(view.Outcome.Tallies),
		TotalVotes:     view.Outcome.TotalVotes,
		QuorumRequired: view.Outcome.QuorumRequired,
		QuorumMet:      view.Outcome.QuorumMet,
		Approved:       view.Outcome.Approved,
	}
	if view.Outcome.Winner != nil {
		winner := mapOption(*view.Outcome.Winner)
		resp.Winner = &winner
	}
	return resp
}

func mapTallies(tallies []services.OptionTally) []httptransport.OptionTallyResponse {
	items := make([]httptransport.OptionTallyResponse, 0, len(tallies))
	for _, tally := range tallies {
		items = append(items, httptransport.OptionTallyResponse{
			Option: mapOption(tally.Option),
			Count:  tally.Count,
		})
	}
	return items
}
