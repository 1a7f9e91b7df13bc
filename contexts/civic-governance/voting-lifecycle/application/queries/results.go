package queries

import (
	"context"

	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/domain/services"
)

// SessionResultsView is the tallied outcome of one session.
type SessionResultsView struct {
	Session  entities.VotingSession
	Proposal entities.Proposal
	Outcome  services.Outcome
}

// SessionResults returns the tally of a session the caller may see. An
// active session past its end is resolved first; an active session still in
// its window reports a live tally without a verdict.
func (uc SessionQueryUseCase) SessionResults(ctx context.Context, userID string, sessionID string) (SessionResultsView, error) {
	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return SessionResultsView{}, err
	}
	if visible, err := uc.Gate.CanView(ctx, userID, session.WorkspaceID); err != nil {
		return SessionResultsView{}, err
	} else if !visible {
		return SessionResultsView{}, domainerrors.ErrSessionNotFound
	}

	now := uc.now()
	if session.Status == entities.SessionStatusActive && session.Ended(now) {
		outcome, resolved, err := uc.Lifecycle.Resolve(ctx, session)
		if err != nil {
			return SessionResultsView{}, err
		}
		proposal, err := uc.Proposals.GetProposal(ctx, resolved.ProposalID)
		if err != nil {
			return SessionResultsView{}, err
		}
		return SessionResultsView{Session: resolved, Proposal: proposal, Outcome: outcome}, nil
	}

	options, err := uc.Lifecycle.Options(ctx, session)
	if err != nil {
		return SessionResultsView{}, err
	}
	votes, err := uc.Votes.ListVotesBySession(ctx, session.SessionID)
	if err != nil {
		return SessionResultsView{}, err
	}
	proposal, err := uc.Proposals.GetProposal(ctx, session.ProposalID)
	if err != nil {
		return SessionResultsView{}, err
	}
	return SessionResultsView{
		Session:  session,
		Proposal: proposal,
		Outcome:  services.ResolveOutcome(session, options, votes),
	}, nil
}
