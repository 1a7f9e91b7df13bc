package sessions

import (
	"context"
	"log/slog"
	"time"

	application "agora/contexts/civic-governance/voting-lifecycle/application"
	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/domain/services"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

// Manager owns the session window rules shared by commands, queries, and the
// sweeper: lazy expiry, option backfill, and outcome resolution. Sessions past
// their end stay "active" in storage until someone touches them; every touch
// path funnels through here so the observable state is always consistent.
type Manager struct {
	Proposals ports.ProposalRepository
	Sessions  ports.SessionRepository
	Votes     ports.VoteRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// EnsureWindowOpen verifies the session accepts votes at the given instant.
// A session past its end is resolved first, then reported as expired, so the
// caller observes the same state a later reader would.
func (m Manager) EnsureWindowOpen(ctx context.Context, session entities.VotingSession, now time.Time) error {
	if session.Status != entities.SessionStatusActive {
		return domainerrors.ErrSessionNotActive
	}
	if !session.Started(now) {
		return domainerrors.ErrVotingNotStarted
	}
	if session.Ended(now) {
		if _, _, err := m.Resolve(ctx, session); err != nil {
			return err
		}
		return domainerrors.ErrVotingExpired
	}
	return nil
}

// Options returns the session's ballot, backfilling the default simple ballot
// for simple-method sessions persisted without options.
func (m Manager) Options(ctx context.Context, session entities.VotingSession) ([]entities.VotingOption, error) {
	options, err := m.Sessions.ListOptions(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 || session.Method != entities.MethodSimple {
		return options, nil
	}
	seeds := entities.DefaultSimpleOptions()
	for i := range seeds {
		optionID, err := m.IDGen.NewID(ctx)
		if err != nil {
			return nil, err
		}
		seeds[i].OptionID = optionID
		seeds[i].SessionID = session.SessionID
	}
	return m.Sessions.EnsureOptions(ctx, session.SessionID, seeds)
}

// Resolve tallies the session, records the outcome, and moves the parent
// proposal to its terminal voting verdict. The session passes through
// tallying so concurrent resolvers short-circuit instead of double-counting.
func (m Manager) Resolve(ctx context.Context, session entities.VotingSession) (services.Outcome, entities.VotingSession, error) {
	logger := application.ResolveLogger(m.Logger)
	now := m.now()

	current, claimed, err := m.Sessions.ClaimSessionForTally(ctx, session.SessionID, now)
	if err != nil {
		return services.Outcome{}, entities.VotingSession{}, err
	}
	if !claimed {
		// Another resolver holds or held the claim; report the stored state.
		options, err := m.Sessions.ListOptions(ctx, current.SessionID)
		if err != nil {
			return services.Outcome{}, entities.VotingSession{}, err
		}
		votes, err := m.Votes.ListVotesBySession(ctx, current.SessionID)
		if err != nil {
			return services.Outcome{}, entities.VotingSession{}, err
		}
		return services.ResolveOutcome(current, options, votes), current, nil
	}

	options, err := m.Options(ctx, current)
	if err != nil {
		return services.Outcome{}, entities.VotingSession{}, err
	}
	votes, err := m.Votes.ListVotesBySession(ctx, current.SessionID)
	if err != nil {
		return services.Outcome{}, entities.VotingSession{}, err
	}
	outcome := services.ResolveOutcome(current, options, votes)

	current.Status = entities.SessionStatusCompleted
	current.TotalVotes = outcome.TotalVotes
	current.ResultCalculatedAt = &now
	current.WinnerOptionID = nil
	if outcome.Winner != nil {
		winnerID := outcome.Winner.OptionID
		current.WinnerOptionID = &winnerID
	}
	current.UpdatedAt = now
	if err := m.Sessions.UpdateSession(ctx, current); err != nil {
		return services.Outcome{}, entities.VotingSession{}, err
	}

	proposal, err := m.Proposals.GetProposal(ctx, current.ProposalID)
	if err != nil {
		return services.Outcome{}, entities.VotingSession{}, err
	}
	proposalEvent := ""
	if proposal.Status == entities.ProposalStatusVoting {
		if outcome.Approved {
			proposal.Status = entities.ProposalStatusApproved
			proposalEvent = "proposal.approved"
		} else {
			proposal.Status = entities.ProposalStatusRejected
			proposalEvent = "proposal.rejected"
		}
		// VotingEndedAt keeps the window end recorded at session open.
		proposal.UpdatedAt = now
		if err := m.Proposals.UpdateProposal(ctx, proposal); err != nil {
			return services.Outcome{}, entities.VotingSession{}, err
		}
	}

	if err := m.appendResolveEvents(ctx, current, proposal, proposalEvent, outcome, now); err != nil {
		return services.Outcome{}, entities.VotingSession{}, err
	}

	logger.Info("voting session resolved",
		"event", "lifecycle_session_resolved",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"session_id", current.SessionID,
		"proposal_id", current.ProposalID,
		"total_votes", outcome.TotalVotes,
		"quorum_met", outcome.QuorumMet,
		"approved", outcome.Approved,
	)
	return outcome, current, nil
}

// Cancel aborts an active or not-yet-started session without a verdict.
func (m Manager) Cancel(ctx context.Context, sessionID string) (entities.VotingSession, error) {
	now := m.now()
	session, err := m.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return entities.VotingSession{}, err
	}
	if session.Status == entities.SessionStatusCompleted || session.Status == entities.SessionStatusCancelled {
		return session, nil
	}
	session.Status = entities.SessionStatusCancelled
	session.UpdatedAt = now
	if err := m.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.VotingSession{}, err
	}
	return session, nil
}

func (m Manager) appendResolveEvents(
	ctx context.Context,
	session entities.VotingSession,
	proposal entities.Proposal,
	proposalEvent string,
	outcome services.Outcome,
	now time.Time,
) error {
	if m.Outbox == nil {
		return nil
	}
	winnerValue := ""
	if outcome.Winner != nil {
		winnerValue = outcome.Winner.Value
	}
	eventID, err := m.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := NewLifecycleEnvelope(eventID, "session.completed", session.ProposalID, now, map[string]any{
		"session_id":  session.SessionID,
		"proposal_id": session.ProposalID,
		"total_votes": outcome.TotalVotes,
		"quorum_met":  outcome.QuorumMet,
		"winner":      winnerValue,
		"approved":    outcome.Approved,
	})
	if err != nil {
		return err
	}
	if err := m.Outbox.AppendOutbox(ctx, envelope); err != nil {
		return err
	}
	if proposalEvent == "" {
		return nil
	}
	eventID, err = m.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err = NewLifecycleEnvelope(eventID, proposalEvent, proposal.ProposalID, now, map[string]any{
		"proposal_id":  proposal.ProposalID,
		"workspace_id": proposal.WorkspaceID,
		"status":       string(proposal.Status),
		"total_votes":  outcome.TotalVotes,
	})
	if err != nil {
		return err
	}
	return m.Outbox.AppendOutbox(ctx, envelope)
}

func (m Manager) now() time.Time {
	now := time.Now().UTC()
	if m.Clock != nil {
		now = m.Clock.Now().UTC()
	}
	return now
}
