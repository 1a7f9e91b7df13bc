package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/civic-governance/voting-lifecycle/application"
	"agora/contexts/civic-governance/voting-lifecycle/application/sessions"
	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

// WithdrawProposalCommand retires a proposal before its vote concludes.
type WithdrawProposalCommand struct {
	UserID     string
	ProposalID string
	Reason     string
}

// WithdrawProposal moves a non-terminal proposal to withdrawn and cancels its
// open session. Only the author or a workspace moderator may withdraw.
func (uc ProposalUseCase) WithdrawProposal(ctx context.Context, cmd WithdrawProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("proposal withdraw processing started",
		"event", "lifecycle_proposal_withdraw_started",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"user_id", strings.TrimSpace(cmd.UserID),
		"proposal_id", strings.TrimSpace(cmd.ProposalID),
	)

	proposal, err := uc.Proposals.GetProposal(ctx, strings.TrimSpace(cmd.ProposalID))
	if err != nil {
		return entities.Proposal{}, err
	}

	actor, err := uc.Gate.ResolveActor(ctx, strings.TrimSpace(cmd.UserID))
	if err != nil {
		return entities.Proposal{}, err
	}
	if actor.UserID != proposal.AuthorID {
		if _, err := uc.Gate.RequireModerator(ctx, actor.UserID, proposal.WorkspaceID); err != nil {
			return entities.Proposal{}, err
		}
	}

	if proposal.Status.Terminal() {
		return entities.Proposal{}, domainerrors.ErrProposalTerminal
	}

	now := uc.now()
	if session, found, err := uc.openSession(ctx, proposal.ProposalID); err != nil {
		return entities.Proposal{}, err
	} else if found {
		session.Status = entities.SessionStatusCancelled
		session.UpdatedAt = now
		if err := uc.SessionWriter.UpdateSession(ctx, session); err != nil {
			return entities.Proposal{}, err
		}
	}

	proposal.Status = entities.ProposalStatusWithdrawn
	proposal.UpdatedAt = now
	if err := uc.Proposals.UpdateProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}

	if err := uc.appendProposalWithdrawn(ctx, proposal, strings.TrimSpace(cmd.Reason), now); err != nil {
		return entities.Proposal{}, err
	}

	logger.Info("proposal withdrawn",
		"event", "lifecycle_proposal_withdrawn",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"workspace_id", proposal.WorkspaceID,
		"actor_id", actor.UserID,
	)
	return proposal, nil
}

func (uc ProposalUseCase) openSession(ctx context.Context, proposalID string) (entities.VotingSession, bool, error) {
	if uc.SessionWriter == nil {
		return entities.VotingSession{}, false, nil
	}
	return uc.SessionWriter.GetOpenSessionByProposal(ctx, proposalID)
}

func (uc ProposalUseCase) appendProposalWithdrawn(
	ctx context.Context,
	proposal entities.Proposal,
	reason string,
	now time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLifecycleEnvelope(eventID, "proposal.withdrawn", proposal.ProposalID, now, map[string]any{
		"proposal_id":  proposal.ProposalID,
		"workspace_id": proposal.WorkspaceID,
		"reason":       reason,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

// CloseSessionCommand ends an active session ahead of its scheduled window.
type CloseSessionCommand struct {
	UserID    string
	SessionID string
}

// SessionUseCase hosts moderator session controls.
type SessionUseCase struct {
	Gate      ports.AccessGate
	Sessions  ports.SessionRepository
	Lifecycle sessions.Manager
	Clock     ports.Clock
	Logger    *slog.Logger
}

// CloseSession resolves an active session immediately. Moderator only.
func (uc SessionUseCase) CloseSession(ctx context.Context, cmd CloseSessionCommand) (entities.VotingSession, error) {
	logger := application.ResolveLogger(uc.Logger)

	session, err := uc.Sessions.GetSession(ctx, strings.TrimSpace(cmd.SessionID))
	if err != nil {
		return entities.VotingSession{}, err
	}
	actor, err := uc.Gate.RequireModerator(ctx, strings.TrimSpace(cmd.UserID), session.WorkspaceID)
	if err != nil {
		return entities.VotingSession{}, err
	}
	if session.Status != entities.SessionStatusActive {
		return entities.VotingSession{}, domainerrors.ErrSessionNotActive
	}

	_, resolved, err := uc.Lifecycle.Resolve(ctx, session)
	if err != nil {
		return entities.VotingSession{}, err
	}

	logger.Info("voting session closed",
		"event", "lifecycle_session_closed",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"session_id", resolved.SessionID,
		"proposal_id", resolved.ProposalID,
		"actor_id", actor.UserID,
	)
	return resolved, nil
}
