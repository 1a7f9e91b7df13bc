package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/civic-governance/voting-lifecycle/application"
	"agora/contexts/civic-governance/voting-lifecycle/application/sessions"
	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/domain/services"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

// CastVoteCommand records one ballot choice. Choice accepts an option id or
// an option value such as "yes".
type CastVoteCommand struct {
	UserID     string
	ProposalID string
	Choice     string
}

// CastVoteResult returns the persisted vote plus the counter values observed
// in the recording transaction.
type CastVoteResult struct {
	Vote   entities.Vote
	Option entities.VotingOption
	Totals entities.VoteTotals
}

// VoteUseCase enforces the cast-vote pipeline: proposal state, voter
// eligibility, session window, option validity, and the one-vote-per-user
// ledger rule. The duplicate check is delegated to storage so concurrent
// casts race on the unique constraint, not on a read-then-write.
type VoteUseCase struct {
	Gate      ports.AccessGate
	Proposals ports.ProposalRepository
	Sessions  ports.SessionRepository
	Votes     ports.VoteRepository
	Lifecycle sessions.Manager
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CastVote validates and records a single vote, updating the session and
// proposal counters in the same transaction as the insert.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote cast processing started",
		"event", "lifecycle_vote_cast_started",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"user_id", strings.TrimSpace(cmd.UserID),
		"proposal_id", strings.TrimSpace(cmd.ProposalID),
	)
	if strings.TrimSpace(cmd.ProposalID) == "" || strings.TrimSpace(cmd.Choice) == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidOption
	}

	proposal, err := uc.Proposals.GetProposal(ctx, strings.TrimSpace(cmd.ProposalID))
	if err != nil {
		return CastVoteResult{}, err
	}

	// Proposal state is checked before voter eligibility so a closed ballot
	// reports its state, not the caller's standing.
	if proposal.Status.Terminal() {
		return CastVoteResult{}, domainerrors.ErrProposalTerminal
	}
	if proposal.Status != entities.ProposalStatusVoting {
		return CastVoteResult{}, domainerrors.ErrProposalNotInVoting
	}

	actor, err := uc.Gate.RequireVoter(ctx, strings.TrimSpace(cmd.UserID), proposal.WorkspaceID)
	if err != nil {
		return CastVoteResult{}, err
	}

	session, found, err := uc.Sessions.GetOpenSessionByProposal(ctx, proposal.ProposalID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !found {
		return CastVoteResult{}, domainerrors.ErrNoOpenSession
	}

	now := uc.now()
	if err := uc.Lifecycle.EnsureWindowOpen(ctx, session, now); err != nil {
		return CastVoteResult{}, err
	}

	options, err := uc.Lifecycle.Options(ctx, session)
	if err != nil {
		return CastVoteResult{}, err
	}
	option, ok := services.FindOption(options, strings.TrimSpace(cmd.Choice))
	if !ok {
		logger.Warn("vote cast option rejected",
			"event", "lifecycle_vote_cast_invalid_option",
			"module", "civic-governance/voting-lifecycle",
			"layer", "application",
			"session_id", session.SessionID,
			"user_id", actor.UserID,
			"choice", strings.TrimSpace(cmd.Choice),
		)
		return CastVoteResult{}, domainerrors.ErrInvalidOption
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	vote := entities.Vote{
		VoteID:     voteID,
		SessionID:  session.SessionID,
		ProposalID: proposal.ProposalID,
		OptionID:   option.OptionID,
		Choice:     option.Value,
		UserID:     actor.UserID,
		VoteHash:   voteHash(actor.UserID, session.SessionID, now),
		CastAt:     now,
	}

	totals, err := uc.Votes.RecordVote(ctx, vote)
	if err != nil {
		return CastVoteResult{}, err
	}

	if err := uc.appendVoteCast(ctx, vote, proposal, totals, now); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "lifecycle_vote_cast",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"vote_id", vote.VoteID,
		"session_id", vote.SessionID,
		"proposal_id", proposal.ProposalID,
		"user_id", vote.UserID,
		"option", option.Value,
		"session_total_votes", totals.SessionTotalVotes,
	)
	return CastVoteResult{Vote: vote, Option: option, Totals: totals}, nil
}

func (uc VoteUseCase) appendVoteCast(
	ctx context.Context,
	vote entities.Vote,
	proposal entities.Proposal,
	totals entities.VoteTotals,
	now time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLifecycleEnvelope(eventID, "vote.cast", proposal.ProposalID, now, map[string]any{
		"vote_id":             vote.VoteID,
		"session_id":          vote.SessionID,
		"proposal_id":         proposal.ProposalID,
		"workspace_id":        proposal.WorkspaceID,
		"option_id":           vote.OptionID,
		"session_total_votes": totals.SessionTotalVotes,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

// voteHash is an audit digest bound to the cast instant; it is stored once
// and never recomputed.
func voteHash(userID string, sessionID string, castAt time.Time) string {
	raw := fmt.Sprintf("%s:%s:%d", userID, sessionID, castAt.UnixNano())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
