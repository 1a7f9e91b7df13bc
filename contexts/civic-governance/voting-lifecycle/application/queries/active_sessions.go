package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/civic-governance/voting-lifecycle/application"
	"agora/contexts/civic-governance/voting-lifecycle/application/sessions"
	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

// SessionStats is the derived per-option breakdown of an active session.
type SessionStats struct {
	Total   int
	Yes     int
	No      int
	Abstain int
}

// UserVoteState reports the caller's standing in one session.
type UserVoteState struct {
	HasVoted bool
	Choice   string
}

// ActiveSessionView is one row of the active-sessions feed.
type ActiveSessionView struct {
	Session   entities.VotingSession
	Proposal  entities.Proposal
	Options   []entities.VotingOption
	Stats     SessionStats
	UserState UserVoteState
}

// SessionQueryUseCase serves session read models. Reads are visibility-aware
// and apply the same lazy expiry as the write path, so a feed never shows a
// session past its end as open.
type SessionQueryUseCase struct {
	Gate      ports.AccessGate
	Proposals ports.ProposalRepository
	Sessions  ports.SessionRepository
	Votes     ports.VoteRepository
	Lifecycle sessions.Manager
	Clock     ports.Clock
	Logger    *slog.Logger
}

// ListActiveSessions returns the open sessions the caller may see, each with
// live stats and the caller's own vote state. Sessions found past their end
// are resolved and dropped from the feed.
func (uc SessionQueryUseCase) ListActiveSessions(ctx context.Context, userID string) ([]ActiveSessionView, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID = strings.TrimSpace(userID)

	visible, err := uc.Gate.VisibleWorkspaceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, err := uc.Sessions.ListActiveSessions(ctx, visible)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	views := make([]ActiveSessionView, 0, len(active))
	for _, session := range active {
		if session.Ended(now) {
			if _, _, err := uc.Lifecycle.Resolve(ctx, session); err != nil {
				logger.Error("active session lazy resolve failed",
					"event", "lifecycle_active_feed_resolve_failed",
					"module", "civic-governance/voting-lifecycle",
					"layer", "application",
					"session_id", session.SessionID,
					"error", err.Error(),
				)
				return nil, err
			}
			continue
		}
		view, err := uc.buildView(ctx, session, userID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (uc SessionQueryUseCase) buildView(
	ctx context.Context,
	session entities.VotingSession,
	userID string,
) (ActiveSessionView, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, session.ProposalID)
	if err != nil {
		return ActiveSessionView{}, err
	}
	options, err := uc.Lifecycle.Options(ctx, session)
	if err != nil {
		return ActiveSessionView{}, err
	}
	votes, err := uc.Votes.ListVotesBySession(ctx, session.SessionID)
	if err != nil {
		return ActiveSessionView{}, err
	}

	// Votes carry their choice value, so the breakdown needs no option join.
	stats := SessionStats{Total: len(votes)}
	for _, v := range votes {
		switch v.Choice {
		case entities.OptionValueYes:
			stats.Yes++
		case entities.OptionValueNo:
			stats.No++
		case entities.OptionValueAbstain:
			stats.Abstain++
		}
	}

	state := UserVoteState{}
	if userID != "" {
		if vote, found, err := uc.Votes.GetVoteByIdentity(ctx, session.SessionID, userID); err != nil {
			return ActiveSessionView{}, err
		} else if found {
			state.HasVoted = true
			state.Choice = vote.Choice
		}
	}

	return ActiveSessionView{
		Session:   session,
		Proposal:  proposal,
		Options:   options,
		Stats:     stats,
		UserState: state,
	}, nil
}

func (uc SessionQueryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
