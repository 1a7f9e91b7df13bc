package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/civic-governance/voting-lifecycle/application"
	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

const defaultVotingWindowDays = 15

// CreateProposalCommand is the write-model input for proposal submission.
type CreateProposalCommand struct {
	UserID        string
	WorkspaceID   string
	Title         string
	Summary       string
	Justification string
	FullText      string
	Type          entities.ProposalType
	// QuorumRequired overrides the workspace default when positive.
	QuorumRequired int
	// VotingDays overrides the workspace voting period when positive.
	VotingDays int
}

// CreateProposalResult carries the proposal and its opening session as
// persisted in the same transaction.
type CreateProposalResult struct {
	Proposal entities.Proposal
	Session  entities.VotingSession
	Options  []entities.VotingOption
}

// ProposalUseCase orchestrates proposal submission and withdrawal. A new
// proposal opens its voting session atomically; there is no draft phase in
// the supported flow.
type ProposalUseCase struct {
	Gate      ports.AccessGate
	Proposals ports.ProposalRepository
	// SessionWriter cancels a proposal's open session on withdrawal.
	SessionWriter ports.SessionRepository
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	// DefaultVotingDays applies when neither the command nor the workspace
	// sets a voting period. Zero falls back to the built-in window.
	DefaultVotingDays int
	Logger            *slog.Logger
}

// CreateProposal validates authorship rights, persists the proposal together
// with its active session and default ballot, and emits proposal.created and
// session.opened to the outbox.
func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (CreateProposalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("proposal create processing started",
		"event", "lifecycle_proposal_create_started",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"user_id", strings.TrimSpace(cmd.UserID),
		"workspace_id", strings.TrimSpace(cmd.WorkspaceID),
	)
	title := strings.TrimSpace(cmd.Title)
	if title == "" || strings.TrimSpace(cmd.WorkspaceID) == "" || !entities.ValidProposalType(cmd.Type) {
		logger.Warn("proposal create validation failed",
			"event", "lifecycle_proposal_create_validation_failed",
			"module", "civic-governance/voting-lifecycle",
			"layer", "application",
			"user_id", strings.TrimSpace(cmd.UserID),
			"workspace_id", strings.TrimSpace(cmd.WorkspaceID),
		)
		return CreateProposalResult{}, domainerrors.ErrInvalidProposalInput
	}

	actor, policy, err := uc.Gate.RequireProposer(ctx, strings.TrimSpace(cmd.UserID), strings.TrimSpace(cmd.WorkspaceID))
	if err != nil {
		return CreateProposalResult{}, err
	}

	now := uc.now()
	proposalID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CreateProposalResult{}, err
	}
	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CreateProposalResult{}, err
	}

	slug, err := uc.uniqueSlug(ctx, policy.WorkspaceID, title)
	if err != nil {
		return CreateProposalResult{}, err
	}

	days := cmd.VotingDays
	if days <= 0 {
		days = policy.VotingPeriodDays
	}
	if days <= 0 {
		days = uc.DefaultVotingDays
	}
	if days <= 0 {
		days = defaultVotingWindowDays
	}
	endsAt := now.AddDate(0, 0, days)

	quorum := cmd.QuorumRequired
	if quorum < 0 {
		quorum = 0
	}

	proposal := entities.Proposal{
		ProposalID:          proposalID,
		WorkspaceID:         policy.WorkspaceID,
		AuthorID:            actor.UserID,
		Number:              proposalNumber(now, proposalID),
		Slug:                slug,
		Title:               title,
		Summary:             strings.TrimSpace(cmd.Summary),
		Justification:       strings.TrimSpace(cmd.Justification),
		FullText:            cmd.FullText,
		Type:                cmd.Type,
		Status:              entities.ProposalStatusVoting,
		QuorumRequired:      quorum,
		ThresholdPercentage: policy.QuorumPercentage,
		VotingStartedAt:     &now,
		VotingEndedAt:       &endsAt,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	session := entities.VotingSession{
		SessionID:      sessionID,
		ProposalID:     proposalID,
		WorkspaceID:    policy.WorkspaceID,
		Title:          title,
		Description:    strings.TrimSpace(cmd.Summary),
		Method:         entities.MethodSimple,
		QuorumRequired: quorum,
		StartsAt:       now,
		EndsAt:         endsAt,
		Status:         entities.SessionStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	options := entities.DefaultSimpleOptions()
	for i := range options {
		optionID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return CreateProposalResult{}, err
		}
		options[i].OptionID = optionID
		options[i].SessionID = sessionID
	}

	if err := uc.Proposals.CreateProposalWithSession(ctx, proposal, session, options); err != nil {
		return CreateProposalResult{}, err
	}

	if err := uc.appendProposalOpened(ctx, proposal, session, now); err != nil {
		return CreateProposalResult{}, err
	}

	logger.Info("proposal created",
		"event", "lifecycle_proposal_created",
		"module", "civic-governance/voting-lifecycle",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"workspace_id", proposal.WorkspaceID,
		"session_id", session.SessionID,
		"number", proposal.Number,
		"ends_at", session.EndsAt.Format(time.RFC3339),
	)
	return CreateProposalResult{Proposal: proposal, Session: session, Options: options}, nil
}

func (uc ProposalUseCase) appendProposalOpened(
	ctx context.Context,
	proposal entities.Proposal,
	session entities.VotingSession,
	now time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLifecycleEnvelope(eventID, "proposal.created", proposal.ProposalID, now, map[string]any{
		"proposal_id":  proposal.ProposalID,
		"workspace_id": proposal.WorkspaceID,
		"author_id":    proposal.AuthorID,
		"number":       proposal.Number,
		"slug":         proposal.Slug,
		"type":         string(proposal.Type),
		"status":       string(proposal.Status),
	})
	if err != nil {
		return err
	}
	if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
		return err
	}
	eventID, err = uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err = newLifecycleEnvelope(eventID, "session.opened", proposal.ProposalID, now, map[string]any{
		"session_id":  session.SessionID,
		"proposal_id": session.ProposalID,
		"starts_at":   session.StartsAt.Format(time.RFC3339),
		"ends_at":     session.EndsAt.Format(time.RFC3339),
		"method":      string(session.Method),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

// uniqueSlug derives a URL slug from the title and suffixes a counter until
// it is free within the workspace.
func (uc ProposalUseCase) uniqueSlug(ctx context.Context, workspaceID string, title string) (string, error) {
	base := slugify(title)
	if base == "" {
		base = "proposal"
	}
	slug := base
	for attempt := 2; ; attempt++ {
		_, found, err := uc.Proposals.GetProposalBySlug(ctx, workspaceID, slug)
		if err != nil {
			return "", err
		}
		if !found {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
}

func slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// proposalNumber builds a human-facing reference like PR-1735689600-1a2b3c.
func proposalNumber(now time.Time, proposalID string) string {
	suffix := strings.ReplaceAll(proposalID, "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("PR-%d-%s", now.Unix(), suffix)
}

func (uc ProposalUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
