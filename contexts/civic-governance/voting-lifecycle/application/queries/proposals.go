package queries

import (
	"context"
	"log/slog"
	"strings"

	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

// ProposalListQuery filters the proposal feed.
type ProposalListQuery struct {
	WorkspaceID string
	Status      entities.ProposalStatus
	AuthorID    string
}

// ProposalQueryUseCase serves proposal read models, restricted to the
// workspaces the caller may see. Hidden proposals read as not found rather
// than forbidden so their existence does not leak.
type ProposalQueryUseCase struct {
	Gate      ports.AccessGate
	Proposals ports.ProposalRepository
	Logger    *slog.Logger
}

// ListProposals returns proposals visible to the caller, optionally narrowed
// by workspace, status, or author.
func (uc ProposalQueryUseCase) ListProposals(ctx context.Context, userID string, query ProposalListQuery) ([]entities.Proposal, error) {
	userID = strings.TrimSpace(userID)
	if workspaceID := strings.TrimSpace(query.WorkspaceID); workspaceID != "" {
		if visible, err := uc.Gate.CanView(ctx, userID, workspaceID); err != nil {
			return nil, err
		} else if !visible {
			return []entities.Proposal{}, nil
		}
		return uc.Proposals.ListProposals(ctx, ports.ProposalFilter{
			WorkspaceID: workspaceID,
			Status:      query.Status,
			AuthorID:    strings.TrimSpace(query.AuthorID),
		})
	}

	visible, err := uc.Gate.VisibleWorkspaceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.Proposals.ListProposals(ctx, ports.ProposalFilter{
		Status:              query.Status,
		AuthorID:            strings.TrimSpace(query.AuthorID),
		VisibleWorkspaceIDs: visible,
	})
}

// GetProposal returns one proposal if the caller may see its workspace.
func (uc ProposalQueryUseCase) GetProposal(ctx context.Context, userID string, proposalID string) (entities.Proposal, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return entities.Proposal{}, err
	}
	if visible, err := uc.Gate.CanView(ctx, strings.TrimSpace(userID), proposal.WorkspaceID); err != nil {
		return entities.Proposal{}, err
	} else if !visible {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}
