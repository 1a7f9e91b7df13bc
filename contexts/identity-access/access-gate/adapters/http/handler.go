package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/identity-access/access-gate/application/commands"
	"agora/contexts/identity-access/access-gate/application/queries"
	"agora/contexts/identity-access/access-gate/domain/entities"
	httptransport "agora/contexts/identity-access/access-gate/transport/http"
)

type Handler struct {
	Workspaces     commands.WorkspaceUseCase
	WorkspaceReads queries.WorkspaceUseCase
	Gate           queries.GateUseCase
	Logger         *slog.Logger
}

func (h Handler) CreateWorkspaceHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateWorkspaceRequest,
) (httptransport.WorkspaceResponse, error) {
	workspace, err := h.Workspaces.CreateWorkspace(ctx, commands.CreateWorkspaceCommand{
		OwnerID:          userID,
		Name:             req.Name,
		Description:      req.Description,
		Type:             req.Type,
		Visibility:       req.Visibility,
		JurisdictionName: req.JurisdictionName,
		JurisdictionType: req.JurisdictionType,

		QuorumPercentage:       req.QuorumPercentage,
		VotingPeriodDays:       req.VotingPeriodDays,
		MinSignaturesForVoting: req.MinSignaturesForVoting,

		AllowPublicProposals:         req.AllowPublicProposals,
		AllowPublicVoting:            req.AllowPublicVoting,
		RequireVerificationForVoting: req.RequireVerificationForVoting,
	})
	if err != nil {
		return httptransport.WorkspaceResponse{}, err
	}
	return mapWorkspace(workspace), nil
}

func (h Handler) ListWorkspacesHandler(
	ctx context.Context,
	userID string,
	search string,
) (httptransport.WorkspaceListResponse, error) {
	workspaces, err := h.WorkspaceReads.ListWorkspaces(ctx, userID, search)
	if err != nil {
		return httptransport.WorkspaceListResponse{}, err
	}
	items := make([]httptransport.WorkspaceResponse, 0, len(workspaces))
	for _, workspace := range workspaces {
		items = append(items, mapWorkspace(workspace))
	}
	return httptransport.WorkspaceListResponse{Items: items}, nil
}

func (h Handler) GetWorkspaceHandler(
	ctx context.Context,
	userID string,
	workspaceID string,
) (httptransport.WorkspaceResponse, error) {
	workspace, err := h.WorkspaceReads.GetWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return httptransport.WorkspaceResponse{}, err
	}
	return mapWorkspace(workspace), nil
}

func (h Handler) CapabilitiesHandler(
	ctx context.Context,
	userID string,
) (httptransport.CapabilitiesResponse, error) {
	caps, err := h.Gate.Capabilities(ctx, userID)
	if err != nil {
		return httptransport.CapabilitiesResponse{}, err
	}
	return httptransport.CapabilitiesResponse{
		CanViewPrivate: caps.CanViewPrivate,
		CanParticipate: caps.CanParticipate,
		CanVote:        caps.CanVote,
		CanModerate:    caps.CanModerate,
	}, nil
}

func mapWorkspace(workspace entities.Workspace) httptransport.WorkspaceResponse {
	return httptransport.WorkspaceResponse{
		WorkspaceID:      workspace.WorkspaceID,
		Name:             workspace.Name,
		Slug:             workspace.Slug,
		Description:      workspace.Description,
		Type:             string(workspace.Type),
		Visibility:       string(workspace.Visibility),
		JurisdictionName: workspace.JurisdictionName,
		JurisdictionType: workspace.JurisdictionType,

		QuorumPercentage:       workspace.QuorumPercentage,
		VotingPeriodDays:       workspace.VotingPeriodDays,
		MinSignaturesForVoting: workspace.MinSignaturesForVoting,

		AllowPublicProposals:         workspace.AllowPublicProposals,
		AllowPublicVoting:            workspace.AllowPublicVoting,
		RequireVerificationForVoting: workspace.RequireVerificationForVoting,

		OwnerID:        workspace.OwnerID,
		ProposalsCount: workspace.ProposalsCount,
		CreatedAt:      workspace.CreatedAt,
	}
}
