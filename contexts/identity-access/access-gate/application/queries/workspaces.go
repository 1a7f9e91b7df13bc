package queries

import (
	"context"
	"strings"

	"agora/contexts/identity-access/access-gate/domain/entities"
	domainerrors "agora/contexts/identity-access/access-gate/domain/errors"
	"agora/contexts/identity-access/access-gate/domain/services"
	"agora/contexts/identity-access/access-gate/ports"
)

// WorkspaceUseCase serves workspace reads with visibility filtering applied.
type WorkspaceUseCase struct {
	Users      ports.UserRepository
	Workspaces ports.WorkspaceRepository
}

func (uc WorkspaceUseCase) ListWorkspaces(
	ctx context.Context,
	userID string,
	search string,
) ([]entities.Workspace, error) {
	gate := GateUseCase{Users: uc.Users, Workspaces: uc.Workspaces}
	caps, err := gate.Capabilities(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.Workspaces.ListWorkspaces(ctx, ports.WorkspaceFilter{
		PublicOnly: !caps.CanViewPrivate,
		Search:     strings.TrimSpace(search),
	})
}

func (uc WorkspaceUseCase) GetWorkspace(
	ctx context.Context,
	userID string,
	workspaceID string,
) (entities.Workspace, error) {
	workspace, err := uc.Workspaces.GetWorkspace(ctx, strings.TrimSpace(workspaceID))
	if err != nil {
		return entities.Workspace{}, err
	}
	gate := GateUseCase{Users: uc.Users, Workspaces: uc.Workspaces}
	caps, err := gate.Capabilities(ctx, userID)
	if err != nil {
		return entities.Workspace{}, err
	}
	if !services.CanViewWorkspace(caps, workspace) {
		// Hidden workspaces read as absent to avoid leaking their existence.
		return entities.Workspace{}, domainerrors.ErrWorkspaceNotFound
	}
	return workspace, nil
}
