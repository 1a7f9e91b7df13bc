package bootstrap

import (
	"context"

	lifecycleports "agora/contexts/civic-governance/voting-lifecycle/ports"
	gatequeries "agora/contexts/identity-access/access-gate/application/queries"
	gateentities "agora/contexts/identity-access/access-gate/domain/entities"
	gateservices "agora/contexts/identity-access/access-gate/domain/services"
	gateports "agora/contexts/identity-access/access-gate/ports"
)

// AccessGateBridge adapts the identity context's gate use case to the
// voting lifecycle's access port. Modules never import each other, so the
// translation between user/workspace records and actor/policy views lives
// here in the composition root.
type AccessGateBridge struct {
	Gate gatequeries.GateUseCase
}

var _ lifecycleports.AccessGate = AccessGateBridge{}

func NewAccessGateBridge(gate gatequeries.GateUseCase) AccessGateBridge {
	return AccessGateBridge{Gate: gate}
}

func (b AccessGateBridge) ResolveActor(ctx context.Context, userID string) (lifecycleports.Actor, error) {
	user, err := b.Gate.ResolveUser(ctx, userID)
	if err != nil {
		return lifecycleports.Actor{}, err
	}
	return actorFrom(user), nil
}

func (b AccessGateBridge) CanView(ctx context.Context, userID string, workspaceID string) (bool, error) {
	return b.Gate.CanView(ctx, userID, workspaceID)
}

// VisibleWorkspaceIDs returns nil for callers who may read private
// workspaces; everyone else sees the active public set.
func (b AccessGateBridge) VisibleWorkspaceIDs(ctx context.Context, userID string) ([]string, error) {
	caps, err := b.Gate.Capabilities(ctx, userID)
	if err != nil {
		return nil, err
	}
	if caps.CanViewPrivate {
		return nil, nil
	}
	workspaces, err := b.Gate.Workspaces.ListWorkspaces(ctx, gateports.WorkspaceFilter{PublicOnly: true})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(workspaces))
	for _, workspace := range workspaces {
		if workspace.IsActive {
			ids = append(ids, workspace.WorkspaceID)
		}
	}
	return ids, nil
}

func (b AccessGateBridge) RequireProposer(
	ctx context.Context,
	userID string,
	workspaceID string,
) (lifecycleports.Actor, lifecycleports.WorkspacePolicy, error) {
	user, workspace, err := b.Gate.RequireProposer(ctx, userID, workspaceID)
	if err != nil {
		return lifecycleports.Actor{}, lifecycleports.WorkspacePolicy{}, err
	}
	return actorFrom(user), policyFrom(workspace), nil
}

func (b AccessGateBridge) RequireVoter(
	ctx context.Context,
	userID string,
	workspaceID string,
) (lifecycleports.Actor, error) {
	user, _, err := b.Gate.RequireVoter(ctx, userID, workspaceID)
	if err != nil {
		return lifecycleports.Actor{}, err
	}
	return actorFrom(user), nil
}

// RequireModerator ignores the workspace: moderation standing is global.
func (b AccessGateBridge) RequireModerator(
	ctx context.Context,
	userID string,
	_ string,
) (lifecycleports.Actor, error) {
	user, err := b.Gate.RequireModerator(ctx, userID)
	if err != nil {
		return lifecycleports.Actor{}, err
	}
	return actorFrom(user), nil
}

func actorFrom(user gateentities.User) lifecycleports.Actor {
	caps := gateservices.ResolveCapabilities(&user)
	return lifecycleports.Actor{
		UserID:      user.UserID,
		IsAffiliate: user.IsAffiliate(),
		IsModerator: caps.CanModerate,
		CanVote:     caps.CanVote,
	}
}

func policyFrom(workspace gateentities.Workspace) lifecycleports.WorkspacePolicy {
	return lifecycleports.WorkspacePolicy{
		WorkspaceID:      workspace.WorkspaceID,
		QuorumPercentage: workspace.QuorumPercentage,
		VotingPeriodDays: workspace.VotingPeriodDays,
	}
}
