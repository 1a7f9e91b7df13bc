package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "agora/contexts/identity-access/access-gate/application"
	"agora/contexts/identity-access/access-gate/domain/entities"
	domainerrors "agora/contexts/identity-access/access-gate/domain/errors"
	"agora/contexts/identity-access/access-gate/domain/services"
	"agora/contexts/identity-access/access-gate/ports"
)

// GateUseCase answers capability and visibility questions for other modules.
// It is read-only: no method mutates state, so callers apply it freely before
// their own mutating operations.
type GateUseCase struct {
	Users      ports.UserRepository
	Workspaces ports.WorkspaceRepository
	Logger     *slog.Logger
}

// ResolveUser maps a caller credential to an active user record. An empty
// credential or an unknown user fails ErrUnauthenticated; a disabled account
// fails ErrUserInactive.
func (uc GateUseCase) ResolveUser(ctx context.Context, userID string) (entities.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.User{}, domainerrors.ErrUnauthenticated
	}
	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return entities.User{}, domainerrors.ErrUnauthenticated
		}
		return entities.User{}, err
	}
	if !user.IsActive {
		return entities.User{}, domainerrors.ErrUserInactive
	}
	return user, nil
}

// Capabilities resolves the effective capability set for a caller. Anonymous
// callers (empty credential) resolve to the empty set without error.
func (uc GateUseCase) Capabilities(ctx context.Context, userID string) (entities.Capabilities, error) {
	if strings.TrimSpace(userID) == "" {
		return services.ResolveCapabilities(nil), nil
	}
	user, err := uc.ResolveUser(ctx, userID)
	if err != nil {
		return entities.Capabilities{}, err
	}
	return services.ResolveCapabilities(&user), nil
}

// CanView reports whether the caller may see the workspace at all. Anonymous
// callers are allowed when the workspace is public.
func (uc GateUseCase) CanView(ctx context.Context, userID string, workspaceID string) (bool, error) {
	workspace, err := uc.Workspaces.GetWorkspace(ctx, strings.TrimSpace(workspaceID))
	if err != nil {
		return false, err
	}
	caps, err := uc.Capabilities(ctx, userID)
	if err != nil {
		return false, err
	}
	return services.CanViewWorkspace(caps, workspace), nil
}

// RequireParticipation enforces the participation gate of a workspace:
// authenticated, workspace active, visible to the caller, affiliate standing
// under affiliates_only, at least registered standing under public.
func (uc GateUseCase) RequireParticipation(
	ctx context.Context,
	userID string,
	workspaceID string,
) (entities.User, entities.Workspace, error) {
	logger := application.ResolveLogger(uc.Logger)

	user, err := uc.ResolveUser(ctx, userID)
	if err != nil {
		return entities.User{}, entities.Workspace{}, err
	}

	workspace, err := uc.Workspaces.GetWorkspace(ctx, strings.TrimSpace(workspaceID))
	if err != nil {
		return entities.User{}, entities.Workspace{}, err
	}
	if !workspace.IsActive {
		return entities.User{}, entities.Workspace{}, domainerrors.ErrWorkspaceNotFound
	}

	caps := services.ResolveCapabilities(&user)
	if !services.CanViewWorkspace(caps, workspace) {
		logger.Warn("participation denied by visibility",
			"event", "access_gate_participation_denied",
			"module", "identity-access/access-gate",
			"layer", "application",
			"user_id", user.UserID,
			"workspace_id", workspace.WorkspaceID,
			"visibility", string(workspace.Visibility),
		)
		return entities.User{}, entities.Workspace{}, domainerrors.ErrForbidden
	}
	if workspace.Visibility == entities.VisibilityAffiliatesOnly && !user.IsAffiliate() {
		return entities.User{}, entities.Workspace{}, domainerrors.ErrForbidden
	}
	if !caps.CanParticipate {
		return entities.User{}, entities.Workspace{}, domainerrors.ErrForbidden
	}
	return user, workspace, nil
}

// RequireProposer layers proposal-creation rules on top of participation.
// Affiliates-only workspaces always accept proposals from affiliates; public
// workspaces honor the allow_public_proposals flag with a superuser override.
func (uc GateUseCase) RequireProposer(
	ctx context.Context,
	userID string,
	workspaceID string,
) (entities.User, entities.Workspace, error) {
	user, workspace, err := uc.RequireParticipation(ctx, userID, workspaceID)
	if err != nil {
		return entities.User{}, entities.Workspace{}, err
	}
	if workspace.Visibility == entities.VisibilityPublic &&
		!workspace.AllowPublicProposals && !user.IsSuperuser {
		return entities.User{}, entities.Workspace{}, domainerrors.ErrForbidden
	}
	return user, workspace, nil
}

// RequireVoter layers vote-casting rules on top of participation: the caller
// must hold the vote capability, and public workspaces additionally honor the
// allow_public_voting and require_verification_for_voting flags. Under
// affiliates_only those flags are advisory because affiliate standing is
// already required.
func (uc GateUseCase) RequireVoter(
	ctx context.Context,
	userID string,
	workspaceID string,
) (entities.User, entities.Workspace, error) {
	user, workspace, err := uc.RequireParticipation(ctx, userID, workspaceID)
	if err != nil {
		return entities.User{}, entities.Workspace{}, err
	}
	caps := services.ResolveCapabilities(&user)
	if !caps.CanVote {
		return entities.User{}, entities.Workspace{}, domainerrors.ErrForbidden
	}
	if workspace.Visibility == entities.VisibilityPublic && !user.IsSuperuser {
		if !workspace.AllowPublicVoting {
			return entities.User{}, entities.Workspace{}, domainerrors.ErrForbidden
		}
		if workspace.RequireVerificationForVoting && !user.IsAffiliate() {
			return entities.User{}, entities.Workspace{}, domainerrors.ErrForbidden
		}
	}
	return user, workspace, nil
}

// RequireModerator resolves the caller and demands moderation capability.
func (uc GateUseCase) RequireModerator(ctx context.Context, userID string) (entities.User, error) {
	user, err := uc.ResolveUser(ctx, userID)
	if err != nil {
		return entities.User{}, err
	}
	if !services.ResolveCapabilities(&user).CanModerate {
		return entities.User{}, domainerrors.ErrForbidden
	}
	return user, nil
}

// Workspace exposes an active workspace record for policy reads
// (voting-period and quorum defaults) by the composition root.
func (uc GateUseCase) Workspace(ctx context.Context, workspaceID string) (entities.Workspace, error) {
	workspace, err := uc.Workspaces.GetWorkspace(ctx, strings.TrimSpace(workspaceID))
	if err != nil {
		return entities.Workspace{}, err
	}
	if !workspace.IsActive {
		return entities.Workspace{}, domainerrors.ErrWorkspaceNotFound
	}
	return workspace, nil
}
