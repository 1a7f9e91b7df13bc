package commands

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	application "agora/contexts/identity-access/access-gate/application"
	"agora/contexts/identity-access/access-gate/application/queries"
	"agora/contexts/identity-access/access-gate/domain/entities"
	domainerrors "agora/contexts/identity-access/access-gate/domain/errors"
	"agora/contexts/identity-access/access-gate/ports"
)

const (
	defaultQuorumPercentage = 10
	defaultVotingPeriodDays = 7
	defaultMinSignatures    = 500
)

// CreateWorkspaceCommand is the write-model input for workspace creation.
type CreateWorkspaceCommand struct {
	OwnerID          string
	Name             string
	Description      string
	Type             string
	Visibility       string
	JurisdictionName string
	JurisdictionType string

	QuorumPercentage       int
	VotingPeriodDays       int
	MinSignaturesForVoting int

	AllowPublicProposals         *bool
	AllowPublicVoting            *bool
	RequireVerificationForVoting *bool
}

// WorkspaceUseCase orchestrates workspace writes. Creation is restricted to
// affiliates; the owner reference is fixed at creation and never reassigned.
type WorkspaceUseCase struct {
	Users      ports.UserRepository
	Workspaces ports.WorkspaceRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc WorkspaceUseCase) CreateWorkspace(
	ctx context.Context,
	cmd CreateWorkspaceCommand,
) (entities.Workspace, error) {
	logger := application.ResolveLogger(uc.Logger)

	gate := queries.GateUseCase{Users: uc.Users, Workspaces: uc.Workspaces, Logger: uc.Logger}
	owner, err := gate.ResolveUser(ctx, cmd.OwnerID)
	if err != nil {
		return entities.Workspace{}, err
	}
	if !owner.IsAffiliate() {
		return entities.Workspace{}, domainerrors.ErrForbidden
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Workspace{}, domainerrors.ErrInvalidWorkspaceInput
	}
	visibility := entities.WorkspaceVisibility(strings.TrimSpace(cmd.Visibility))
	switch visibility {
	case "":
		visibility = entities.VisibilityPublic
	case entities.VisibilityPublic, entities.VisibilityAffiliatesOnly:
	default:
		return entities.Workspace{}, domainerrors.ErrInvalidWorkspaceInput
	}
	workspaceType := entities.WorkspaceType(strings.TrimSpace(cmd.Type))
	switch workspaceType {
	case "":
		workspaceType = entities.WorkspaceTypePolicyArea
	case entities.WorkspaceTypeJurisdiction, entities.WorkspaceTypePolicyArea, entities.WorkspaceTypeBudget:
	default:
		return entities.Workspace{}, domainerrors.ErrInvalidWorkspaceInput
	}

	slug, err := uc.uniqueSlug(ctx, name)
	if err != nil {
		return entities.Workspace{}, err
	}
	workspaceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Workspace{}, err
	}

	now := uc.Clock.Now().UTC()
	workspace := entities.Workspace{
		WorkspaceID:      workspaceID,
		Name:             name,
		Slug:             slug,
		Description:      strings.TrimSpace(cmd.Description),
		Type:             workspaceType,
		Visibility:       visibility,
		JurisdictionName: strings.TrimSpace(cmd.JurisdictionName),
		JurisdictionType: strings.TrimSpace(cmd.JurisdictionType),

		QuorumPercentage:       valueOrDefault(cmd.QuorumPercentage, defaultQuorumPercentage),
		VotingPeriodDays:       valueOrDefault(cmd.VotingPeriodDays, defaultVotingPeriodDays),
		MinSignaturesForVoting: valueOrDefault(cmd.MinSignaturesForVoting, defaultMinSignatures),

		AllowPublicProposals:         boolOrDefault(cmd.AllowPublicProposals, true),
		AllowPublicVoting:            boolOrDefault(cmd.AllowPublicVoting, true),
		RequireVerificationForVoting: boolOrDefault(cmd.RequireVerificationForVoting, true),

		IsActive:  true,
		OwnerID:   owner.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Workspaces.SaveWorkspace(ctx, workspace); err != nil {
		return entities.Workspace{}, err
	}

	logger.Info("workspace created",
		"event", "access_gate_workspace_created",
		"module", "identity-access/access-gate",
		"layer", "application",
		"workspace_id", workspace.WorkspaceID,
		"slug", workspace.Slug,
		"visibility", string(workspace.Visibility),
		"owner_id", owner.UserID,
	)
	return workspace, nil
}

// uniqueSlug derives a URL slug from the name and suffixes on collision.
func (uc WorkspaceUseCase) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	slug := base
	for suffix := 2; ; suffix++ {
		_, taken, err := uc.Workspaces.GetWorkspaceBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, suffix)
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(value string) string {
	normalized := slugPattern.ReplaceAllString(strings.ToLower(value), "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return "workspace"
	}
	return normalized
}

func valueOrDefault(value int, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
