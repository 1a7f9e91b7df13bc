package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/identity-access/access-gate/domain/entities"
	domainerrors "agora/contexts/identity-access/access-gate/domain/errors"
	"agora/contexts/identity-access/access-gate/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("access_gate_repo_get_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"email":            row.Email,
			"username":         row.Username,
			"full_name":        row.FullName,
			"level":            row.Level,
			"is_verified":      row.IsVerified,
			"is_active":        row.IsActive,
			"is_superuser":     row.IsSuperuser,
			"reputation_score": row.ReputationScore,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("access_gate_repo_save_user_failed", err,
			"user_id", strings.TrimSpace(user.UserID),
		)
	}
	return nil
}

func (r *Repository) GetWorkspace(ctx context.Context, workspaceID string) (entities.Workspace, error) {
	var row workspaceModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(workspaceID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Workspace{}, domainerrors.ErrWorkspaceNotFound
		}
		return entities.Workspace{}, r.logError("access_gate_repo_get_workspace_failed", err,
			"workspace_id", strings.TrimSpace(workspaceID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetWorkspaceBySlug(ctx context.Context, slug string) (entities.Workspace, bool, error) {
	var row workspaceModel
	err := r.db.WithContext(ctx).
		Where("slug = ?", strings.TrimSpace(slug)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Workspace{}, false, nil
		}
		return entities.Workspace{}, false, r.logError("access_gate_repo_get_workspace_by_slug_failed", err,
			"slug", strings.TrimSpace(slug),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveWorkspace(ctx context.Context, workspace entities.Workspace) error {
	row := workspaceModelFromEntity(workspace)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":                            row.Name,
			"description":                     row.Description,
			"visibility":                      row.Visibility,
			"jurisdiction_name":               row.JurisdictionName,
			"jurisdiction_type":               row.JurisdictionType,
			"quorum_percentage":               row.QuorumPercentage,
			"voting_period_days":              row.VotingPeriodDays,
			"min_signatures_for_voting":       row.MinSignaturesForVoting,
			"allow_public_proposals":          row.AllowPublicProposals,
			"allow_public_voting":             row.AllowPublicVoting,
			"require_verification_for_voting": row.RequireVerificationForVoting,
			"is_active":                       row.IsActive,
			"is_archived":                     row.IsArchived,
			"proposals_count":                 row.ProposalsCount,
			"updated_at":                      row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("access_gate_repo_save_workspace_failed", err,
			"workspace_id", strings.TrimSpace(workspace.WorkspaceID),
		)
	}
	return nil
}

func (r *Repository) ListWorkspaces(
	ctx context.Context,
	filter ports.WorkspaceFilter,
) ([]entities.Workspace, error) {
	tx := r.db.WithContext(ctx).Model(&workspaceModel{}).
		Where("is_active = ?", true)
	if filter.PublicOnly {
		tx = tx.Where("visibility = ?", string(entities.VisibilityPublic))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var rows []workspaceModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("access_gate_repo_list_workspaces_failed", err)
	}
	items := make([]entities.Workspace, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/access-gate",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("access gate repository operation failed", fields...)
	return err
}

type userModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Email           string    `gorm:"column:email"`
	Username        string    `gorm:"column:username"`
	FullName        string    `gorm:"column:full_name"`
	Level           string    `gorm:"column:level"`
	IsVerified      bool      `gorm:"column:is_verified"`
	IsActive        bool      `gorm:"column:is_active"`
	IsSuperuser     bool      `gorm:"column:is_superuser"`
	ReputationScore int       `gorm:"column:reputation_score"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:          m.ID,
		Email:           m.Email,
		Username:        m.Username,
		FullName:        m.FullName,
		Level:           entities.ParseUserLevel(m.Level),
		IsVerified:      m.IsVerified,
		IsActive:        m.IsActive,
		IsSuperuser:     m.IsSuperuser,
		ReputationScore: m.ReputationScore,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func userModelFromEntity(user entities.User) userModel {
	return userModel{
		ID:              strings.TrimSpace(user.UserID),
		Email:           strings.TrimSpace(user.Email),
		Username:        strings.TrimSpace(user.Username),
		FullName:        strings.TrimSpace(user.FullName),
		Level:           user.Level.String(),
		IsVerified:      user.IsVerified,
		IsActive:        user.IsActive,
		IsSuperuser:     user.IsSuperuser,
		ReputationScore: user.ReputationScore,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

type workspaceModel struct {
	ID                           string    `gorm:"column:id;primaryKey"`
	Name                         string    `gorm:"column:name"`
	Slug                         string    `gorm:"column:slug"`
	Description                  string    `gorm:"column:description"`
	Type                         string    `gorm:"column:type"`
	Visibility                   string    `gorm:"column:visibility"`
	JurisdictionName             string    `gorm:"column:jurisdiction_name"`
	JurisdictionType             string    `gorm:"column:jurisdiction_type"`
	QuorumPercentage             int       `gorm:"column:quorum_percentage"`
	VotingPeriodDays             int       `gorm:"column:voting_period_days"`
	MinSignaturesForVoting       int       `gorm:"column:min_signatures_for_voting"`
	AllowPublicProposals         bool      `gorm:"column:allow_public_proposals"`
	AllowPublicVoting            bool      `gorm:"column:allow_public_voting"`
	RequireVerificationForVoting bool      `gorm:"column:require_verification_for_voting"`
	IsActive                     bool      `gorm:"column:is_active"`
	IsArchived                   bool      `gorm:"column:is_archived"`
	OwnerID                      string    `gorm:"column:owner_id"`
	ProposalsCount               int       `gorm:"column:proposals_count"`
	CreatedAt                    time.Time `gorm:"column:created_at"`
	UpdatedAt                    time.Time `gorm:"column:updated_at"`
}

func (workspaceModel) TableName() string {
	return "workspaces"
}

func (m workspaceModel) toEntity() entities.Workspace {
	return entities.Workspace{
		WorkspaceID:                  m.ID,
		Name:                         m.Name,
		Slug:                         m.Slug,
		Description:                  m.Description,
		Type:                         entities.WorkspaceType(m.Type),
		Visibility:                   entities.WorkspaceVisibility(m.Visibility),
		JurisdictionName:             m.JurisdictionName,
		JurisdictionType:             m.JurisdictionType,
		QuorumPercentage:             m.QuorumPercentage,
		VotingPeriodDays:             m.VotingPeriodDays,
		MinSignaturesForVoting:       m.MinSignaturesForVoting,
		AllowPublicProposals:         m.AllowPublicProposals,
		AllowPublicVoting:            m.AllowPublicVoting,
		RequireVerificationForVoting: m.RequireVerificationForVoting,
		IsActive:                     m.IsActive,
		IsArchived:                   m.IsArchived,
		OwnerID:                      m.OwnerID,
		ProposalsCount:               m.ProposalsCount,
		CreatedAt:                    m.CreatedAt,
		UpdatedAt:                    m.UpdatedAt,
	}
}

func workspaceModelFromEntity(workspace entities.Workspace) workspaceModel {
	return workspaceModel{
		ID:                           strings.TrimSpace(workspace.WorkspaceID),
		Name:                         workspace.Name,
		Slug:                         workspace.Slug,
		Description:                  workspace.Description,
		Type:                         string(workspace.Type),
		Visibility:                   string(workspace.Visibility),
		JurisdictionName:             workspace.JurisdictionName,
		JurisdictionType:             workspace.JurisdictionType,
		QuorumPercentage:             workspace.QuorumPercentage,
		VotingPeriodDays:             workspace.VotingPeriodDays,
		MinSignaturesForVoting:       workspace.MinSignaturesForVoting,
		AllowPublicProposals:         workspace.AllowPublicProposals,
		AllowPublicVoting:            workspace.AllowPublicVoting,
		RequireVerificationForVoting: workspace.RequireVerificationForVoting,
		IsActive:                     workspace.IsActive,
		IsArchived:                   workspace.IsArchived,
		OwnerID:                      strings.TrimSpace(workspace.OwnerID),
		ProposalsCount:               workspace.ProposalsCount,
		CreatedAt:                    workspace.CreatedAt,
		UpdatedAt:                    workspace.UpdatedAt,
	}
}
