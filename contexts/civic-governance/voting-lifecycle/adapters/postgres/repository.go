package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
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

func (r *Repository) CreateProposalWithSession(
	ctx context.Context,
	proposal entities.Proposal,
	session entities.VotingSession,
	options []entities.VotingOption,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposalRow := proposalModelFromEntity(proposal)
		if err := tx.Create(&proposalRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return r.logError("lifecycle_repo_create_proposal_failed", err,
				"proposal_id", proposalRow.ID,
				"workspace_id", proposalRow.WorkspaceID,
			)
		}
		sessionRow := sessionModelFromEntity(session)
		if err := tx.Create(&sessionRow).Error; err != nil {
			return r.logError("lifecycle_repo_create_session_failed", err,
				"session_id", sessionRow.ID,
				"proposal_id", sessionRow.ProposalID,
			)
		}
		for _, option := range options {
			optionRow := optionModelFromEntity(option)
			if err := tx.Create(&optionRow).Error; err != nil {
				return r.logError("lifecycle_repo_create_option_failed", err,
					"option_id", optionRow.ID,
					"session_id", optionRow.SessionID,
				)
			}
		}
		return nil
	})
}

func (r *Repository) UpdateProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"title":                row.Title,
			"summary":              row.Summary,
			"justification":        row.Justification,
			"full_text":            row.FullText,
			"status":               row.Status,
			"signatures_count":     row.SignaturesCount,
			"votes_count":          row.VotesCount,
			"quorum_required":      row.QuorumRequired,
			"threshold_percentage": row.ThresholdPercentage,
			"voting_started_at":    row.VotingStartedAt,
			"voting_ended_at":      row.VotingEndedAt,
			"updated_at":           row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_proposal_failed", result.Error, "proposal_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(proposalID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("lifecycle_repo_get_proposal_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetProposalBySlug(ctx context.Context, workspaceID string, slug string) (entities.Proposal, bool, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", strings.TrimSpace(workspaceID)).
		Where("slug = ?", strings.TrimSpace(slug)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, false, nil
		}
		return entities.Proposal{}, false, r.logError("lifecycle_repo_get_proposal_by_slug_failed", err,
			"workspace_id", strings.TrimSpace(workspaceID),
			"slug", strings.TrimSpace(slug),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListProposals(ctx context.Context, filter ports.ProposalFilter) ([]entities.Proposal, error) {
	tx := r.db.WithContext(ctx).Model(&proposalModel{})
	if strings.TrimSpace(filter.WorkspaceID) != "" {
		tx = tx.Where("workspace_id = ?", strings.TrimSpace(filter.WorkspaceID))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if strings.TrimSpace(filter.AuthorID) != "" {
		tx = tx.Where("author_id = ?", strings.TrimSpace(filter.AuthorID))
	}
	if filter.VisibleWorkspaceIDs != nil {
		tx = tx.Where("workspace_id IN ?", filter.VisibleWorkspaceIDs)
	}
	var rows []proposalModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_proposals_failed", err,
			"workspace_id", strings.TrimSpace(filter.WorkspaceID),
		)
	}
	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateSession(ctx context.Context, session entities.VotingSession) error {
	row := sessionModelFromEntity(session)
	result := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"status":               row.Status,
			"total_votes":          row.TotalVotes,
			"winner_option_id":     row.WinnerOptionID,
			"result_calculated_at": row.ResultCalculatedAt,
			"updated_at":           row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_session_failed", result.Error, "session_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSessionNotFound
	}
	return nil
}

// ClaimSessionForTally flips active to tallying with a guarded update so two
// concurrent resolvers cannot both win the claim.
func (r *Repository) ClaimSessionForTally(ctx context.Context, sessionID string, now time.Time) (entities.VotingSession, bool, error) {
	result := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("id = ?", strings.TrimSpace(sessionID)).
		Where("status = ?", string(entities.SessionStatusActive)).
		Updates(map[string]any{
			"status":     string(entities.SessionStatusTallying),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return entities.VotingSession{}, false, r.logError("lifecycle_repo_claim_session_failed", result.Error,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	session, err := r.GetSession(ctx, sessionID)
	if err != nil {
		return entities.VotingSession{}, false, err
	}
	return session, result.RowsAffected > 0, nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.VotingSession, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingSession{}, domainerrors.ErrSessionNotFound
		}
		return entities.VotingSession{}, r.logError("lifecycle_repo_get_session_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetOpenSessionByProposal(ctx context.Context, proposalID string) (entities.VotingSession, bool, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Where("status = ?", string(entities.SessionStatusActive)).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingSession{}, false, nil
		}
		return entities.VotingSession{}, false, r.logError("lifecycle_repo_get_open_session_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListActiveSessions(ctx context.Context, workspaceIDs []string) ([]entities.VotingSession, error) {
	tx := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("status = ?", string(entities.SessionStatusActive))
	if workspaceIDs != nil {
		tx = tx.Where("workspace_id IN ?", workspaceIDs)
	}
	var rows []sessionModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_active_sessions_failed", err)
	}
	return toSessionEntities(rows), nil
}

func (r *Repository) ListExpiredActiveSessions(ctx context.Context, now time.Time, limit int) ([]entities.VotingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []sessionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.SessionStatusActive)).
		Where("ends_at < ?", now.UTC()).
		Order("ends_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_expired_sessions_failed", err, "limit", limit)
	}
	return toSessionEntities(rows), nil
}

func (r *Repository) ListOptions(ctx context.Context, sessionID string) ([]entities.VotingOption, error) {
	var rows []optionModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Order("option_order ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_options_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	items := make([]entities.VotingOption, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) EnsureOptions(ctx context.Context, sessionID string, options []entities.VotingOption) ([]entities.VotingOption, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&optionModel{}).
			Where("session_id = ?", strings.TrimSpace(sessionID)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, option := range options {
			row := optionModelFromEntity(option)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoNothing: true,
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, r.logError("lifecycle_repo_ensure_options_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	return r.ListOptions(ctx, sessionID)
}

// RecordVote inserts the vote row and bumps both counters in one
// transaction. The unique index on (session_id, user_id) arbitrates
// concurrent casts; the losing insert maps to the duplicate-vote error.
func (r *Repository) RecordVote(ctx context.Context, vote entities.Vote) (entities.VoteTotals, error) {
	var totals entities.VoteTotals
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := voteModelFromEntity(vote)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}

		var session sessionModel
		if err := tx.Model(&sessionModel{}).
			Where("id = ?", row.SessionID).
			UpdateColumns(map[string]any{
				"total_votes": gorm.Expr("total_votes + 1"),
				"updated_at":  row.CastAt,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", row.SessionID).First(&session).Error; err != nil {
			return err
		}

		var proposal proposalModel
		if err := tx.Model(&proposalModel{}).
			Where("id = ?", session.ProposalID).
			UpdateColumns(map[string]any{
				"votes_count": gorm.Expr("votes_count + 1"),
				"updated_at":  row.CastAt,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", session.ProposalID).First(&proposal).Error; err != nil {
			return err
		}

		totals = entities.VoteTotals{
			SessionTotalVotes:  session.TotalVotes,
			ProposalVotesCount: proposal.VotesCount,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			return entities.VoteTotals{}, domainerrors.ErrAlreadyVoted
		}
		return entities.VoteTotals{}, r.logError("lifecycle_repo_record_vote_failed", err,
			"vote_id", strings.TrimSpace(vote.VoteID),
			"session_id", strings.TrimSpace(vote.SessionID),
			"user_id", strings.TrimSpace(vote.UserID),
		)
	}
	return totals, nil
}

func (r *Repository) GetVoteByIdentity(ctx context.Context, sessionID string, userID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("lifecycle_repo_get_vote_by_identity_failed", err,
			"session_id", strings.TrimSpace(sessionID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesBySession(ctx context.Context, sessionID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_votes_by_session_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("lifecycle_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("lifecycle_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "civic-governance/voting-lifecycle",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("lifecycle repository operation failed", fields...)
	return err
}

type proposalModel struct {
	ID                  string     `gorm:"column:id;primaryKey"`
	WorkspaceID         string     `gorm:"column:workspace_id"`
	AuthorID            string     `gorm:"column:author_id"`
	Number              string     `gorm:"column:number"`
	Slug                string     `gorm:"column:slug"`
	Title               string     `gorm:"column:title"`
	Summary             string     `gorm:"column:summary"`
	Justification       string     `gorm:"column:justification"`
	FullText            string     `gorm:"column:full_text"`
	Type                string     `gorm:"column:proposal_type"`
	Status              string     `gorm:"column:status"`
	SignaturesCount     int        `gorm:"column:signatures_count"`
	VotesCount          int        `gorm:"column:votes_count"`
	QuorumRequired      int        `gorm:"column:quorum_required"`
	ThresholdPercentage int        `gorm:"column:threshold_percentage"`
	VotingStartedAt     *time.Time `gorm:"column:voting_started_at"`
	VotingEndedAt       *time.Time `gorm:"column:voting_ended_at"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	row := proposalModel{
		ID:                  strings.TrimSpace(proposal.ProposalID),
		WorkspaceID:         strings.TrimSpace(proposal.WorkspaceID),
		AuthorID:            strings.TrimSpace(proposal.AuthorID),
		Number:              strings.TrimSpace(proposal.Number),
		Slug:                strings.TrimSpace(proposal.Slug),
		Title:               proposal.Title,
		Summary:             proposal.Summary,
		Justification:       proposal.Justification,
		FullText:            proposal.FullText,
		Type:                string(proposal.Type),
		Status:              string(proposal.Status),
		SignaturesCount:     proposal.SignaturesCount,
		VotesCount:          proposal.VotesCount,
		QuorumRequired:      proposal.QuorumRequired,
		ThresholdPercentage: proposal.ThresholdPercentage,
		VotingStartedAt:     normalizeOptionalTime(proposal.VotingStartedAt),
		VotingEndedAt:       normalizeOptionalTime(proposal.VotingEndedAt),
		CreatedAt:           proposal.CreatedAt.UTC(),
		UpdatedAt:           proposal.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:          m.ID,
		WorkspaceID:         m.WorkspaceID,
		AuthorID:            m.AuthorID,
		Number:              m.Number,
		Slug:                m.Slug,
		Title:               m.Title,
		Summary:             m.Summary,
		Justification:       m.Justification,
		FullText:            m.FullText,
		Type:                entities.ProposalType(m.Type),
		Status:              entities.ProposalStatus(m.Status),
		SignaturesCount:     m.SignaturesCount,
		VotesCount:          m.VotesCount,
		QuorumRequired:      m.QuorumRequired,
		ThresholdPercentage: m.ThresholdPercentage,
		VotingStartedAt:     normalizeOptionalTime(m.VotingStartedAt),
		VotingEndedAt:       normalizeOptionalTime(m.VotingEndedAt),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

type sessionModel struct {
	ID                 string     `gorm:"column:id;primaryKey"`
	ProposalID         string     `gorm:"column:proposal_id"`
	WorkspaceID        string     `gorm:"column:workspace_id"`
	Title              string     `gorm:"column:title"`
	Description        string     `gorm:"column:description"`
	Method             string     `gorm:"column:voting_method"`
	QuorumRequired     int        `gorm:"column:quorum_required"`
	StartsAt           time.Time  `gorm:"column:starts_at"`
	EndsAt             time.Time  `gorm:"column:ends_at"`
	Status             string     `gorm:"column:status"`
	TotalVotes         int        `gorm:"column:total_votes"`
	WinnerOptionID     *string    `gorm:"column:winner_option_id"`
	ResultCalculatedAt *time.Time `gorm:"column:result_calculated_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (sessionModel) TableName() string {
	return "voting_sessions"
}

func sessionModelFromEntity(session entities.VotingSession) sessionModel {
	row := sessionModel{
		ID:                 strings.TrimSpace(session.SessionID),
		ProposalID:         strings.TrimSpace(session.ProposalID),
		WorkspaceID:        strings.TrimSpace(session.WorkspaceID),
		Title:              session.Title,
		Description:        session.Description,
		Method:             string(session.Method),
		QuorumRequired:     session.QuorumRequired,
		StartsAt:           session.StartsAt.UTC(),
		EndsAt:             session.EndsAt.UTC(),
		Status:             string(session.Status),
		TotalVotes:         session.TotalVotes,
		WinnerOptionID:     session.WinnerOptionID,
		ResultCalculatedAt: normalizeOptionalTime(session.ResultCalculatedAt),
		CreatedAt:          session.CreatedAt.UTC(),
		UpdatedAt:          session.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m sessionModel) toEntity() entities.VotingSession {
	return entities.VotingSession{
		SessionID:          m.ID,
		ProposalID:         m.ProposalID,
		WorkspaceID:        m.WorkspaceID,
		Title:              m.Title,
		Description:        m.Description,
		Method:             entities.VotingMethod(m.Method),
		QuorumRequired:     m.QuorumRequired,
		StartsAt:           m.StartsAt.UTC(),
		EndsAt:             m.EndsAt.UTC(),
		Status:             entities.SessionStatus(m.Status),
		TotalVotes:         m.TotalVotes,
		WinnerOptionID:     m.WinnerOptionID,
		ResultCalculatedAt: normalizeOptionalTime(m.ResultCalculatedAt),
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

func toSessionEntities(rows []sessionModel) []entities.VotingSession {
	items := make([]entities.VotingSession, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type optionModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	SessionID   string `gorm:"column:session_id"`
	Title       string `gorm:"column:title"`
	Description string `gorm:"column:description"`
	Order       int    `gorm:"column:option_order"`
	Value       string `gorm:"column:option_value"`
}

func (optionModel) TableName() string {
	return "voting_options"
}

func optionModelFromEntity(option entities.VotingOption) optionModel {
	return optionModel{
		ID:          strings.TrimSpace(option.OptionID),
		SessionID:   strings.TrimSpace(option.SessionID),
		Title:       option.Title,
		Description: option.Description,
		Order:       option.Order,
		Value:       strings.TrimSpace(option.Value),
	}
}

func (m optionModel) toEntity() entities.VotingOption {
	return entities.VotingOption{
		OptionID:    m.ID,
		SessionID:   m.SessionID,
		Title:       m.Title,
		Description: m.Description,
		Order:       m.Order,
		Value:       m.Value,
	}
}

type voteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	SessionID  string    `gorm:"column:session_id;uniqueIndex:ux_votes_session_user"`
	ProposalID string    `gorm:"column:proposal_id;index:ix_votes_proposal"`
	OptionID   string    `gorm:"column:option_id"`
	Choice     string    `gorm:"column:choice"`
	UserID     string    `gorm:"column:user_id;uniqueIndex:ux_votes_session_user"`
	VoteHash   string    `gorm:"column:vote_hash;uniqueIndex:ux_votes_hash"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:         strings.TrimSpace(vote.VoteID),
		SessionID:  strings.TrimSpace(vote.SessionID),
		ProposalID: strings.TrimSpace(vote.ProposalID),
		OptionID:   strings.TrimSpace(vote.OptionID),
		Choice:     strings.TrimSpace(vote.Choice),
		UserID:     strings.TrimSpace(vote.UserID),
		VoteHash:   strings.TrimSpace(vote.VoteHash),
		CastAt:     vote.CastAt.UTC(),
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:     m.ID,
		SessionID:  m.SessionID,
		ProposalID: m.ProposalID,
		OptionID:   m.OptionID,
		Choice:     m.Choice,
		UserID:     m.UserID,
		VoteHash:   m.VoteHash,
		CastAt:     m.CastAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "lifecycle_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ProposalRepository = (*Repository)(nil)
var _ ports.SessionRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
