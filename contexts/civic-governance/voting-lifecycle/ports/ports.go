package ports

import (
	"context"
	"time"

	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	contractsv1 "agora/contracts/gen/events/v1"
)

type ProposalFilter struct {
	WorkspaceID string
	Status      entities.ProposalStatus
	AuthorID    string
	// VisibleWorkspaceIDs restricts results to the given workspaces. Nil
	// means no restriction; an empty slice means nothing is visible.
	VisibleWorkspaceIDs []string
}

type ProposalRepository interface {
	// CreateProposalWithSession persists the proposal, its opening session
	// and the session options in one transaction.
	CreateProposalWithSession(
		ctx context.Context,
		proposal entities.Proposal,
		session entities.VotingSession,
		options []entities.VotingOption,
	) error
	UpdateProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error)
	GetProposalBySlug(ctx context.Context, workspaceID string, slug string) (entities.Proposal, bool, error)
	ListProposals(ctx context.Context, filter ProposalFilter) ([]entities.Proposal, error)
}

type SessionRepository interface {
	UpdateSession(ctx context.Context, session entities.VotingSession) error
	GetSession(ctx context.Context, sessionID string) (entities.VotingSession, error)
	// ClaimSessionForTally moves the session from active to tallying as one
	// compare-and-swap. claimed is false when another resolver got there
	// first; the returned session is the current stored state either way.
	ClaimSessionForTally(ctx context.Context, sessionID string, now time.Time) (session entities.VotingSession, claimed bool, err error)
	// GetOpenSessionByProposal returns the newest active session of a
	// proposal, if any.
	GetOpenSessionByProposal(ctx context.Context, proposalID string) (entities.VotingSession, bool, error)
	ListActiveSessions(ctx context.Context, workspaceIDs []string) ([]entities.VotingSession, error)
	ListExpiredActiveSessions(ctx context.Context, now time.Time, limit int) ([]entities.VotingSession, error)
	ListOptions(ctx context.Context, sessionID string) ([]entities.VotingOption, error)
	// EnsureOptions backfills the given options for sessions persisted
	// without any. Existing options are left untouched.
	EnsureOptions(ctx context.Context, sessionID string, options []entities.VotingOption) ([]entities.VotingOption, error)
}

type VoteRepository interface {
	// RecordVote inserts the vote and increments the session and proposal
	// counters in one transaction. A second vote for the same
	// (session, user) pair fails with the ledger's duplicate error no
	// matter how many casts race.
	RecordVote(ctx context.Context, vote entities.Vote) (entities.VoteTotals, error)
	GetVoteByIdentity(ctx context.Context, sessionID string, userID string) (entities.Vote, bool, error)
	ListVotesBySession(ctx context.Context, sessionID string) ([]entities.Vote, error)
}

// Actor is the caller identity as resolved by the access layer. UserID is
// empty for anonymous callers.
type Actor struct {
	UserID      string
	IsAffiliate bool
	IsModerator bool
	CanVote     bool
}

// WorkspacePolicy carries the workspace voting parameters the lifecycle
// needs without reaching into the workspace aggregate itself.
type WorkspacePolicy struct {
	WorkspaceID      string
	QuorumPercentage int
	VotingPeriodDays int
}

// AccessGate is the lifecycle's view of workspace and capability checks.
// The composition root bridges it to the identity context.
type AccessGate interface {
	ResolveActor(ctx context.Context, userID string) (Actor, error)
	CanView(ctx context.Context, userID string, workspaceID string) (bool, error)
	// VisibleWorkspaceIDs returns the workspaces readable by the caller,
	// or nil when the caller may read every workspace.
	VisibleWorkspaceIDs(ctx context.Context, userID string) ([]string, error)
	RequireProposer(ctx context.Context, userID string, workspaceID string) (Actor, WorkspacePolicy, error)
	RequireVoter(ctx context.Context, userID string, workspaceID string) (Actor, error)
	RequireModerator(ctx context.Context, userID string, workspaceID string) (Actor, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
