package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	"agora/contexts/civic-governance/voting-lifecycle/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter backing all lifecycle ports. A single mutex
// guards every map so RecordVote's insert-plus-counters runs as one critical
// section, mirroring the transactional guarantee of the SQL adapter.
type Store struct {
	mu sync.RWMutex

	proposals map[string]entities.Proposal
	sessions  map[string]entities.VotingSession
	options   map[string][]entities.VotingOption
	votes     map[string]entities.Vote
	// voteIndex enforces one vote per (session, user); hashIndex keeps the
	// audit digest unique, matching the SQL adapter's indexes.
	voteIndex map[string]string
	hashIndex map[string]struct{}
	outbox    map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		proposals: make(map[string]entities.Proposal),
		sessions:  make(map[string]entities.VotingSession),
		options:   make(map[string][]entities.VotingOption),
		votes:     make(map[string]entities.Vote),
		voteIndex: make(map[string]string),
		hashIndex: make(map[string]struct{}),
		outbox:    make(map[string]outboxRecord),
	}
}

func voteKey(sessionID string, userID string) string {
	return strings.TrimSpace(sessionID) + "|" + strings.TrimSpace(userID)
}

func (s *Store) SetProposal(proposal entities.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[strings.TrimSpace(proposal.ProposalID)] = proposal
}

func (s *Store) SetSession(session entities.VotingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[strings.TrimSpace(session.SessionID)] = session
}

func (s *Store) SetOptions(sessionID string, options []entities.VotingOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[strings.TrimSpace(sessionID)] = append([]entities.VotingOption(nil), options...)
}

func (s *Store) CreateProposalWithSession(
	_ context.Context,
	proposal entities.Proposal,
	session entities.VotingSession,
	options []entities.VotingOption,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[strings.TrimSpace(proposal.ProposalID)] = proposal
	s.sessions[strings.TrimSpace(session.SessionID)] = session
	s.options[strings.TrimSpace(session.SessionID)] = append([]entities.VotingOption(nil), options...)
	return nil
}

func (s *Store) UpdateProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(proposal.ProposalID)
	if _, ok := s.proposals[key]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	s.proposals[key] = proposal
	return nil
}

func (s *Store) GetProposal(_ context.Context, proposalID string) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) GetProposalBySlug(_ context.Context, workspaceID string, slug string) (entities.Proposal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	workspaceID = strings.TrimSpace(workspaceID)
	slug = strings.TrimSpace(slug)
	for _, proposal := range s.proposals {
		if proposal.WorkspaceID == workspaceID && proposal.Slug == slug {
			return proposal, true, nil
		}
	}
	return entities.Proposal{}, false, nil
}

func (s *Store) ListProposals(_ context.Context, filter ports.ProposalFilter) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visible map[string]struct{}
	if filter.VisibleWorkspaceIDs != nil {
		visible = make(map[string]struct{}, len(filter.VisibleWorkspaceIDs))
		for _, id := range filter.VisibleWorkspaceIDs {
			visible[id] = struct{}{}
		}
	}

	items := make([]entities.Proposal, 0)
	for _, proposal := range s.proposals {
		if filter.WorkspaceID != "" && proposal.WorkspaceID != filter.WorkspaceID {
			continue
		}
		if filter.Status != "" && proposal.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && proposal.AuthorID != filter.AuthorID {
			continue
		}
		if visible != nil {
			if _, ok := visible[proposal.WorkspaceID]; !ok {
				continue
			}
		}
		items = append(items, proposal)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) UpdateSession(_ context.Context, session entities.VotingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(session.SessionID)
	if _, ok := s.sessions[key]; !ok {
		return domainerrors.ErrSessionNotFound
	}
	s.sessions[key] = session
	return nil
}

func (s *Store) ClaimSessionForTally(_ context.Context, sessionID string, now time.Time) (entities.VotingSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(sessionID)
	session, ok := s.sessions[key]
	if !ok {
		return entities.VotingSession{}, false, domainerrors.ErrSessionNotFound
	}
	if session.Status != entities.SessionStatusActive {
		return session, false, nil
	}
	session.Status = entities.SessionStatusTallying
	session.UpdatedAt = now.UTC()
	s.sessions[key] = session
	return session, true, nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.VotingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.VotingSession{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) GetOpenSessionByProposal(_ context.Context, proposalID string) (entities.VotingSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposalID = strings.TrimSpace(proposalID)
	var newest entities.VotingSession
	found := false
	for _, session := range s.sessions {
		if session.ProposalID != proposalID || session.Status != entities.SessionStatusActive {
			continue
		}
		if !found || session.CreatedAt.After(newest.CreatedAt) {
			newest = session
			found = true
		}
	}
	return newest, found, nil
}

func (s *Store) ListActiveSessions(_ context.Context, workspaceIDs []string) ([]entities.VotingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visible map[string]struct{}
	if workspaceIDs != nil {
		visible = make(map[string]struct{}, len(workspaceIDs))
		for _, id := range workspaceIDs {
			visible[id] = struct{}{}
		}
	}

	items := make([]entities.VotingSession, 0)
	for _, session := range s.sessions {
		if session.Status != entities.SessionStatusActive {
			continue
		}
		if visible != nil {
			if _, ok := visible[session.WorkspaceID]; !ok {
				continue
			}
		}
		items = append(items, session)
	}
	sortSessionsByCreation(items)
	return items, nil
}

func (s *Store) ListExpiredActiveSessions(_ context.Context, now time.Time, limit int) ([]entities.VotingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	items := make([]entities.VotingSession, 0)
	for _, session := range s.sessions {
		if session.Status != entities.SessionStatusActive {
			continue
		}
		if !session.Ended(now) {
			continue
		}
		items = append(items, session)
	}
	sortSessionsByCreation(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListOptions(_ context.Context, sessionID string) ([]entities.VotingOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	options := append([]entities.VotingOption(nil), s.options[strings.TrimSpace(sessionID)]...)
	sort.Slice(options, func(i, j int) bool {
		return options[i].Order < options[j].Order
	})
	return options, nil
}

func (s *Store) EnsureOptions(_ context.Context, sessionID string, options []entities.VotingOption) ([]entities.VotingOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(sessionID)
	if existing := s.options[key]; len(existing) > 0 {
		return append([]entities.VotingOption(nil), existing...), nil
	}
	s.options[key] = append([]entities.VotingOption(nil), options...)
	return append([]entities.VotingOption(nil), options...), nil
}

func (s *Store) RecordVote(_ context.Context, vote entities.Vote) (entities.VoteTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey(vote.SessionID, vote.UserID)
	if _, exists := s.voteIndex[key]; exists {
		return entities.VoteTotals{}, domainerrors.ErrAlreadyVoted
	}
	if _, exists := s.hashIndex[strings.TrimSpace(vote.VoteHash)]; exists {
		return entities.VoteTotals{}, domainerrors.ErrConflict
	}
	session, ok := s.sessions[strings.TrimSpace(vote.SessionID)]
	if !ok {
		return entities.VoteTotals{}, domainerrors.ErrSessionNotFound
	}
	proposal, ok := s.proposals[strings.TrimSpace(session.ProposalID)]
	if !ok {
		return entities.VoteTotals{}, domainerrors.ErrProposalNotFound
	}

	s.votes[strings.TrimSpace(vote.VoteID)] = vote
	s.voteIndex[key] = strings.TrimSpace(vote.VoteID)
	s.hashIndex[strings.TrimSpace(vote.VoteHash)] = struct{}{}

	session.TotalVotes++
	session.UpdatedAt = vote.CastAt
	s.sessions[session.SessionID] = session

	proposal.VotesCount++
	proposal.UpdatedAt = vote.CastAt
	s.proposals[proposal.ProposalID] = proposal

	return entities.VoteTotals{
		SessionTotalVotes:  session.TotalVotes,
		ProposalVotesCount: proposal.VotesCount,
	}, nil
}

func (s *Store) GetVoteByIdentity(_ context.Context, sessionID string, userID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voteID, ok := s.voteIndex[voteKey(sessionID, userID)]
	if !ok {
		return entities.Vote{}, false, nil
	}
	return s.votes[voteID], true, nil
}

func (s *Store) ListVotesBySession(_ context.Context, sessionID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID = strings.TrimSpace(sessionID)
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.SessionID == sessionID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortSessionsByCreation(items []entities.VotingSession) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
