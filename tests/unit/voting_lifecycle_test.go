package unit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	votinglifecycle "agora/contexts/civic-governance/voting-lifecycle"
	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	httptransport "agora/contexts/civic-governance/voting-lifecycle/transport/http"
	accessgate "agora/contexts/identity-access/access-gate"
	gateerrors "agora/contexts/identity-access/access-gate/domain/errors"
	"agora/internal/app/bootstrap"
)

func newCivicModules() (accessgate.Module, votinglifecycle.Module) {
	gate := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)
	lifecycle := votinglifecycle.NewInMemoryModule(bootstrap.NewAccessGateBridge(gate.Gate), nil)
	return gate, lifecycle
}

func createProposal(
	t *testing.T,
	module votinglifecycle.Module,
	userID string,
	workspaceID string,
	req httptransport.CreateProposalRequest,
) httptransport.CreateProposalResponse {
	t.Helper()
	if req.Title == "" {
		req.Title = "Clean Air Act"
	}
	if req.Type == "" {
		req.Type = string(entities.ProposalTypeNewLaw)
	}
	created, err := module.Handler.CreateProposalHandler(context.Background(), userID, workspaceID, req)
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return created
}

// rewindSession moves an already created session's window, which is how the
// tests reach the not-yet-open and expired branches without a fake clock.
func rewindSession(
	t *testing.T,
	module votinglifecycle.Module,
	sessionID string,
	startsAt time.Time,
	endsAt time.Time,
) {
	t.Helper()
	session, err := module.Store.GetSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	session.StartsAt = startsAt
	session.EndsAt = endsAt
	module.Store.SetSession(session)
}

func TestCreateProposalOpensVotingImmediately(t *testing.T) {
	_, module := newCivicModules()

	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if created.Proposal.Status != string(entities.ProposalStatusVoting) {
		t.Fatalf("proposal should enter voting at creation, got %q", created.Proposal.Status)
	}
	if created.Session.Status != string(entities.SessionStatusActive) {
		t.Fatalf("session should be active at creation, got %q", created.Session.Status)
	}
	if created.Proposal.VotingStartedAt == nil {
		t.Fatal("voting start timestamp missing")
	}
	if created.Proposal.Slug != "clean-air-act" {
		t.Fatalf("unexpected slug %q", created.Proposal.Slug)
	}
	if !strings.HasPrefix(created.Proposal.Number, "PR-") {
		t.Fatalf("unexpected proposal number %q", created.Proposal.Number)
	}

	// The workspace policy sets a 7 day window.
	if window := created.Session.EndsAt.Sub(created.Session.StartsAt); window != 7*24*time.Hour {
		t.Fatalf("expected 7 day voting window, got %s", window)
	}

	if len(created.Options) != 3 {
		t.Fatalf("expected default ballot with 3 options, got %d", len(created.Options))
	}
	wantValues := []string{"yes", "no", "abstain"}
	for i, option := range created.Options {
		if option.Value != wantValues[i] || option.Order != i {
			t.Fatalf("unexpected ballot option %+v at %d", option, i)
		}
		if option.OptionID == "" {
			t.Fatal("ballot option without identifier")
		}
	}
}

func TestCreateProposalVotingDaysOverride(t *testing.T) {
	_, module := newCivicModules()

	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{
		VotingDays: 3,
	})
	if window := created.Session.EndsAt.Sub(created.Session.StartsAt); window != 3*24*time.Hour {
		t.Fatalf("expected 3 day voting window, got %s", window)
	}
}

func TestProposalVotingWindowFixedAtCreation(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if created.Proposal.VotingEndedAt == nil {
		t.Fatal("window end should be recorded when the session opens")
	}
	plannedEnd := *created.Proposal.VotingEndedAt
	if !plannedEnd.Equal(created.Session.EndsAt) {
		t.Fatalf("window end %s should match the session end %s", plannedEnd, created.Session.EndsAt)
	}

	// Resolution does not rewrite the recorded window end.
	now := time.Now().UTC()
	rewindSession(t, module, created.Session.SessionID, now.Add(-2*time.Hour), now.Add(-time.Hour))
	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"}); !errors.Is(err, domainerrors.ErrVotingExpired) {
		t.Fatalf("expected voting expired, got %v", err)
	}
	proposal, err := module.Handler.GetProposalHandler(context.Background(), "user-special", created.Proposal.ProposalID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if proposal.VotingEndedAt == nil || !proposal.VotingEndedAt.Equal(plannedEnd) {
		t.Fatalf("window end moved from %s to %v during resolution", plannedEnd, proposal.VotingEndedAt)
	}

	// Neither does withdrawal.
	second := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{Title: "Water Quality Act"})
	if _, err := module.Handler.WithdrawProposalHandler(context.Background(), "user-affiliate", second.Proposal.ProposalID, httptransport.WithdrawProposalRequest{}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	withdrawn, err := module.Handler.GetProposalHandler(context.Background(), "user-affiliate", second.Proposal.ProposalID)
	if err != nil {
		t.Fatalf("get withdrawn proposal: %v", err)
	}
	if withdrawn.VotingEndedAt == nil || !withdrawn.VotingEndedAt.Equal(second.Session.EndsAt) {
		t.Fatalf("window end moved to %v during withdrawal", withdrawn.VotingEndedAt)
	}
}

func TestCreateProposalSlugCollisionGetsSuffix(t *testing.T) {
	_, module := newCivicModules()

	first := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})
	second := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if first.Proposal.Slug != "clean-air-act" || second.Proposal.Slug != "clean-air-act-2" {
		t.Fatalf("unexpected slugs %q and %q", first.Proposal.Slug, second.Proposal.Slug)
	}
}

func TestCreateProposalRejectsUnknownType(t *testing.T) {
	_, module := newCivicModules()

	_, err := module.Handler.CreateProposalHandler(context.Background(), "user-affiliate", "ws-public", httptransport.CreateProposalRequest{
		Title: "Mystery",
		Type:  "decree",
	})
	if !errors.Is(err, domainerrors.ErrInvalidProposalInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCreateProposalForbiddenInAffiliatesOnlyWorkspace(t *testing.T) {
	_, module := newCivicModules()

	_, err := module.Handler.CreateProposalHandler(context.Background(), "user-registered", "ws-private", httptransport.CreateProposalRequest{
		Title: "Council Reform",
		Type:  string(entities.ProposalTypeAmendment),
	})
	if !errors.Is(err, gateerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCastVoteRecordsBallot(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	result, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{
		Choice: "yes",
	})
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if result.Option != "yes" {
		t.Fatalf("unexpected option %q", result.Option)
	}
	if len(result.VoteHash) != 64 {
		t.Fatalf("vote hash should be a sha256 hex digest, got %q", result.VoteHash)
	}
	if result.SessionTotalVotes != 1 || result.ProposalVotesCount != 1 {
		t.Fatalf("unexpected totals %d/%d", result.SessionTotalVotes, result.ProposalVotesCount)
	}

	feed, err := module.Handler.ActiveSessionsHandler(context.Background(), "user-special")
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("expected one active session, got %d", len(feed.Items))
	}
	item := feed.Items[0]
	if item.Stats.Yes != 1 || item.Stats.Total != 1 {
		t.Fatalf("unexpected stats %+v", item.Stats)
	}
	if !item.UserState.HasVoted || item.UserState.Choice != "yes" {
		t.Fatalf("unexpected user state %+v", item.UserState)
	}
}

func TestCastVoteTwiceIsRejected(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	_, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"})
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	_, err = module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "no"})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted, got %v", err)
	}

	session, err := module.Store.GetSession(context.Background(), created.Session.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.TotalVotes != 1 {
		t.Fatalf("rejected revote should not move the counter, got %d", session.TotalVotes)
	}
}

func TestCastVoteChoiceMatchingIsCaseInsensitive(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	result, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "YES"})
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if result.Option != "yes" {
		t.Fatalf("unexpected option %q", result.Option)
	}
}

func TestCastVoteByOptionID(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	abstain := created.Options[2]
	result, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: abstain.OptionID})
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if result.Option != "abstain" {
		t.Fatalf("unexpected option %q", result.Option)
	}
}

func TestCastVoteUnknownChoice(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	_, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "maybe"})
	if !errors.Is(err, domainerrors.ErrInvalidOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}
}

func TestCastVoteRequiresVotingStanding(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	_, err := module.Handler.CastVoteHandler(context.Background(), "user-registered", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, gateerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCastVoteChecksProposalStateBeforeEligibility(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if _, err := module.Handler.WithdrawProposalHandler(context.Background(), "user-affiliate", created.Proposal.ProposalID, httptransport.WithdrawProposalRequest{}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	// A caller without voting standing still learns the ballot is closed,
	// not that they lack standing.
	_, err := module.Handler.CastVoteHandler(context.Background(), "user-registered", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, domainerrors.ErrProposalTerminal) {
		t.Fatalf("expected terminal proposal state, got %v", err)
	}
}

func TestCastVoteStoresProposalAndChoiceOnBallot(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	vote, found, err := module.Store.GetVoteByIdentity(context.Background(), created.Session.SessionID, "user-special")
	if err != nil || !found {
		t.Fatalf("load vote: found=%v err=%v", found, err)
	}
	if vote.ProposalID != created.Proposal.ProposalID {
		t.Fatalf("ballot should carry the proposal id, got %q", vote.ProposalID)
	}
	if vote.Choice != "yes" {
		t.Fatalf("ballot should carry the chosen value, got %q", vote.Choice)
	}
}

func TestVoteLedgerRejectsDuplicateHash(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	now := time.Now().UTC()
	first := entities.Vote{
		VoteID:     "vote-1",
		SessionID:  created.Session.SessionID,
		ProposalID: created.Proposal.ProposalID,
		OptionID:   created.Options[0].OptionID,
		Choice:     "yes",
		UserID:     "user-special",
		VoteHash:   "deadbeef",
		CastAt:     now,
	}
	if _, err := module.Store.RecordVote(context.Background(), first); err != nil {
		t.Fatalf("record first vote: %v", err)
	}

	second := first
	second.VoteID = "vote-2"
	second.UserID = "user-super"
	if _, err := module.Store.RecordVote(context.Background(), second); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("reused vote hash should be rejected, got %v", err)
	}
}

func TestCastVoteBeforeWindowOpens(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	now := time.Now().UTC()
	rewindSession(t, module, created.Session.SessionID, now.Add(time.Hour), now.Add(2*time.Hour))

	_, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, domainerrors.ErrVotingNotStarted) {
		t.Fatalf("expected voting not started, got %v", err)
	}
}

func TestCastVoteAfterWindowExpiresResolvesSession(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	now := time.Now().UTC()
	rewindSession(t, module, created.Session.SessionID, now.Add(-2*time.Hour), now.Add(-time.Hour))

	_, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, domainerrors.ErrVotingExpired) {
		t.Fatalf("expected voting expired, got %v", err)
	}

	// Touching the expired session must settle it and the proposal.
	session, err := module.Store.GetSession(context.Background(), created.Session.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.Status != entities.SessionStatusCompleted {
		t.Fatalf("expired session should complete, got %q", session.Status)
	}
	proposal, err := module.Handler.GetProposalHandler(context.Background(), "user-special", created.Proposal.ProposalID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if proposal.Status != string(entities.ProposalStatusRejected) {
		t.Fatalf("voteless expiry should reject, got %q", proposal.Status)
	}
	if proposal.VotingEndedAt == nil {
		t.Fatal("voting end timestamp missing after resolution")
	}
}

func TestExpiredSessionApprovesWithYesMajority(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	for _, voter := range []string{"user-affiliate", "user-special"} {
		if _, err := module.Handler.CastVoteHandler(context.Background(), voter, created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
			t.Fatalf("cast vote for %s: %v", voter, err)
		}
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-super", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "no"}); err != nil {
		t.Fatalf("cast no vote: %v", err)
	}

	now := time.Now().UTC()
	rewindSession(t, module, created.Session.SessionID, now.Add(-2*time.Hour), now.Add(-time.Hour))

	results, err := module.Handler.SessionResultsHandler(context.Background(), "user-special", created.Session.SessionID)
	if err != nil {
		t.Fatalf("session results: %v", err)
	}
	if results.Session.Status != string(entities.SessionStatusCompleted) {
		t.Fatalf("results read should resolve the expired session, got %q", results.Session.Status)
	}
	if results.Winner == nil || results.Winner.Value != "yes" {
		t.Fatalf("unexpected winner %+v", results.Winner)
	}
	if !results.Approved {
		t.Fatal("yes majority with no quorum should approve")
	}

	proposal, err := module.Handler.GetProposalHandler(context.Background(), "user-special", created.Proposal.ProposalID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if proposal.Status != string(entities.ProposalStatusApproved) {
		t.Fatalf("expected approved proposal, got %q", proposal.Status)
	}
}

func TestSessionResultsLiveTally(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-affiliate", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "no"}); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	results, err := module.Handler.SessionResultsHandler(context.Background(), "user-affiliate", created.Session.SessionID)
	if err != nil {
		t.Fatalf("session results: %v", err)
	}
	if results.Session.Status != string(entities.SessionStatusActive) {
		t.Fatalf("live results must not close the session, got %q", results.Session.Status)
	}
	if results.TotalVotes != 2 {
		t.Fatalf("unexpected total votes %d", results.TotalVotes)
	}
	counts := map[string]int{}
	for _, tally := range results.Tallies {
		counts[tally.Option.Value] = tally.Count
	}
	if counts["yes"] != 1 || counts["no"] != 1 || counts["abstain"] != 0 {
		t.Fatalf("unexpected tallies %+v", counts)
	}
}

func TestSessionResultsQuorumNotMet(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{
		QuorumRequired: 5,
	})

	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	results, err := module.Handler.SessionResultsHandler(context.Background(), "user-special", created.Session.SessionID)
	if err != nil {
		t.Fatalf("session results: %v", err)
	}
	if results.QuorumRequired != 5 || results.QuorumMet {
		t.Fatalf("quorum should not be met, got required=%d met=%v", results.QuorumRequired, results.QuorumMet)
	}
	if results.Approved {
		t.Fatal("approval requires quorum")
	}
}

func TestSessionResultsHiddenWorkspace(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-private", httptransport.CreateProposalRequest{})

	_, err := module.Handler.SessionResultsHandler(context.Background(), "user-registered", created.Session.SessionID)
	if !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("hidden session should read as missing, got %v", err)
	}
}

func TestWithdrawProposalByAuthor(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	proposal, err := module.Handler.WithdrawProposalHandler(context.Background(), "user-affiliate", created.Proposal.ProposalID, httptransport.WithdrawProposalRequest{
		Reason: "superseded by a revised draft",
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if proposal.Status != string(entities.ProposalStatusWithdrawn) {
		t.Fatalf("expected withdrawn, got %q", proposal.Status)
	}

	session, err := module.Store.GetSession(context.Background(), created.Session.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.Status != entities.SessionStatusCancelled {
		t.Fatalf("withdrawal should cancel the open session, got %q", session.Status)
	}

	_, err = module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"})
	if !errors.Is(err, domainerrors.ErrProposalTerminal) {
		t.Fatalf("voting on a withdrawn proposal should fail terminal, got %v", err)
	}
}

func TestWithdrawProposalByStrangerForbidden(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	_, err := module.Handler.WithdrawProposalHandler(context.Background(), "user-verified", created.Proposal.ProposalID, httptransport.WithdrawProposalRequest{})
	if !errors.Is(err, gateerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestWithdrawProposalByModerator(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	proposal, err := module.Handler.WithdrawProposalHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.WithdrawProposalRequest{
		Reason: "duplicate submission",
	})
	if err != nil {
		t.Fatalf("moderator withdraw: %v", err)
	}
	if proposal.Status != string(entities.ProposalStatusWithdrawn) {
		t.Fatalf("expected withdrawn, got %q", proposal.Status)
	}
}

func TestWithdrawTerminalProposal(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if _, err := module.Handler.WithdrawProposalHandler(context.Background(), "user-affiliate", created.Proposal.ProposalID, httptransport.WithdrawProposalRequest{}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	_, err := module.Handler.WithdrawProposalHandler(context.Background(), "user-affiliate", created.Proposal.ProposalID, httptransport.WithdrawProposalRequest{})
	if !errors.Is(err, domainerrors.ErrProposalTerminal) {
		t.Fatalf("expected terminal, got %v", err)
	}
}

func TestActiveSessionsFeedRespectsVisibility(t *testing.T) {
	_, module := newCivicModules()
	createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{Title: "Public Matter"})
	createProposal(t, module, "user-affiliate", "ws-private", httptransport.CreateProposalRequest{Title: "Council Matter"})

	feed, err := module.Handler.ActiveSessionsHandler(context.Background(), "user-registered")
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if len(feed.Items) != 1 || feed.Items[0].Proposal.WorkspaceID != "ws-public" {
		t.Fatalf("registered caller should only see the public session, got %+v", feed.Items)
	}

	feed, err = module.Handler.ActiveSessionsHandler(context.Background(), "user-affiliate")
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("affiliate should see both sessions, got %d", len(feed.Items))
	}
}

func TestActiveSessionsFeedResolvesExpired(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	now := time.Now().UTC()
	rewindSession(t, module, created.Session.SessionID, now.Add(-2*time.Hour), now.Add(-time.Hour))

	feed, err := module.Handler.ActiveSessionsHandler(context.Background(), "user-affiliate")
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if len(feed.Items) != 0 {
		t.Fatalf("expired session should leave the feed, got %d items", len(feed.Items))
	}

	session, err := module.Store.GetSession(context.Background(), created.Session.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.Status != entities.SessionStatusCompleted {
		t.Fatalf("feed read should resolve the expired session, got %q", session.Status)
	}
}

func TestCloseSessionEarlyByModerator(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	if _, err := module.Handler.CastVoteHandler(context.Background(), "user-special", created.Proposal.ProposalID, httptransport.CastVoteRequest{Choice: "yes"}); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	session, err := module.Handler.CloseSessionHandler(context.Background(), "user-special", created.Session.SessionID)
	if err != nil {
		t.Fatalf("close session: %v", err)
	}
	if session.Status != string(entities.SessionStatusCompleted) {
		t.Fatalf("expected completed session, got %q", session.Status)
	}

	proposal, err := module.Handler.GetProposalHandler(context.Background(), "user-special", created.Proposal.ProposalID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if proposal.Status != string(entities.ProposalStatusApproved) {
		t.Fatalf("early close with a yes majority should approve, got %q", proposal.Status)
	}
}

func TestCloseSessionRequiresModerator(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	_, err := module.Handler.CloseSessionHandler(context.Background(), "user-affiliate", created.Session.SessionID)
	if !errors.Is(err, gateerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetProposalHiddenWorkspaceReadsAsMissing(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-private", httptransport.CreateProposalRequest{})

	_, err := module.Handler.GetProposalHandler(context.Background(), "user-registered", created.Proposal.ProposalID)
	if !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("hidden proposal should read as missing, got %v", err)
	}
}

func TestListProposalsScopedByVisibility(t *testing.T) {
	_, module := newCivicModules()
	createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{Title: "Public Matter"})
	createProposal(t, module, "user-affiliate", "ws-private", httptransport.CreateProposalRequest{Title: "Council Matter"})

	list, err := module.Handler.ListProposalsHandler(context.Background(), "user-registered", "", "", "")
	if err != nil {
		t.Fatalf("list proposals: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].WorkspaceID != "ws-public" {
		t.Fatalf("registered caller should list only public proposals, got %+v", list.Items)
	}

	list, err = module.Handler.ListProposalsHandler(context.Background(), "user-registered", "ws-private", "", "")
	if err != nil {
		t.Fatalf("list proposals: %v", err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("hidden workspace listing should be empty, got %d", len(list.Items))
	}

	list, err = module.Handler.ListProposalsHandler(context.Background(), "user-affiliate", "", "", "user-affiliate")
	if err != nil {
		t.Fatalf("list proposals: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("author filter for affiliate should return both, got %d", len(list.Items))
	}
}
