package unit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	httptransport "agora/contexts/civic-governance/voting-lifecycle/transport/http"
)

// The one-ballot-per-voter rule is arbitrated by the vote store, not by a
// read-then-write check, so concurrent duplicates must collapse to exactly
// one recorded vote.
func TestConcurrentDuplicateVotesRecordOnce(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Handler.CastVoteHandler(
				context.Background(),
				"user-special",
				created.Proposal.ProposalID,
				httptransport.CastVoteRequest{Choice: "yes"},
			)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var accepted, rejected int
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, domainerrors.ErrAlreadyVoted):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 || rejected != attempts-1 {
		t.Fatalf("expected exactly one accepted ballot, got accepted=%d rejected=%d", accepted, rejected)
	}

	session, err := module.Store.GetSession(context.Background(), created.Session.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.TotalVotes != 1 {
		t.Fatalf("session counter moved %d times for one voter", session.TotalVotes)
	}
	proposal, err := module.Handler.GetProposalHandler(context.Background(), "user-special", created.Proposal.ProposalID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if proposal.VotesCount != 1 {
		t.Fatalf("proposal counter moved %d times for one voter", proposal.VotesCount)
	}
}

func TestConcurrentDistinctVotersAllRecorded(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	voters := []string{"user-affiliate", "user-special", "user-super"}
	var wg sync.WaitGroup
	results := make(chan error, len(voters))
	for _, voter := range voters {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()
			_, err := module.Handler.CastVoteHandler(
				context.Background(),
				voter,
				created.Proposal.ProposalID,
				httptransport.CastVoteRequest{Choice: "yes"},
			)
			results <- err
		}(voter)
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("vote failed: %v", err)
		}
	}
	session, err := module.Store.GetSession(context.Background(), created.Session.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.TotalVotes != len(voters) {
		t.Fatalf("expected %d recorded votes, got %d", len(voters), session.TotalVotes)
	}
}

// Resolution starts by claiming the session for tallying with a
// compare-and-swap, so racing resolvers cannot both win the claim.
func TestConcurrentResolversClaimSessionOnce(t *testing.T) {
	_, module := newCivicModules()
	created := createProposal(t, module, "user-affiliate", "ws-public", httptransport.CreateProposalRequest{})

	const resolvers = 8
	now := time.Now().UTC()
	var wg sync.WaitGroup
	claims := make(chan bool, resolvers)

	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, claimed, err := module.Store.ClaimSessionForTally(context.Background(), created.Session.SessionID, now)
			if err != nil {
				t.Errorf("claim session: %v", err)
				claims <- false
				return
			}
			claims <- claimed
		}()
	}
	wg.Wait()
	close(claims)

	won := 0
	for claimed := range claims {
		if claimed {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one resolver to claim the session, got %d", won)
	}
}
