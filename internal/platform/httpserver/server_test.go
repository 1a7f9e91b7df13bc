package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	votinglifecycle "agora/contexts/civic-governance/voting-lifecycle"
	lifecyclehttp "agora/contexts/civic-governance/voting-lifecycle/transport/http"
	accessgate "agora/contexts/identity-access/access-gate"
	gateentities "agora/contexts/identity-access/access-gate/domain/entities"
	"agora/internal/app/bootstrap"
	httpserver "agora/internal/platform/httpserver"
)

func newTestServer() (*httpserver.Server, votinglifecycle.Module) {
	gate := accessgate.NewInMemoryModule(
		[]gateentities.User{
			{UserID: "user-affiliate", Username: "affiliate", Level: gateentities.LevelAffiliate, IsActive: true},
			{UserID: "user-registered", Username: "registered", Level: gateentities.LevelRegistered, IsActive: true},
		},
		[]gateentities.Workspace{
			{
				WorkspaceID:          "ws-public",
				Name:                 "City Budget",
				Slug:                 "city-budget",
				Type:                 gateentities.WorkspaceTypeBudget,
				Visibility:           gateentities.VisibilityPublic,
				QuorumPercentage:     10,
				VotingPeriodDays:     7,
				AllowPublicProposals: true,
				AllowPublicVoting:    true,
				IsActive:             true,
			},
		},
		nil,
	)
	lifecycle := votinglifecycle.NewInMemoryModule(bootstrap.NewAccessGateBridge(gate.Gate), nil)
	return httpserver.New(gate, lifecycle, nil, ""), lifecycle
}

func doJSON(t *testing.T, server *httpserver.Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func createTestProposal(t *testing.T, server *httpserver.Server) lifecyclehttp.CreateProposalResponse {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/v1/workspaces/ws-public/proposals", "user-affiliate", lifecyclehttp.CreateProposalRequest{
		Title: "Transit Expansion",
		Type:  "new_law",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create proposal status %d: %s", rec.Code, rec.Body.String())
	}
	var resp lifecyclehttp.CreateProposalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestProposalVoteRoundTrip(t *testing.T) {
	server, _ := newTestServer()
	created := createTestProposal(t, server)

	rec := doJSON(t, server, http.MethodPost, "/v1/proposals/"+created.Proposal.ProposalID+"/vote", "user-affiliate", lifecyclehttp.CastVoteRequest{Choice: "yes"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("cast vote status %d: %s", rec.Code, rec.Body.String())
	}
	var vote lifecyclehttp.CastVoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &vote); err != nil {
		t.Fatalf("decode vote: %v", err)
	}
	if vote.SessionTotalVotes != 1 || vote.Option != "yes" {
		t.Fatalf("unexpected vote response %+v", vote)
	}

	rec = doJSON(t, server, http.MethodGet, "/v1/voting/sessions/"+created.Session.SessionID+"/results", "user-affiliate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results status %d: %s", rec.Code, rec.Body.String())
	}
	var results lifecyclehttp.SessionResultsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if results.TotalVotes != 1 || results.Winner == nil || results.Winner.Value != "yes" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestMutationsRequireUserHeader(t *testing.T) {
	server, _ := newTestServer()

	paths := []string{
		"/v1/workspaces",
		"/v1/workspaces/ws-public/proposals",
		"/v1/proposals/p-1/vote",
		"/v1/proposals/p-1/withdraw",
		"/v1/voting/sessions/s-1/close",
	}
	for _, path := range paths {
		rec := doJSON(t, server, http.MethodPost, path, "", map[string]string{})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without identity: status %d", path, rec.Code)
		}
	}
}

func TestVoteErrorStatusMapping(t *testing.T) {
	server, lifecycle := newTestServer()
	created := createTestProposal(t, server)

	rec := doJSON(t, server, http.MethodPost, "/v1/proposals/missing/vote", "user-affiliate", lifecyclehttp.CastVoteRequest{Choice: "yes"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown proposal: status %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodPost, "/v1/proposals/"+created.Proposal.ProposalID+"/vote", "user-affiliate", lifecyclehttp.CastVoteRequest{Choice: "maybe"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown option: status %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodPost, "/v1/proposals/"+created.Proposal.ProposalID+"/vote", "user-registered", lifecyclehttp.CastVoteRequest{Choice: "yes"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("caller without voting standing: status %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodPost, "/v1/proposals/"+created.Proposal.ProposalID+"/vote", "user-affiliate", lifecyclehttp.CastVoteRequest{Choice: "yes"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first vote: status %d", rec.Code)
	}
	rec = doJSON(t, server, http.MethodPost, "/v1/proposals/"+created.Proposal.ProposalID+"/vote", "user-affiliate", lifecyclehttp.CastVoteRequest{Choice: "yes"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate vote: status %d", rec.Code)
	}

	// Expire the window and confirm the dedicated gone status.
	session, err := lifecycle.Store.GetSession(context.Background(), created.Session.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	session.StartsAt = time.Now().UTC().Add(-2 * time.Hour)
	session.EndsAt = time.Now().UTC().Add(-time.Hour)
	lifecycle.Store.SetSession(session)

	rec = doJSON(t, server, http.MethodPost, "/v1/proposals/"+created.Proposal.ProposalID+"/vote", "user-affiliate", lifecyclehttp.CastVoteRequest{Choice: "no"})
	if rec.Code != http.StatusGone {
		t.Fatalf("expired window: status %d", rec.Code)
	}
}

func TestWorkspaceRoutes(t *testing.T) {
	server, _ := newTestServer()

	rec := doJSON(t, server, http.MethodPost, "/v1/workspaces", "user-affiliate", map[string]string{
		"name": "Harbor District",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create workspace status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/v1/workspaces", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list workspaces status %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, "/v1/workspaces/ws-missing", "user-affiliate", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing workspace status %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, "/v1/me/capabilities", "user-affiliate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("capabilities status %d", rec.Code)
	}
}
