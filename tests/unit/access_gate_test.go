package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	accessgate "agora/contexts/identity-access/access-gate"
	"agora/contexts/identity-access/access-gate/domain/entities"
	domainerrors "agora/contexts/identity-access/access-gate/domain/errors"
	httptransport "agora/contexts/identity-access/access-gate/transport/http"
)

func seedUsers() []entities.User {
	now := time.Now().Add(-24 * time.Hour)
	return []entities.User{
		{UserID: "user-registered", Username: "registered", Level: entities.LevelRegistered, IsActive: true, CreatedAt: now},
		{UserID: "user-affiliate", Username: "affiliate", Level: entities.LevelAffiliate, IsActive: true, CreatedAt: now},
		{UserID: "user-special", Username: "special", Level: entities.LevelSpecial, IsActive: true, CreatedAt: now},
		{UserID: "user-verified", Username: "verified", Level: entities.LevelRegistered, IsVerified: true, IsActive: true, CreatedAt: now},
		{UserID: "user-super", Username: "root", Level: entities.LevelRegistered, IsSuperuser: true, IsActive: true, CreatedAt: now},
		{UserID: "user-disabled", Username: "disabled", Level: entities.LevelAffiliate, IsActive: false, CreatedAt: now},
	}
}

func seedWorkspaces() []entities.Workspace {
	now := time.Now().Add(-24 * time.Hour)
	return []entities.Workspace{
		{
			WorkspaceID:          "ws-public",
			Name:                 "City Budget",
			Slug:                 "city-budget",
			Type:                 entities.WorkspaceTypeBudget,
			Visibility:           entities.VisibilityPublic,
			QuorumPercentage:     10,
			VotingPeriodDays:     7,
			AllowPublicProposals: true,
			AllowPublicVoting:    true,
			IsActive:             true,
			CreatedAt:            now,
		},
		{
			WorkspaceID:      "ws-private",
			Name:             "Affiliate Council",
			Slug:             "affiliate-council",
			Type:             entities.WorkspaceTypePolicyArea,
			Visibility:       entities.VisibilityAffiliatesOnly,
			QuorumPercentage: 20,
			VotingPeriodDays: 30,
			IsActive:         true,
			CreatedAt:        now,
		},
	}
}

func TestCapabilitiesByLevel(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	cases := []struct {
		userID      string
		canVote     bool
		canModerate bool
		canPrivate  bool
	}{
		{"user-registered", false, false, false},
		{"user-affiliate", true, false, true},
		{"user-special", true, true, true},
		{"user-verified", false, false, true},
		{"user-super", true, true, true},
	}
	for _, tc := range cases {
		caps, err := module.Handler.CapabilitiesHandler(context.Background(), tc.userID)
		if err != nil {
			t.Fatalf("capabilities for %s: %v", tc.userID, err)
		}
		if caps.CanVote != tc.canVote || caps.CanModerate != tc.canModerate || caps.CanViewPrivate != tc.canPrivate {
			t.Fatalf("capabilities for %s = %+v", tc.userID, caps)
		}
	}
}

func TestAnonymousCapabilitiesAreEmpty(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	caps, err := module.Handler.CapabilitiesHandler(context.Background(), "")
	if err != nil {
		t.Fatalf("anonymous capabilities: %v", err)
	}
	if caps.CanViewPrivate || caps.CanParticipate || caps.CanVote || caps.CanModerate {
		t.Fatalf("anonymous capabilities should be empty, got %+v", caps)
	}
}

func TestResolveUserInactive(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	_, err := module.Gate.ResolveUser(context.Background(), "user-disabled")
	if !errors.Is(err, domainerrors.ErrUserInactive) {
		t.Fatalf("expected inactive user error, got %v", err)
	}
}

func TestResolveUserUnknownIsUnauthenticated(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	_, err := module.Gate.ResolveUser(context.Background(), "user-ghost")
	if !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAffiliatesOnlyWorkspaceHiddenFromRegistered(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	visible, err := module.Gate.CanView(context.Background(), "user-registered", "ws-private")
	if err != nil {
		t.Fatalf("can view: %v", err)
	}
	if visible {
		t.Fatal("registered user should not see an affiliates-only workspace")
	}

	visible, err = module.Gate.CanView(context.Background(), "user-affiliate", "ws-private")
	if err != nil {
		t.Fatalf("can view: %v", err)
	}
	if !visible {
		t.Fatal("affiliate should see an affiliates-only workspace")
	}
}

func TestPublicWorkspaceVisibleToAnonymous(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	visible, err := module.Gate.CanView(context.Background(), "", "ws-public")
	if err != nil {
		t.Fatalf("can view: %v", err)
	}
	if !visible {
		t.Fatal("public workspace should be visible to anonymous callers")
	}
}

func TestListWorkspacesFiltersPrivateForRegistered(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	list, err := module.Handler.ListWorkspacesHandler(context.Background(), "user-registered", "")
	if err != nil {
		t.Fatalf("list workspaces: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].WorkspaceID != "ws-public" {
		t.Fatalf("registered user should list only the public workspace, got %+v", list.Items)
	}

	list, err = module.Handler.ListWorkspacesHandler(context.Background(), "user-affiliate", "")
	if err != nil {
		t.Fatalf("list workspaces: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("affiliate should list both workspaces, got %d", len(list.Items))
	}
}

func TestCreateWorkspaceDefaultsAndSlug(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	created, err := module.Handler.CreateWorkspaceHandler(context.Background(), "user-affiliate", httptransport.CreateWorkspaceRequest{
		Name: "Parks & Recreation Policy",
	})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	if created.Slug != "parks-recreation-policy" {
		t.Fatalf("unexpected slug %q", created.Slug)
	}
	if created.Visibility != string(entities.VisibilityPublic) {
		t.Fatalf("default visibility should be public, got %q", created.Visibility)
	}
	if created.VotingPeriodDays <= 0 {
		t.Fatalf("voting period default missing, got %d", created.VotingPeriodDays)
	}
	if created.OwnerID != "user-affiliate" {
		t.Fatalf("owner should be the creator, got %q", created.OwnerID)
	}
}

func TestCreateWorkspaceRequiresAffiliate(t *testing.T) {
	module := accessgate.NewInMemoryModule(seedUsers(), seedWorkspaces(), nil)

	_, err := module.Handler.CreateWorkspaceHandler(context.Background(), "user-registered", httptransport.CreateWorkspaceRequest{
		Name: "Rogue Workspace",
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
