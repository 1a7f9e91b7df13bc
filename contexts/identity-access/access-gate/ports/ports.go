package ports

import (
	"context"
	"time"

	"agora/contexts/identity-access/access-gate/domain/entities"
)

type UserRepository interface {
	GetUser(ctx context.Context, userID string) (entities.User, error)
	SaveUser(ctx context.Context, user entities.User) error
}

// WorkspaceFilter defines read-side filtering for workspace listings.
type WorkspaceFilter struct {
	// PublicOnly restricts results to public workspaces; set for callers
	// without affiliate standing.
	PublicOnly bool
	Search     string
}

type WorkspaceRepository interface {
	GetWorkspace(ctx context.Context, workspaceID string) (entities.Workspace, error)
	GetWorkspaceBySlug(ctx context.Context, slug string) (entities.Workspace, bool, error)
	SaveWorkspace(ctx context.Context, workspace entities.Workspace) error
	ListWorkspaces(ctx context.Context, filter WorkspaceFilter) ([]entities.Workspace, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
