package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/identity-access/access-gate/domain/entities"
	domainerrors "agora/contexts/identity-access/access-gate/domain/errors"
	"agora/contexts/identity-access/access-gate/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter used for wiring and tests. It implements the
// user and workspace repositories plus the Clock and IDGenerator ports.
type Store struct {
	mu sync.RWMutex

	users      map[string]entities.User
	workspaces map[string]entities.Workspace
}

func NewStore(users []entities.User, workspaces []entities.Workspace) *Store {
	userMap := make(map[string]entities.User, len(users))
	for _, user := range users {
		userMap[user.UserID] = user
	}
	workspaceMap := make(map[string]entities.Workspace, len(workspaces))
	for _, workspace := range workspaces {
		workspaceMap[workspace.WorkspaceID] = workspace
	}
	return &Store{
		users:      userMap,
		workspaces: workspaceMap,
	}
}

func (s *Store) SetUser(user entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.UserID)] = user
}

func (s *Store) SetWorkspace(workspace entities.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[strings.TrimSpace(workspace.WorkspaceID)] = workspace
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) SaveUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.UserID)] = user
	return nil
}

func (s *Store) GetWorkspace(_ context.Context, workspaceID string) (entities.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	workspace, ok := s.workspaces[strings.TrimSpace(workspaceID)]
	if !ok {
		return entities.Workspace{}, domainerrors.ErrWorkspaceNotFound
	}
	return workspace, nil
}

func (s *Store) GetWorkspaceBySlug(_ context.Context, slug string) (entities.Workspace, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slug = strings.TrimSpace(slug)
	for _, workspace := range s.workspaces {
		if workspace.Slug == slug {
			return workspace, true, nil
		}
	}
	return entities.Workspace{}, false, nil
}

func (s *Store) SaveWorkspace(_ context.Context, workspace entities.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[strings.TrimSpace(workspace.WorkspaceID)] = workspace
	return nil
}

func (s *Store) ListWorkspaces(
	_ context.Context,
	filter ports.WorkspaceFilter,
) ([]entities.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	items := make([]entities.Workspace, 0)
	for _, workspace := range s.workspaces {
		if !workspace.IsActive {
			continue
		}
		if filter.PublicOnly && workspace.Visibility != entities.VisibilityPublic {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(workspace.Name), search) &&
			!strings.Contains(strings.ToLower(workspace.Description), search) {
			continue
		}
		items = append(items, workspace)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
