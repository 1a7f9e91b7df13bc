package accessgate

import (
	"log/slog"

	httpadapter "agora/contexts/identity-access/access-gate/adapters/http"
	"agora/contexts/identity-access/access-gate/adapters/memory"
	"agora/contexts/identity-access/access-gate/application/commands"
	"agora/contexts/identity-access/access-gate/application/queries"
	"agora/contexts/identity-access/access-gate/domain/entities"
	"agora/contexts/identity-access/access-gate/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Gate    queries.GateUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Users      ports.UserRepository
	Workspaces ports.WorkspaceRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	gate := queries.GateUseCase{
		Users:      deps.Users,
		Workspaces: deps.Workspaces,
		Logger:     deps.Logger,
	}
	workspaceWrites := commands.WorkspaceUseCase{
		Users:      deps.Users,
		Workspaces: deps.Workspaces,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	workspaceReads := queries.WorkspaceUseCase{
		Users:      deps.Users,
		Workspaces: deps.Workspaces,
	}
	return Module{
		Handler: httpadapter.Handler{
			Workspaces:     workspaceWrites,
			WorkspaceReads: workspaceReads,
			Gate:           gate,
			Logger:         deps.Logger,
		},
		Gate: gate,
	}
}

func NewInMemoryModule(
	users []entities.User,
	workspaces []entities.Workspace,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(users, workspaces)
	module := NewModule(Dependencies{
		Users:      store,
		Workspaces: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
