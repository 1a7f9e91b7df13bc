package votinglifecycle

import (
	"log/slog"

	httpadapter "agora/contexts/civic-governance/voting-lifecycle/adapters/http"
	"agora/contexts/civic-governance/voting-lifecycle/adapters/memory"
	"agora/contexts/civic-governance/voting-lifecycle/application/commands"
	"agora/contexts/civic-governance/voting-lifecycle/application/queries"
	"agora/contexts/civic-governance/voting-lifecycle/application/sessions"
	"agora/contexts/civic-governance/voting-lifecycle/application/workers"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Lifecycle sessions.Manager
	Sweeper   workers.SessionSweeper
	Relay     workers.OutboxRelay
	Store     *memory.Store
}

type Dependencies struct {
	Gate      ports.AccessGate
	Proposals ports.ProposalRepository
	Sessions  ports.SessionRepository
	Votes     ports.VoteRepository
	Outbox    ports.OutboxWriter
	OutboxLog ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	// DefaultVotingDays is the fallback voting window when a workspace has
	// no period configured.
	DefaultVotingDays int
	Logger            *slog.Logger
}

func NewModule(deps Dependencies) Module {
	lifecycle := sessions.Manager{
		Proposals: deps.Proposals,
		Sessions:  deps.Sessions,
		Votes:     deps.Votes,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	proposalUseCase := commands.ProposalUseCase{
		Gate:              deps.Gate,
		Proposals:         deps.Proposals,
		SessionWriter:     deps.Sessions,
		Outbox:            deps.Outbox,
		Clock:             deps.Clock,
		IDGen:             deps.IDGen,
		DefaultVotingDays: deps.DefaultVotingDays,
		Logger:            deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Gate:      deps.Gate,
		Proposals: deps.Proposals,
		Sessions:  deps.Sessions,
		Votes:     deps.Votes,
		Lifecycle: lifecycle,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	sessionUseCase := commands.SessionUseCase{
		Gate:      deps.Gate,
		Sessions:  deps.Sessions,
		Lifecycle: lifecycle,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	proposalReads := queries.ProposalQueryUseCase{
		Gate:      deps.Gate,
		Proposals: deps.Proposals,
		Logger:    deps.Logger,
	}
	sessionReads := queries.SessionQueryUseCase{
		Gate:      deps.Gate,
		Proposals: deps.Proposals,
		Sessions:  deps.Sessions,
		Votes:     deps.Votes,
		Lifecycle: lifecycle,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	module := Module{
		Handler: httpadapter.Handler{
			Proposals:     proposalUseCase,
			Votes:         voteUseCase,
			Sessions:      sessionUseCase,
			ProposalReads: proposalReads,
			SessionReads:  sessionReads,
			Logger:        deps.Logger,
		},
		Lifecycle: lifecycle,
		Sweeper: workers.SessionSweeper{
			Sessions:  deps.Sessions,
			Lifecycle: lifecycle,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
	if deps.OutboxLog != nil && deps.Publisher != nil {
		module.Relay = workers.OutboxRelay{
			Outbox:    deps.OutboxLog,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		}
	}
	return module
}

func NewInMemoryModule(gate ports.AccessGate, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Gate:      gate,
		Proposals: store,
		Sessions:  store,
		Votes:     store,
		Outbox:    store,
		OutboxLog: store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
