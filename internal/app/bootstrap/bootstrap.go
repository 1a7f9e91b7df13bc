package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	votinglifecycle "agora/contexts/civic-governance/voting-lifecycle"
	lifecyclepostgres "agora/contexts/civic-governance/voting-lifecycle/adapters/postgres"
	lifecycleworkers "agora/contexts/civic-governance/voting-lifecycle/application/workers"
	accessgate "agora/contexts/identity-access/access-gate"
	gatepostgres "agora/contexts/identity-access/access-gate/adapters/postgres"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	sweeper       lifecycleworkers.SessionSweeper
	relay         lifecycleworkers.OutboxRelay
	sweepEnabled  bool
	relayEnabled  bool
	sweepInterval time.Duration
	relayInterval time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	gateModule, lifecycleModule := buildModules(pg, nil, logger, cfg)
	server := httpserver.New(gateModule, lifecycleModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	_, lifecycleModule := buildModules(pg, kafka, logger, cfg)
	return &WorkerApp{
		postgres:      pg,
		sweeper:       lifecycleModule.Sweeper,
		relay:         lifecycleModule.Relay,
		sweepEnabled:  cfg.EnableSessionSweeper,
		relayEnabled:  cfg.EnableOutboxRelay,
		sweepInterval: cfg.SweepInterval,
		relayInterval: cfg.RelayInterval,
		logger:        logger,
	}, nil
}

// buildModules wires both contexts against one postgres connection. A nil
// publisher leaves the outbox relay unconstructed, which the API process
// wants: it only appends to the outbox.
func buildModules(
	pg *db.Postgres,
	publisher *messaging.Kafka,
	logger *slog.Logger,
	cfg config.Config,
) (accessgate.Module, votinglifecycle.Module) {
	gateRepo := gatepostgres.NewRepository(pg.DB, logger)
	gateModule := accessgate.NewModule(accessgate.Dependencies{
		Users:      gateRepo,
		Workspaces: gateRepo,
		Clock:      gatepostgres.SystemClock{},
		IDGen:      gatepostgres.UUIDGenerator{},
		Logger:     logger,
	})

	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	lifecycleDeps := votinglifecycle.Dependencies{
		Gate:              NewAccessGateBridge(gateModule.Gate),
		Proposals:         lifecycleRepo,
		Sessions:          lifecycleRepo,
		Votes:             lifecycleRepo,
		Outbox:            lifecycleRepo,
		Clock:             lifecyclepostgres.SystemClock{},
		IDGen:             lifecyclepostgres.UUIDGenerator{},
		DefaultVotingDays: cfg.DefaultVotingWindowDays,
		Logger:            logger,
	}
	if publisher != nil {
		lifecycleDeps.OutboxLog = lifecycleRepo
		lifecycleDeps.Publisher = publisher
	}
	return gateModule, votinglifecycle.NewModule(lifecycleDeps)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if !w.sweepEnabled && !w.relayEnabled {
		w.logger.Info("worker app has no jobs enabled, exiting",
			"event", "bootstrap_worker_idle",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return nil
	}

	sweepTicker := time.NewTicker(w.sweepInterval)
	defer sweepTicker.Stop()
	relayTicker := time.NewTicker(w.relayInterval)
	defer relayTicker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.sweepInterval.String(),
		"relay_interval", w.relayInterval.String(),
		"sweep_enabled", w.sweepEnabled,
		"relay_enabled", w.relayEnabled,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sweepTicker.C:
			if !w.sweepEnabled {
				continue
			}
			if _, err := w.sweeper.RunOnce(ctx); err != nil {
				return err
			}
		case <-relayTicker.C:
			if !w.relayEnabled {
				continue
			}
			if err := w.relay.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
