package workers

import (
	"context"
	"log/slog"
	"time"

	application "agora/contexts/civic-governance/voting-lifecycle/application"
	"agora/contexts/civic-governance/voting-lifecycle/application/sessions"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

// SessionSweeper resolves sessions whose window elapsed without any read or
// write touching them. Lazy expiry on the request path keeps observable state
// correct; the sweeper bounds how stale the stored state can get.
type SessionSweeper struct {
	Sessions  ports.SessionRepository
	Lifecycle sessions.Manager
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce resolves a bounded batch of expired active sessions and returns the
// number resolved. It keeps going past individual failures so one bad session
// cannot wedge the sweep.
func (s SessionSweeper) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(s.Logger)
	limit := s.BatchSize
	if limit <= 0 {
		limit = 50
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	expired, err := s.Sessions.ListExpiredActiveSessions(ctx, now, limit)
	if err != nil {
		logger.Error("session sweep list failed",
			"event", "lifecycle_session_sweep_list_failed",
			"module", "civic-governance/voting-lifecycle",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(expired) == 0 {
		logger.Debug("session sweep found no expired sessions",
			"event", "lifecycle_session_sweep_noop",
			"module", "civic-governance/voting-lifecycle",
			"layer", "worker",
		)
		return 0, nil
	}

	resolved := 0
	var lastErr error
	for _, session := range expired {
		if _, _, err := s.Lifecycle.Resolve(ctx, session); err != nil {
			logger.Error("session sweep resolve failed",
				"event", "lifecycle_session_sweep_resolve_failed",
				"module", "civic-governance/voting-lifecycle",
				"layer", "worker",
				"session_id", session.SessionID,
				"proposal_id", session.ProposalID,
				"error", err.Error(),
			)
			lastErr = err
			continue
		}
		resolved++
	}

	logger.Info("session sweep completed",
		"event", "lifecycle_session_sweep_completed",
		"module", "civic-governance/voting-lifecycle",
		"layer", "worker",
		"expired_count", len(expired),
		"resolved_count", resolved,
	)
	return resolved, lastErr
}
