package commands

import (
	"time"

	"agora/contexts/civic-governance/voting-lifecycle/application/sessions"
	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

func newLifecycleEnvelope(
	eventID string,
	eventType string,
	proposalID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	return sessions.NewLifecycleEnvelope(eventID, eventType, proposalID, occurredAt, data)
}
