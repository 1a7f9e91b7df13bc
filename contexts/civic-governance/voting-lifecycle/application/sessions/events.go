package sessions

import (
	"encoding/json"
	"time"

	"agora/contexts/civic-governance/voting-lifecycle/ports"
)

// NewLifecycleEnvelope builds the canonical envelope for lifecycle events.
// Events are partitioned by proposal so proposal-scoped consumers see them
// in order.
func NewLifecycleEnvelope(
	eventID string,
	eventType string,
	proposalID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "voting-lifecycle",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "proposal_id",
		PartitionKey:     proposalID,
		Data:             payload,
	}, nil
}
