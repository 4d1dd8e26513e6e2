package events

import "time"

// Funnel outcome event types. Published on the "events.funnel.*" subjects
// so downstream consumers (query executors, analytics) can react to
// resolved or failed sessions.
const (
	TypeFunnelAnswerable = "funnel.answerable"
	TypeFunnelFailed     = "funnel.failed"
)

func NewFunnelAnswerable(sessionID, userID, resolvedQuery, caveats string) Event {
	return BaseEvent{
		Type: TypeFunnelAnswerable,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"user_id":        userID,
			"resolved_query": resolvedQuery,
			"caveats":        caveats,
		},
		OccurredAt: time.Now(),
	}
}

func NewFunnelFailed(sessionID, userID, reason string) Event {
	return BaseEvent{
		Type: TypeFunnelFailed,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}
