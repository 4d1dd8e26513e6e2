package contract

import (
	"context"

	"fin-query-be/pkg/store"
)

// LiveSessionRepository holds hot funnel sessions between turns, including
// sessions suspended in AWAITING_USER. Entries expire on their own; the
// durable row in postgres is the only record that outlives the TTL.
type LiveSessionRepository interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, sessionID string) (*store.Session, bool, error)
	Delete(ctx context.Context, sessionID string) error
}
