package entity

import (
	"time"

	"fin-query-be/pkg/store"

	"github.com/google/uuid"
)

// FunnelSession is the durable record of one resolution funnel run.
// The live state machine works on store.Session; this row tracks the
// session across suspensions and keeps the terminal outcome queryable.
type FunnelSession struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	Status        string
	Slots         store.SlotSet
	Evidence      []store.EvidenceChunk
	AttemptCount  int
	ChaseQuestion string
	ChaseOptions  []string
	Caveats       string
	FailureReason string
	Interactive   bool
	LastQuery     string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
