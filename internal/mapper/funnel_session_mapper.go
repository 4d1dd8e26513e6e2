package mapper

import (
	"encoding/json"
	"time"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/model"
	"fin-query-be/pkg/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FunnelSessionMapper struct{}

func NewFunnelSessionMapper() *FunnelSessionMapper {
	return &FunnelSessionMapper{}
}

func (m *FunnelSessionMapper) ToEntity(e *model.FunnelSession) *entity.FunnelSession {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var slots store.SlotSet
	if len(e.Slots) > 0 {
		_ = json.Unmarshal(e.Slots, &slots)
	}
	var evidence []store.EvidenceChunk
	if len(e.Evidence) > 0 {
		_ = json.Unmarshal(e.Evidence, &evidence)
	}
	var chaseOptions []string
	if len(e.ChaseOptions) > 0 {
		_ = json.Unmarshal(e.ChaseOptions, &chaseOptions)
	}

	return &entity.FunnelSession{
		Id:            e.Id,
		UserId:        e.UserId,
		Status:        e.Status,
		Slots:         slots,
		Evidence:      evidence,
		AttemptCount:  e.AttemptCount,
		ChaseQuestion: e.ChaseQuestion,
		ChaseOptions:  chaseOptions,
		Caveats:       e.Caveats,
		FailureReason: e.FailureReason,
		Interactive:   e.Interactive,
		LastQuery:     e.LastQuery,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     e.DeletedAt.Valid,
	}
}

func (m *FunnelSessionMapper) ToModel(e *entity.FunnelSession) *model.FunnelSession {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	slots, _ := json.Marshal(e.Slots)
	var evidence datatypes.JSON
	if len(e.Evidence) > 0 {
		evidence, _ = json.Marshal(e.Evidence)
	}
	var chaseOptions datatypes.JSON
	if len(e.ChaseOptions) > 0 {
		chaseOptions, _ = json.Marshal(e.ChaseOptions)
	}

	return &model.FunnelSession{
		Id:            e.Id,
		UserId:        e.UserId,
		Status:        e.Status,
		Slots:         slots,
		Evidence:      evidence,
		AttemptCount:  e.AttemptCount,
		ChaseQuestion: e.ChaseQuestion,
		ChaseOptions:  chaseOptions,
		Caveats:       e.Caveats,
		FailureReason: e.FailureReason,
		Interactive:   e.Interactive,
		LastQuery:     e.LastQuery,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

// ToLiveSession projects a durable row into the state the funnel
// controller works on.
func (m *FunnelSessionMapper) ToLiveSession(e *entity.FunnelSession) *store.Session {
	if e == nil {
		return nil
	}
	return &store.Session{
		ID:            e.Id.String(),
		UserID:        e.UserId.String(),
		Status:        e.Status,
		Slots:         e.Slots,
		Evidence:      e.Evidence,
		AttemptCount:  e.AttemptCount,
		ChaseQuestion: e.ChaseQuestion,
		ChaseOptions:  e.ChaseOptions,
		Caveats:       e.Caveats,
		FailureReason: e.FailureReason,
		Interactive:   e.Interactive,
		LastQuery:     e.LastQuery,
	}
}

// FromLiveSession folds controller state back into the durable entity.
// Timestamps are left for the persistence layer to manage.
func (m *FunnelSessionMapper) FromLiveSession(s *store.Session) (*entity.FunnelSession, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, err
	}
	userId, err := uuid.Parse(s.UserID)
	if err != nil {
		return nil, err
	}
	return &entity.FunnelSession{
		Id:            id,
		UserId:        userId,
		Status:        s.Status,
		Slots:         s.Slots,
		Evidence:      s.Evidence,
		AttemptCount:  s.AttemptCount,
		ChaseQuestion: s.ChaseQuestion,
		ChaseOptions:  s.ChaseOptions,
		Caveats:       s.Caveats,
		FailureReason: s.FailureReason,
		Interactive:   s.Interactive,
		LastQuery:     s.LastQuery,
	}, nil
}
