package entity

import (
	"time"

	"github.com/google/uuid"
)

type EvidenceDocument struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Source    string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
