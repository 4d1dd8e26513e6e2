package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FunnelSession struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Status        string         `gorm:"type:varchar(32);not null;index"`
	Slots         datatypes.JSON `gorm:"type:jsonb"`
	Evidence      datatypes.JSON `gorm:"type:jsonb"`
	AttemptCount  int            `gorm:"default:0"`
	ChaseQuestion string         `gorm:"type:text"`
	ChaseOptions  datatypes.JSON `gorm:"type:jsonb"`
	Caveats       string         `gorm:"type:text"`
	FailureReason string         `gorm:"type:text"`
	Interactive   bool           `gorm:"default:true"`
	LastQuery     string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (FunnelSession) TableName() string {
	return "funnel_sessions"
}
