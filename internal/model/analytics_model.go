package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnalyticsEvent struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	ActionType string         `gorm:"type:varchar(64);not null"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
