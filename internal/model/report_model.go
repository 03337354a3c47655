package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Report struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	ReportType   string         `gorm:"type:varchar(32);not null"`
	RelatedId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	ReportData   datatypes.JSON `gorm:"type:jsonb"`
	DocumentPath string         `gorm:"type:varchar(512);not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (Report) TableName() string {
	return "reports"
}
