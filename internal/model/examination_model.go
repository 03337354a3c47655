package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Examination struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Kind           string         `gorm:"type:varchar(16);not null;index"`
	DeclaredType   string         `gorm:"type:varchar(64);not null"`
	ArtifactPath   string         `gorm:"type:varchar(512)"`
	ArtifactName   string         `gorm:"type:varchar(255)"`
	FileSize       int64          `gorm:"not null;default:0"`
	PatientContext datatypes.JSON `gorm:"type:jsonb"`

	Status        string  `gorm:"type:varchar(16);not null;index;default:'pending'"`
	FailureReason *string `gorm:"type:text"`

	Transcript      *string        `gorm:"type:text"`
	Summary         *string        `gorm:"type:text"`
	Diagnosis       *string        `gorm:"type:text"`
	Recommendations *string        `gorm:"type:text"`
	Confidence      *float64       `gorm:"type:double precision"`
	RawAnalysis     datatypes.JSON `gorm:"type:jsonb"`
	DurationSeconds *int

	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	CompletedAt *time.Time
}

func (Examination) TableName() string {
	return "examinations"
}
