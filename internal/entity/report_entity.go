package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReportType string

const (
	ReportTypeImage ReportType = "image_analysis"
	ReportTypeVoice ReportType = "voice_examination"
	ReportTypeChat  ReportType = "chat_consultation"
)

// Report is immutable once created; re-generation inserts a new row.
type Report struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	ReportType   ReportType
	RelatedId    uuid.UUID
	ReportData   string // JSON payload snapshot
	DocumentPath string
	CreatedAt    time.Time
}
