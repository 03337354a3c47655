package dto

import (
	"time"

	"github.com/google/uuid"
)

type DashboardStats struct {
	ImagesAnalyzed int64 `json:"imagesAnalyzed"`
	VoiceExams     int64 `json:"voiceExams"`
	ChatMessages   int64 `json:"chatMessages"`
	TotalDiagnoses int64 `json:"totalDiagnoses"`
}

type ActivityItem struct {
	Id        uuid.UUID              `json:"id"`
	EventType string                 `json:"eventType"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type DashboardResponse struct {
	Stats          DashboardStats `json:"stats"`
	RecentActivity []ActivityItem `json:"recentActivity"`
}
