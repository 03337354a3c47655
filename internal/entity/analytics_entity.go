package entity

import (
	"time"

	"github.com/google/uuid"
)

// AnalyticsEvent is the append-only audit trail. Every mutating operation
// writes one, success or failure.
type AnalyticsEvent struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	ActionType string
	Details    string // JSON
	CreatedAt  time.Time
}
