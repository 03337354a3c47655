package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "EXAMINATION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeUserRegistered       = "USER_REGISTERED"
	TypeExaminationCreated   = "EXAMINATION_CREATED"
	TypeExaminationCompleted = "EXAMINATION_COMPLETED"
	TypeExaminationFailed    = "EXAMINATION_FAILED"
	TypeReportGenerated      = "REPORT_GENERATED"
)

func NewExaminationEvent(eventType string, examID, userID uuid.UUID, status string) Event {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"exam_id": examID.String(),
			"user_id": userID.String(),
			"status":  status,
		},
		OccurredAt: time.Now(),
	}
}
