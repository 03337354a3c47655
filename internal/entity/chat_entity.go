package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatConversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage holds a prompt and the collaborator's reply. Append-only.
type ChatMessage struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	UserId         uuid.UUID
	Message        string
	Response       string
	MessageType    string // "question", "followup"
	AiModelUsed    string
	ResponseTimeMs int64
	CreatedAt      time.Time
}
