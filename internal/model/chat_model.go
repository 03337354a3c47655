package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatConversation struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ChatConversation) TableName() string {
	return "chat_conversations"
}

type ChatMessage struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	Message        string    `gorm:"type:text;not null"`
	Response       string    `gorm:"type:text"`
	MessageType    string    `gorm:"type:varchar(32);not null;default:'question'"`
	AiModelUsed    string    `gorm:"type:varchar(64)"`
	ResponseTimeMs int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
