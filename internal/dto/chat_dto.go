package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type CreateConversationResponse struct {
	ConversationId uuid.UUID `json:"conversationId"`
	Title          string    `json:"title"`
}

type SendMessageRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
	Message        string    `json:"message" validate:"required"`
	MessageType    string    `json:"message_type"`
}

type SendMessageResponse struct {
	MessageId    uuid.UUID `json:"messageId"`
	Response     string    `json:"response"`
	ResponseTime int       `json:"responseTime"`
}

type ChatMessageResponse struct {
	Id           uuid.UUID `json:"id"`
	Message      string    `json:"message"`
	Response     string    `json:"response"`
	MessageType  string    `json:"messageType"`
	ResponseTime *int      `json:"responseTime,omitempty"`
	AiModelUsed  string    `json:"aiModelUsed,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ChatHistoryResponse struct {
	ConversationId uuid.UUID             `json:"conversationId"`
	Messages       []ChatMessageResponse `json:"messages"`
}
