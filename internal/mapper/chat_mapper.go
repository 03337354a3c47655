package mapper

import (
	"medassist-be/internal/entity"
	"medassist-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ConversationToEntity(c *model.ChatConversation) *entity.ChatConversation {
	if c == nil {
		return nil
	}
	return &entity.ChatConversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.ChatConversation) *model.ChatConversation {
	if c == nil {
		return nil
	}
	return &model.ChatConversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		UserId:         msg.UserId,
		Message:        msg.Message,
		Response:       msg.Response,
		MessageType:    msg.MessageType,
		AiModelUsed:    msg.AiModelUsed,
		ResponseTimeMs: msg.ResponseTimeMs,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		UserId:         msg.UserId,
		Message:        msg.Message,
		Response:       msg.Response,
		MessageType:    msg.MessageType,
		AiModelUsed:    msg.AiModelUsed,
		ResponseTimeMs: msg.ResponseTimeMs,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

func (m *ChatMapper) ConversationsToEntities(convs []*model.ChatConversation) []*entity.ChatConversation {
	entities := make([]*entity.ChatConversation, len(convs))
	for i, c := range convs {
		entities[i] = m.ConversationToEntity(c)
	}
	return entities
}
