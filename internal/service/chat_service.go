package service

import (
	"context"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/genai"

	"github.com/google/uuid"
)

const defaultConversationTitle = "New Consultation"

// historyWindow caps how many prior exchanges are replayed to the model.
const historyWindow = 10

const chatFramingPrompt = `You are a medical AI assistant supporting licensed healthcare professionals. Provide evidence-based, clinically relevant answers. You offer decision support only, never a final diagnosis, and you recommend specialist consultation where appropriate.`

const chatFallbackResponse = `I apologize, but I am having trouble processing your question right now. Please try again in a moment. If the issue is urgent, please consult a colleague or specialist directly.`

type IChatService interface {
	CreateConversation(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	History(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ChatHistoryResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   genai.Provider
	logger     logger.ILogger
	timeout    time.Duration
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, provider genai.Provider, log logger.ILogger, timeout time.Duration) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     log,
		timeout:    timeout,
	}
}

func (s *chatService) CreateConversation(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	title := req.Title
	if title == "" {
		title = defaultConversationTitle
	}

	conv := &entity.ChatConversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := uow.ChatConversationRepository().Create(ctx, conv); err != nil {
		return nil, err
	}

	writeAudit(ctx, s.uowFactory, s.logger, userId, "conversation_created", map[string]interface{}{
		"conversation_id": conv.Id.String(),
	})

	return &dto.CreateConversationResponse{ConversationId: conv.Id, Title: conv.Title}, nil
}

func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ChatConversationRepository().FindOne(ctx, specification.ByID{ID: req.ConversationId}, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.NotFound("conversation not found")
	}

	previous, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conv.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	history := buildChatHistory(previous, req.Message)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	response, err := s.provider.Chat(callCtx, history)
	if err != nil {
		// The conversation keeps working when the model does not; the
		// apology is persisted like any other reply.
		s.logger.Warn("Chat", "Collaborator call failed, using fallback", map[string]interface{}{
			"conversation_id": conv.Id, "error": err.Error(),
		})
		response = chatFallbackResponse
	}
	elapsed := time.Since(started).Milliseconds()

	messageType := req.MessageType
	if messageType == "" {
		messageType = "question"
	}

	msg := &entity.ChatMessage{
		Id:             uuid.New(),
		ConversationId: conv.Id,
		UserId:         userId,
		Message:        req.Message,
		Response:       response,
		MessageType:    messageType,
		AiModelUsed:    s.provider.ModelName(),
		ResponseTimeMs: elapsed,
		CreatedAt:      time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := uow.ChatConversationRepository().Touch(ctx, conv.Id); err != nil {
		s.logger.Warn("Chat", "Failed to bump conversation", map[string]interface{}{
			"conversation_id": conv.Id, "error": err.Error(),
		})
	}

	writeAudit(ctx, s.uowFactory, s.logger, userId, "chat_message_sent", map[string]interface{}{
		"conversation_id": conv.Id.String(), "message_id": msg.Id.String(), "response_time_ms": elapsed,
	})

	return &dto.SendMessageResponse{
		MessageId:    msg.Id,
		Response:     response,
		ResponseTime: int(elapsed),
	}, nil
}

func (s *chatService) History(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ChatConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId}, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.NotFound("conversation not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conv.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		item := dto.ChatMessageResponse{
			Id:          m.Id,
			Message:     m.Message,
			Response:    m.Response,
			MessageType: m.MessageType,
			AiModelUsed: m.AiModelUsed,
			CreatedAt:   m.CreatedAt,
		}
		if m.ResponseTimeMs > 0 {
			rt := int(m.ResponseTimeMs)
			item.ResponseTime = &rt
		}
		items = append(items, item)
	}

	return &dto.ChatHistoryResponse{ConversationId: conv.Id, Messages: items}, nil
}

// buildChatHistory replays the last exchanges oldest-first with the framing
// prompt up front, ending on the new question.
func buildChatHistory(previous []*entity.ChatMessage, newMessage string) []genai.Message {
	history := []genai.Message{
		{Role: genai.RoleSystem, Content: chatFramingPrompt},
	}

	for i := len(previous) - 1; i >= 0; i-- {
		m := previous[i]
		history = append(history,
			genai.Message{Role: genai.RoleUser, Content: m.Message},
			genai.Message{Role: genai.RoleModel, Content: m.Response},
		)
	}

	return append(history, genai.Message{Role: genai.RoleUser, Content: newMessage})
}
