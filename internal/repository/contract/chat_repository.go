package contract

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatConversationRepository interface {
	Create(ctx context.Context, conv *entity.ChatConversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatConversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatConversation, error)
	// Touch bumps updated_at; called whenever a message is appended.
	Touch(ctx context.Context, id uuid.UUID) error
}

type ChatMessageRepository interface {
	Create(ctx context.Context, msg *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
