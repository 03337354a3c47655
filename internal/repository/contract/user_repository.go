package contract

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
