package contract

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, event *entity.AnalyticsEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
