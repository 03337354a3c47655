package contract

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Report, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
