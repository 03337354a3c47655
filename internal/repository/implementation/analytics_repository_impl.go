package implementation

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/mapper"
	"medassist-be/internal/model"
	"medassist-be/internal/repository/contract"
	"medassist-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AnalyticsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalyticsMapper
}

func NewAnalyticsRepository(db *gorm.DB) contract.AnalyticsRepository {
	return &AnalyticsRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalyticsMapper(),
	}
}

func (r *AnalyticsRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnalyticsRepositoryImpl) Create(ctx context.Context, event *entity.AnalyticsEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnalyticsRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error) {
	var models []*model.AnalyticsEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AnalyticsRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AnalyticsEvent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
