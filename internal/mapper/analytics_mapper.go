package mapper

import (
	"medassist-be/internal/entity"
	"medassist-be/internal/model"

	"gorm.io/datatypes"
)

type AnalyticsMapper struct{}

func NewAnalyticsMapper() *AnalyticsMapper {
	return &AnalyticsMapper{}
}

func (m *AnalyticsMapper) ToEntity(e *model.AnalyticsEvent) *entity.AnalyticsEvent {
	if e == nil {
		return nil
	}
	return &entity.AnalyticsEvent{
		Id:         e.Id,
		UserId:     e.UserId,
		ActionType: e.ActionType,
		Details:    string(e.Details),
		CreatedAt:  e.CreatedAt,
	}
}

func (m *AnalyticsMapper) ToModel(e *entity.AnalyticsEvent) *model.AnalyticsEvent {
	if e == nil {
		return nil
	}
	return &model.AnalyticsEvent{
		Id:         e.Id,
		UserId:     e.UserId,
		ActionType: e.ActionType,
		Details:    datatypes.JSON(e.Details),
		CreatedAt:  e.CreatedAt,
	}
}

func (m *AnalyticsMapper) ToEntities(events []*model.AnalyticsEvent) []*entity.AnalyticsEvent {
	entities := make([]*entity.AnalyticsEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
