package mapper

import (
	"medassist-be/internal/entity"
	"medassist-be/internal/model"

	"gorm.io/datatypes"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

func (m *ReportMapper) ToEntity(r *model.Report) *entity.Report {
	if r == nil {
		return nil
	}
	return &entity.Report{
		Id:           r.Id,
		UserId:       r.UserId,
		ReportType:   entity.ReportType(r.ReportType),
		RelatedId:    r.RelatedId,
		ReportData:   string(r.ReportData),
		DocumentPath: r.DocumentPath,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *ReportMapper) ToModel(r *entity.Report) *model.Report {
	if r == nil {
		return nil
	}
	return &model.Report{
		Id:           r.Id,
		UserId:       r.UserId,
		ReportType:   string(r.ReportType),
		RelatedId:    r.RelatedId,
		ReportData:   datatypes.JSON(r.ReportData),
		DocumentPath: r.DocumentPath,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *ReportMapper) ToEntities(reports []*model.Report) []*entity.Report {
	entities := make([]*entity.Report, len(reports))
	for i, r := range reports {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
