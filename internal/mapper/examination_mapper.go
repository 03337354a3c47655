package mapper

import (
	"medassist-be/internal/entity"
	"medassist-be/internal/model"

	"gorm.io/datatypes"
)

type ExaminationMapper struct{}

func NewExaminationMapper() *ExaminationMapper {
	return &ExaminationMapper{}
}

func (m *ExaminationMapper) ToEntity(e *model.Examination) *entity.Examination {
	if e == nil {
		return nil
	}

	var patientContext *string
	if len(e.PatientContext) > 0 {
		s := string(e.PatientContext)
		patientContext = &s
	}

	var rawAnalysis *string
	if len(e.RawAnalysis) > 0 {
		s := string(e.RawAnalysis)
		rawAnalysis = &s
	}

	return &entity.Examination{
		Id:              e.Id,
		UserId:          e.UserId,
		Kind:            entity.ExamKind(e.Kind),
		DeclaredType:    e.DeclaredType,
		ArtifactPath:    e.ArtifactPath,
		ArtifactName:    e.ArtifactName,
		FileSize:        e.FileSize,
		PatientContext:  patientContext,
		Status:          entity.ExamStatus(e.Status),
		FailureReason:   e.FailureReason,
		Transcript:      e.Transcript,
		Summary:         e.Summary,
		Diagnosis:       e.Diagnosis,
		Recommendations: e.Recommendations,
		Confidence:      e.Confidence,
		RawAnalysis:     rawAnalysis,
		DurationSeconds: e.DurationSeconds,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		CompletedAt:     e.CompletedAt,
	}
}

func (m *ExaminationMapper) ToModel(e *entity.Examination) *model.Examination {
	if e == nil {
		return nil
	}

	var patientContext datatypes.JSON
	if e.PatientContext != nil {
		patientContext = datatypes.JSON(*e.PatientContext)
	}

	var rawAnalysis datatypes.JSON
	if e.RawAnalysis != nil {
		rawAnalysis = datatypes.JSON(*e.RawAnalysis)
	}

	return &model.Examination{
		Id:              e.Id,
		UserId:          e.UserId,
		Kind:            string(e.Kind),
		DeclaredType:    e.DeclaredType,
		ArtifactPath:    e.ArtifactPath,
		ArtifactName:    e.ArtifactName,
		FileSize:        e.FileSize,
		PatientContext:  patientContext,
		Status:          string(e.Status),
		FailureReason:   e.FailureReason,
		Transcript:      e.Transcript,
		Summary:         e.Summary,
		Diagnosis:       e.Diagnosis,
		Recommendations: e.Recommendations,
		Confidence:      e.Confidence,
		RawAnalysis:     rawAnalysis,
		DurationSeconds: e.DurationSeconds,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		CompletedAt:     e.CompletedAt,
	}
}

func (m *ExaminationMapper) ToEntities(exams []*model.Examination) []*entity.Examination {
	entities := make([]*entity.Examination, len(exams))
	for i, e := range exams {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
