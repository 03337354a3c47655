package implementation

import (
	"context"
	"errors"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/mapper"
	"medassist-be/internal/model"
	"medassist-be/internal/repository/contract"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExaminationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExaminationMapper
}

func NewExaminationRepository(db *gorm.DB) contract.ExaminationRepository {
	return &ExaminationRepositoryImpl{
		db:     db,
		mapper: mapper.NewExaminationMapper(),
	}
}

func (r *ExaminationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ExaminationRepositoryImpl) Create(ctx context.Context, exam *entity.Examination) error {
	m := r.mapper.ToModel(exam)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*exam = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExaminationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Examination, error) {
	var m model.Examination
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ExaminationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Examination, error) {
	var models []*model.Examination
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ExaminationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Examination{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ExaminationRepositoryImpl) AttachArtifact(ctx context.Context, id uuid.UUID, artifactPath, artifactName string, fileSize int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Examination{}).
		Where("id = ? AND status = ?", id, string(entity.ExamStatusPending)).
		Updates(map[string]interface{}{
			"artifact_path": artifactPath,
			"artifact_name": artifactName,
			"file_size":     fileSize,
			"status":        string(entity.ExamStatusProcessing),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ExaminationRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, result *entity.EnrichedResult, durationSeconds *int) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"transcript":      result.Transcript,
		"summary":         result.Summary,
		"diagnosis":       result.Diagnosis,
		"recommendations": result.Recommendations,
		"confidence":      result.Confidence,
		"raw_analysis":    datatypes.JSON(result.RawAnalysis),
		"failure_reason":  nil,
		"status":          string(entity.ExamStatusCompleted),
		"completed_at":    now,
		"updated_at":      now,
	}
	if durationSeconds != nil {
		updates["duration_seconds"] = *durationSeconds
	}
	res := r.db.WithContext(ctx).Model(&model.Examination{}).
		Where("id = ? AND status = ?", id, string(entity.ExamStatusProcessing)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ExaminationRepositoryImpl) MarkError(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Examination{}).
		Where("id = ? AND status = ?", id, string(entity.ExamStatusProcessing)).
		Updates(map[string]interface{}{
			"status":         string(entity.ExamStatusError),
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ExaminationRepositoryImpl) ClaimRetry(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Examination{}).
		Where("id = ? AND status = ?", id, string(entity.ExamStatusError)).
		Updates(map[string]interface{}{
			"status":         string(entity.ExamStatusProcessing),
			"failure_reason": nil,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ExaminationRepositoryImpl) SweepStuck(ctx context.Context, cutoff time.Time, reason string) ([]uuid.UUID, error) {
	var stuck []*model.Examination
	query := r.applySpecifications(r.db.WithContext(ctx), specification.StuckInProcessing{Cutoff: cutoff})
	if err := query.Find(&stuck).Error; err != nil {
		return nil, err
	}

	swept := make([]uuid.UUID, 0, len(stuck))
	for _, m := range stuck {
		// Conditional per-record update: a record that finished between the
		// select and here is left alone.
		ok, err := r.MarkError(ctx, m.Id, reason)
		if err != nil {
			return swept, err
		}
		if ok {
			swept = append(swept, m.Id)
		}
	}
	return swept, nil
}
