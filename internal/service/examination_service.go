package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/events"
	pktNats "medassist-be/pkg/nats"
	"medassist-be/pkg/storage"

	"github.com/google/uuid"
)

type IExaminationService interface {
	AnalyzeImage(ctx context.Context, userId uuid.UUID, req *dto.ImageAnalyzeRequest, fileName string, data []byte) (*dto.ImageAnalyzeResponse, error)
	StartVoice(ctx context.Context, userId uuid.UUID, req *dto.VoiceStartRequest) (*dto.VoiceStartResponse, error)
	UploadVoice(ctx context.Context, userId uuid.UUID, examId uuid.UUID, fileName string, data []byte) (*dto.VoiceUploadResponse, error)
	Retry(ctx context.Context, userId uuid.UUID, examId uuid.UUID) (*dto.RetryResponse, error)
	History(ctx context.Context, userId uuid.UUID, kind entity.ExamKind, page, limit int) (*dto.HistoryResponse, error)
	Show(ctx context.Context, userId uuid.UUID, examId uuid.UUID) (*dto.ExaminationResponse, error)
}

type examinationService struct {
	uowFactory       unitofwork.RepositoryFactory
	store            *storage.LocalStore
	enrichment       IEnrichmentService
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewExaminationService(
	uowFactory unitofwork.RepositoryFactory,
	store *storage.LocalStore,
	enrichment IEnrichmentService,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IExaminationService {
	return &examinationService{
		uowFactory:       uowFactory,
		store:            store,
		enrichment:       enrichment,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *examinationService) AnalyzeImage(ctx context.Context, userId uuid.UUID, req *dto.ImageAnalyzeRequest, fileName string, data []byte) (*dto.ImageAnalyzeResponse, error) {
	// Validation happens before anything touches disk or the DB.
	if err := s.store.Validate(storage.ClassImage, fileName, int64(len(data))); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	saved, err := s.store.Save(storage.ClassImage, fileName, data)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorage, "failed to store image", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	exam := &entity.Examination{
		Id:           uuid.New(),
		UserId:       userId,
		Kind:         entity.ExamKindImage,
		DeclaredType: req.ImageType,
		ArtifactPath: saved.Path,
		ArtifactName: saved.Name,
		FileSize:     saved.Size,
		Status:       entity.ExamStatusProcessing,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if req.PatientContext != "" {
		exam.PatientContext = &req.PatientContext
	}

	if err := uow.ExaminationRepository().Create(ctx, exam); err != nil {
		s.store.Remove(saved.Path)
		return nil, err
	}

	s.audit(ctx, userId, "image_uploaded", map[string]interface{}{
		"exam_id": exam.Id.String(), "image_type": req.ImageType, "file_size": saved.Size,
	})
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ctx, events.NewExaminationEvent(events.TypeExaminationCreated, exam.Id, userId, string(exam.Status)))
	}

	enriched, err := s.enrichment.Enrich(ctx, exam.Id)
	if err != nil {
		return nil, err
	}

	return &dto.ImageAnalyzeResponse{
		ImageId:  enriched.Id,
		Status:   string(enriched.Status),
		Analysis: toAnalysisResult(enriched),
	}, nil
}

func (s *examinationService) StartVoice(ctx context.Context, userId uuid.UUID, req *dto.VoiceStartRequest) (*dto.VoiceStartResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exam := &entity.Examination{
		Id:           uuid.New(),
		UserId:       userId,
		Kind:         entity.ExamKindVoice,
		DeclaredType: req.ExamType,
		Status:       entity.ExamStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if req.PatientContext != "" {
		exam.PatientContext = &req.PatientContext
	}

	if err := uow.ExaminationRepository().Create(ctx, exam); err != nil {
		return nil, err
	}

	s.audit(ctx, userId, "voice_exam_started", map[string]interface{}{
		"exam_id": exam.Id.String(), "exam_type": req.ExamType,
	})
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ctx, events.NewExaminationEvent(events.TypeExaminationCreated, exam.Id, userId, string(exam.Status)))
	}

	return &dto.VoiceStartResponse{ExamId: exam.Id, Status: string(exam.Status)}, nil
}

func (s *examinationService) UploadVoice(ctx context.Context, userId uuid.UUID, examId uuid.UUID, fileName string, data []byte) (*dto.VoiceUploadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exam, err := uow.ExaminationRepository().FindOne(ctx, specification.ByID{ID: examId}, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, apperror.NotFound("examination not found")
	}
	if exam.Kind != entity.ExamKindVoice {
		return nil, apperror.Validation("examination is not a voice examination")
	}

	if err := s.store.Validate(storage.ClassAudio, fileName, int64(len(data))); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	saved, err := s.store.Save(storage.ClassAudio, fileName, data)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorage, "failed to store recording", err)
	}

	attached, err := uow.ExaminationRepository().AttachArtifact(ctx, exam.Id, saved.Path, saved.Name, saved.Size)
	if err != nil {
		s.store.Remove(saved.Path)
		return nil, err
	}
	if !attached {
		s.store.Remove(saved.Path)
		return nil, apperror.NotReady("a recording was already uploaded for this examination")
	}

	s.audit(ctx, userId, "voice_recording_uploaded", map[string]interface{}{
		"exam_id": exam.Id.String(), "file_size": saved.Size,
	})

	enriched, err := s.enrichment.Enrich(ctx, exam.Id)
	if err != nil {
		return nil, err
	}

	res := &dto.VoiceUploadResponse{
		ExamId: enriched.Id,
		Status: string(enriched.Status),
	}
	if enriched.Transcript != nil {
		res.Transcript = *enriched.Transcript
	}
	if enriched.Summary != nil {
		res.Summary = *enriched.Summary
	}
	if enriched.Diagnosis != nil {
		res.Diagnosis = *enriched.Diagnosis
	}
	if enriched.Recommendations != nil {
		res.Recommendations = *enriched.Recommendations
	}
	return res, nil
}

func (s *examinationService) Retry(ctx context.Context, userId uuid.UUID, examId uuid.UUID) (*dto.RetryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exam, err := uow.ExaminationRepository().FindOne(ctx, specification.ByID{ID: examId}, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, apperror.NotFound("examination not found")
	}

	switch exam.Status {
	case entity.ExamStatusCompleted:
		return nil, apperror.NotReady("examination already completed")
	case entity.ExamStatusProcessing:
		return nil, apperror.NotReady("enrichment already in progress, try again later")
	case entity.ExamStatusPending:
		return nil, apperror.NotReady("examination has no artifact yet")
	}

	claimed, err := uow.ExaminationRepository().ClaimRetry(ctx, exam.Id)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperror.NotReady("enrichment already in progress, try again later")
	}

	payload, err := json.Marshal(dto.EnrichExaminationMessage{ExamId: exam.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		// Undo the claim so a later retry is not locked out until the sweep.
		uow.ExaminationRepository().MarkError(ctx, exam.Id, "retry could not be queued")
		return nil, errors.New("failed to queue enrichment retry")
	}

	s.audit(ctx, userId, "enrichment_retried", map[string]interface{}{
		"exam_id": exam.Id.String(),
	})

	return &dto.RetryResponse{ExamId: exam.Id, Status: string(entity.ExamStatusProcessing)}, nil
}

func (s *examinationService) History(ctx context.Context, userId uuid.UUID, kind entity.ExamKind, page, limit int) (*dto.HistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ExaminationRepository()

	total, err := repo.Count(ctx, specification.OwnedByUser{UserID: userId}, specification.ByKind{Kind: kind})
	if err != nil {
		return nil, err
	}

	exams, err := repo.FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ByKind{Kind: kind},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ExaminationResponse, 0, len(exams))
	for _, exam := range exams {
		items = append(items, toExaminationResponse(exam))
	}

	return &dto.HistoryResponse{
		Items:      items,
		Pagination: dto.Pagination{Page: page, Limit: limit, Total: total},
	}, nil
}

func (s *examinationService) Show(ctx context.Context, userId uuid.UUID, examId uuid.UUID) (*dto.ExaminationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exam, err := uow.ExaminationRepository().FindOne(ctx, specification.ByID{ID: examId}, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, err
	}
	if exam == nil {
		// Cross-user access looks identical to a missing record.
		return nil, apperror.NotFound("examination not found")
	}

	res := toExaminationResponse(exam)
	return &res, nil
}

func (s *examinationService) audit(ctx context.Context, userId uuid.UUID, action string, details map[string]interface{}) {
	writeAudit(ctx, s.uowFactory, s.logger, userId, action, details)
}

func toAnalysisResult(exam *entity.Examination) dto.AnalysisResult {
	res := dto.AnalysisResult{Confidence: exam.Confidence}
	if exam.Transcript != nil {
		res.Transcript = *exam.Transcript
	}
	if exam.Summary != nil {
		res.Summary = *exam.Summary
	}
	if exam.Diagnosis != nil {
		res.Diagnosis = *exam.Diagnosis
	}
	if exam.Recommendations != nil {
		res.Recommendations = *exam.Recommendations
	}
	return res
}

func toExaminationResponse(exam *entity.Examination) dto.ExaminationResponse {
	res := dto.ExaminationResponse{
		Id:          exam.Id,
		Kind:        string(exam.Kind),
		ExamType:    exam.DeclaredType,
		Status:      string(exam.Status),
		FileName:    exam.ArtifactName,
		Confidence:  exam.Confidence,
		CreatedAt:   exam.CreatedAt,
		CompletedAt: exam.CompletedAt,
	}
	if exam.PatientContext != nil {
		res.PatientContext = *exam.PatientContext
	}
	if exam.Transcript != nil {
		res.Transcript = *exam.Transcript
	}
	if exam.Summary != nil {
		res.Summary = *exam.Summary
	}
	if exam.Diagnosis != nil {
		res.Diagnosis = *exam.Diagnosis
	}
	if exam.Recommendations != nil {
		res.Recommendations = *exam.Recommendations
	}
	if exam.FailureReason != nil {
		res.FailureReason = *exam.FailureReason
	}
	return res
}
