package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/events"
	pktNats "medassist-be/pkg/nats"
	"medassist-be/pkg/report"
	"medassist-be/pkg/storage"

	"github.com/google/uuid"
)

type IReportService interface {
	Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateReportRequest) (*dto.GenerateReportResponse, error)
	// Download re-checks ownership and returns the stored document path.
	Download(ctx context.Context, userId uuid.UUID, reportId uuid.UUID) (path string, fileName string, err error)
}

type reportService struct {
	uowFactory     unitofwork.RepositoryFactory
	store          *storage.LocalStore
	renderer       *report.Renderer
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	baseURL        string
}

func NewReportService(
	uowFactory unitofwork.RepositoryFactory,
	store *storage.LocalStore,
	renderer *report.Renderer,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	baseURL string,
) IReportService {
	return &reportService{
		uowFactory:     uowFactory,
		store:          store,
		renderer:       renderer,
		eventPublisher: eventPublisher,
		logger:         log,
		baseURL:        baseURL,
	}
}

func (s *reportService) Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateReportRequest) (*dto.GenerateReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	data, err := s.buildReportData(ctx, uow, userId, req)
	if err != nil {
		return nil, err
	}

	user, err := uow.UserRepository().FindByID(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user != nil {
		data.DoctorName = user.FullName
		if user.Specialization != nil {
			data.Specialization = *user.Specialization
		}
		if user.HospitalName != nil {
			data.HospitalName = *user.HospitalName
		}
	}

	document, err := s.renderer.Render(*data)
	if err != nil {
		return nil, err
	}

	reportId := uuid.New()
	path, err := s.store.SaveDocument(reportId.String()+".html", document)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorage, "failed to store report", err)
	}

	payload := "{}"
	if req.ReportData != nil {
		if b, err := json.Marshal(req.ReportData); err == nil {
			payload = string(b)
		}
	}

	rec := &entity.Report{
		Id:           reportId,
		UserId:       userId,
		ReportType:   entity.ReportType(req.ReportType),
		RelatedId:    req.RelatedId,
		ReportData:   payload,
		DocumentPath: path,
		CreatedAt:    time.Now(),
	}
	if err := uow.ReportRepository().Create(ctx, rec); err != nil {
		s.store.Remove(path)
		return nil, err
	}

	writeAudit(ctx, s.uowFactory, s.logger, userId, "report_generated", map[string]interface{}{
		"report_id": reportId.String(), "report_type": req.ReportType, "related_id": req.RelatedId.String(),
	})
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ctx, events.BaseEvent{
			Type: events.TypeReportGenerated,
			Data: map[string]interface{}{"report_id": reportId.String(), "user_id": userId.String()},
		})
	}

	return &dto.GenerateReportResponse{
		ReportId:    reportId,
		DownloadUrl: fmt.Sprintf("%s/api/report/download/%s", strings.TrimRight(s.baseURL, "/"), reportId),
	}, nil
}

func (s *reportService) Download(ctx context.Context, userId uuid.UUID, reportId uuid.UUID) (string, string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rec, err := uow.ReportRepository().FindOne(ctx, specification.ByID{ID: reportId}, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return "", "", err
	}
	if rec == nil {
		return "", "", apperror.NotFound("report not found")
	}

	fileName := fmt.Sprintf("%s-%s.html", rec.ReportType, rec.Id)
	return rec.DocumentPath, fileName, nil
}

// buildReportData resolves the source record, enforcing ownership and the
// completed precondition before any file is written or row inserted.
func (s *reportService) buildReportData(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, req *dto.GenerateReportRequest) (*report.Data, error) {
	switch entity.ReportType(req.ReportType) {
	case entity.ReportTypeImage, entity.ReportTypeVoice:
		exam, err := uow.ExaminationRepository().FindOne(ctx, specification.ByID{ID: req.RelatedId}, specification.OwnedByUser{UserID: userId})
		if err != nil {
			return nil, err
		}
		if exam == nil {
			return nil, apperror.NotFound("examination not found")
		}
		if exam.Status != entity.ExamStatusCompleted {
			return nil, apperror.NotReady("examination is not completed yet")
		}
		expectedKind := entity.ExamKindImage
		if entity.ReportType(req.ReportType) == entity.ReportTypeVoice {
			expectedKind = entity.ExamKindVoice
		}
		if exam.Kind != expectedKind {
			return nil, apperror.Validation("report type does not match the examination kind")
		}

		data := &report.Data{ReportType: req.ReportType}
		if exam.PatientContext != nil {
			data.PatientContext = *exam.PatientContext
		}
		if exam.Transcript != nil {
			data.Transcript = *exam.Transcript
		}
		if exam.Summary != nil {
			data.Summary = *exam.Summary
		}
		if exam.Diagnosis != nil {
			data.Diagnosis = *exam.Diagnosis
		}
		if exam.Recommendations != nil {
			data.Recommendations = *exam.Recommendations
		}
		data.Confidence = exam.Confidence
		return data, nil

	case entity.ReportTypeChat:
		conv, err := uow.ChatConversationRepository().FindOne(ctx, specification.ByID{ID: req.RelatedId}, specification.OwnedByUser{UserID: userId})
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, apperror.NotFound("conversation not found")
		}

		messages, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conv.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, err
		}

		var transcript strings.Builder
		for _, m := range messages {
			fmt.Fprintf(&transcript, "Q: %s\n\nA: %s\n\n", m.Message, m.Response)
		}

		return &report.Data{
			ReportType: req.ReportType,
			Title:      "Consultation Summary Report",
			Summary:    conv.Title,
			Transcript: transcript.String(),
		}, nil

	default:
		return nil, apperror.Validation("unknown report type")
	}
}
