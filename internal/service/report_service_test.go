package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/report"
	"medassist-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportEnv(t *testing.T) (IReportService, unitofwork.RepositoryFactory, *storage.LocalStore) {
	t.Helper()

	factory := newTestFactory(t)
	store := newTestStore(t)
	renderer, err := report.NewRenderer()
	require.NoError(t, err)

	svc := NewReportService(factory, store, renderer, nil, newTestLogger(t), "http://localhost:3000")
	return svc, factory, store
}

func seedExam(t *testing.T, factory unitofwork.RepositoryFactory, userId uuid.UUID, status entity.ExamStatus) *entity.Examination {
	t.Helper()

	summary := "Clear lung fields"
	diagnosis := "No acute findings"
	exam := &entity.Examination{
		Id:           uuid.New(),
		UserId:       userId,
		Kind:         entity.ExamKindImage,
		DeclaredType: "x-ray",
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if status == entity.ExamStatusCompleted {
		exam.Summary = &summary
		exam.Diagnosis = &diagnosis
		now := time.Now()
		exam.CompletedAt = &now
	}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.ExaminationRepository().Create(context.Background(), exam))
	return exam
}

func TestGenerateReportForCompletedExam(t *testing.T) {
	svc, factory, _ := newReportEnv(t)
	userId := uuid.New()
	exam := seedExam(t, factory, userId, entity.ExamStatusCompleted)

	res, err := svc.Generate(context.Background(), userId, &dto.GenerateReportRequest{
		ReportType: "image_analysis",
		RelatedId:  exam.Id,
		ReportData: map[string]interface{}{"notes": "routine check"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.DownloadUrl, res.ReportId.String()))

	path, fileName, err := svc.Download(context.Background(), userId, res.ReportId)
	require.NoError(t, err)
	assert.Contains(t, fileName, "image_analysis")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Clear lung fields")
	assert.Contains(t, string(content), "No acute findings")
	assert.Contains(t, string(content), "not a final diagnosis")
}

func TestGenerateReportNotCompletedNoRow(t *testing.T) {
	svc, factory, _ := newReportEnv(t)
	userId := uuid.New()
	exam := seedExam(t, factory, userId, entity.ExamStatusProcessing)

	_, err := svc.Generate(context.Background(), userId, &dto.GenerateReportRequest{
		ReportType: "image_analysis",
		RelatedId:  exam.Id,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotReady, apperror.KindOf(err))

	uow := factory.NewUnitOfWork(context.Background())
	count, err := uow.ReportRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "no report row for an incomplete source")
}

func TestGenerateReportCrossUserSource(t *testing.T) {
	svc, factory, _ := newReportEnv(t)
	exam := seedExam(t, factory, uuid.New(), entity.ExamStatusCompleted)

	_, err := svc.Generate(context.Background(), uuid.New(), &dto.GenerateReportRequest{
		ReportType: "image_analysis",
		RelatedId:  exam.Id,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGenerateReportKindMismatch(t *testing.T) {
	svc, factory, _ := newReportEnv(t)
	userId := uuid.New()
	exam := seedExam(t, factory, userId, entity.ExamStatusCompleted)

	_, err := svc.Generate(context.Background(), userId, &dto.GenerateReportRequest{
		ReportType: "voice_examination",
		RelatedId:  exam.Id,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestDownloadCrossUserReport(t *testing.T) {
	svc, factory, _ := newReportEnv(t)
	userId := uuid.New()
	exam := seedExam(t, factory, userId, entity.ExamStatusCompleted)

	res, err := svc.Generate(context.Background(), userId, &dto.GenerateReportRequest{
		ReportType: "image_analysis",
		RelatedId:  exam.Id,
	})
	require.NoError(t, err)

	_, _, err = svc.Download(context.Background(), uuid.New(), res.ReportId)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestChatConsultationReport(t *testing.T) {
	svc, factory, _ := newReportEnv(t)
	userId := uuid.New()

	chatSvc := NewChatService(factory, &fakeProvider{reply: "Rest and hydration."}, newTestLogger(t), time.Second)
	conv, err := chatSvc.CreateConversation(context.Background(), userId, &dto.CreateConversationRequest{Title: "Flu questions"})
	require.NoError(t, err)
	_, err = chatSvc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.ConversationId,
		Message:        "How to treat mild flu?",
	})
	require.NoError(t, err)

	res, err := svc.Generate(context.Background(), userId, &dto.GenerateReportRequest{
		ReportType: "chat_consultation",
		RelatedId:  conv.ConversationId,
	})
	require.NoError(t, err)

	path, _, err := svc.Download(context.Background(), userId, res.ReportId)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "How to treat mild flu?")
	assert.Contains(t, string(content), "Rest and hydration.")
}
