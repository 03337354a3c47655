package service

import (
	"context"
	"testing"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStatsOnDemandCounts(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	log := newTestLogger(t)
	provider := &fakeProvider{reply: validReply}

	enrich := NewEnrichmentService(factory, provider, store, nil, nil, log, time.Second)
	examSvc := NewExaminationService(factory, store, enrich, &fakePublisher{}, nil, log)
	chatSvc := NewChatService(factory, provider, log, time.Second)
	svc := NewDashboardService(factory)

	userId := uuid.New()

	// Two completed image analyses.
	for i := 0; i < 2; i++ {
		_, err := examSvc.AnalyzeImage(context.Background(), userId, &dto.ImageAnalyzeRequest{ImageType: "x-ray"}, "scan.png", []byte("fake image bytes"))
		require.NoError(t, err)
	}

	// One voice exam left pending, which must not count.
	_, err := examSvc.StartVoice(context.Background(), userId, &dto.VoiceStartRequest{ExamType: "general"})
	require.NoError(t, err)

	// Two chat messages.
	conv, err := chatSvc.CreateConversation(context.Background(), userId, &dto.CreateConversationRequest{})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := chatSvc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
			ConversationId: conv.ConversationId,
			Message:        "question",
		})
		require.NoError(t, err)
	}

	// Another user's data must not leak into the counts.
	_, err = examSvc.AnalyzeImage(context.Background(), uuid.New(), &dto.ImageAnalyzeRequest{ImageType: "mri"}, "scan.png", []byte("fake image bytes"))
	require.NoError(t, err)

	res, err := svc.Stats(context.Background(), userId)
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Stats.ImagesAnalyzed)
	assert.Equal(t, int64(0), res.Stats.VoiceExams)
	assert.Equal(t, int64(2), res.Stats.ChatMessages)
	assert.Equal(t, int64(2), res.Stats.TotalDiagnoses)

	assert.NotEmpty(t, res.RecentActivity)
	assert.LessOrEqual(t, len(res.RecentActivity), 10)
	for _, item := range res.RecentActivity {
		assert.NotEmpty(t, item.EventType)
	}
}

func TestDashboardStatsEmptyUser(t *testing.T) {
	svc := NewDashboardService(newTestFactory(t))

	res, err := svc.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, dto.DashboardStats{}, res.Stats)
	assert.Empty(t, res.RecentActivity)
}

func TestReconcilerSweepsStuckProcessing(t *testing.T) {
	db := newTestDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	svc := NewReconcilerService(factory, nil, newTestLogger(t), 10*time.Minute, time.Minute)

	userId := uuid.New()
	uow := factory.NewUnitOfWork(context.Background())

	stale := &entity.Examination{
		Id:        uuid.New(),
		UserId:    userId,
		Kind:      entity.ExamKindImage,
		Status:    entity.ExamStatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	fresh := &entity.Examination{
		Id:        uuid.New(),
		UserId:    userId,
		Kind:      entity.ExamKindImage,
		Status:    entity.ExamStatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, uow.ExaminationRepository().Create(context.Background(), stale))
	require.NoError(t, uow.ExaminationRepository().Create(context.Background(), fresh))

	// Backdate past the stuck threshold, bypassing GORM's autoUpdateTime.
	backdate := time.Now().Add(-time.Hour)
	require.NoError(t, db.Exec("UPDATE examinations SET updated_at = ? WHERE id = ?", backdate, stale.Id).Error)

	n, err := svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the stale record is swept")

	sweptExam, err := uow.ExaminationRepository().FindOne(context.Background(), specification.ByID{ID: stale.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusError, sweptExam.Status)
	require.NotNil(t, sweptExam.FailureReason)
	assert.Equal(t, "enrichment timed out", *sweptExam.FailureReason)

	untouched, err := uow.ExaminationRepository().FindOne(context.Background(), specification.ByID{ID: fresh.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusProcessing, untouched.Status)
}
