package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{"transcript": "", "summary": "Mild opacity in the left lower lobe", "diagnosis": "Possible early pneumonia", "recommendations": "Follow-up CT within two weeks", "confidence": 0.82}`

func newEnrichmentForTest(t *testing.T, factory unitofwork.RepositoryFactory, store *storage.LocalStore, provider *fakeProvider, timeout time.Duration) IEnrichmentService {
	t.Helper()
	return NewEnrichmentService(factory, provider, store, nil, nil, newTestLogger(t), timeout)
}

func createProcessingExam(t *testing.T, factory unitofwork.RepositoryFactory, store *storage.LocalStore, userId uuid.UUID) *entity.Examination {
	t.Helper()

	saved, err := store.Save(storage.ClassImage, "scan.png", []byte("not-really-a-png"))
	require.NoError(t, err)

	exam := &entity.Examination{
		Id:           uuid.New(),
		UserId:       userId,
		Kind:         entity.ExamKindImage,
		DeclaredType: "x-ray",
		ArtifactPath: saved.Path,
		ArtifactName: saved.Name,
		FileSize:     saved.Size,
		Status:       entity.ExamStatusProcessing,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.ExaminationRepository().Create(context.Background(), exam))
	return exam
}

func TestEnrichCompletesExamination(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{reply: validReply}
	svc := newEnrichmentForTest(t, factory, store, provider, time.Second)

	exam := createProcessingExam(t, factory, store, uuid.New())

	enriched, err := svc.Enrich(context.Background(), exam.Id)
	require.NoError(t, err)

	assert.Equal(t, entity.ExamStatusCompleted, enriched.Status)
	require.NotNil(t, enriched.Summary)
	assert.Equal(t, "Mild opacity in the left lower lobe", *enriched.Summary)
	require.NotNil(t, enriched.Diagnosis)
	assert.Equal(t, "Possible early pneumonia", *enriched.Diagnosis)
	require.NotNil(t, enriched.Confidence)
	assert.InDelta(t, 0.82, *enriched.Confidence, 0.0001)
	assert.NotNil(t, enriched.CompletedAt)
	assert.Nil(t, enriched.FailureReason)
	assert.Equal(t, 1, provider.callCount())
}

func TestEnrichIdempotentOnCompleted(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{reply: validReply}
	svc := newEnrichmentForTest(t, factory, store, provider, time.Second)

	exam := createProcessingExam(t, factory, store, uuid.New())

	first, err := svc.Enrich(context.Background(), exam.Id)
	require.NoError(t, err)

	second, err := svc.Enrich(context.Background(), exam.Id)
	require.NoError(t, err)

	assert.Equal(t, *first.Summary, *second.Summary)
	assert.Equal(t, *first.Diagnosis, *second.Diagnosis)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
	assert.Equal(t, 1, provider.callCount(), "completed record must not trigger another collaborator call")
}

func TestEnrichConcurrentCallsShareOneExecution(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{reply: validReply, delay: 100 * time.Millisecond}
	svc := newEnrichmentForTest(t, factory, store, provider, time.Second)

	exam := createProcessingExam(t, factory, store, uuid.New())

	var wg sync.WaitGroup
	results := make([]*entity.Examination, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Enrich(context.Background(), exam.Id)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, *results[0].Summary, *results[1].Summary)
	assert.Equal(t, entity.ExamStatusCompleted, results[0].Status)
}

func TestEnrichTimeoutPersistsError(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{reply: validReply, delay: 500 * time.Millisecond}
	svc := newEnrichmentForTest(t, factory, store, provider, 20*time.Millisecond)

	exam := createProcessingExam(t, factory, store, uuid.New())

	_, err := svc.Enrich(context.Background(), exam.Id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))

	uow := factory.NewUnitOfWork(context.Background())
	stored, err := uow.ExaminationRepository().FindOne(context.Background(), specification.ByID{ID: exam.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusError, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Equal(t, "AI analysis timed out", *stored.FailureReason)
	assert.Nil(t, stored.Summary, "no partial result fields on failure")
	assert.Nil(t, stored.Diagnosis)
}

func TestEnrichMalformedReplyPersistsError(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{reply: "I cannot help with that."}
	svc := newEnrichmentForTest(t, factory, store, provider, time.Second)

	exam := createProcessingExam(t, factory, store, uuid.New())

	_, err := svc.Enrich(context.Background(), exam.Id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))

	uow := factory.NewUnitOfWork(context.Background())
	stored, _ := uow.ExaminationRepository().FindOne(context.Background(), specification.ByID{ID: exam.Id})
	assert.Equal(t, entity.ExamStatusError, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Equal(t, "AI returned an unreadable analysis", *stored.FailureReason)
}

func TestEnrichPendingExamNotReady(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{reply: validReply}
	svc := newEnrichmentForTest(t, factory, store, provider, time.Second)

	exam := &entity.Examination{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Kind:      entity.ExamKindVoice,
		Status:    entity.ExamStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.ExaminationRepository().Create(context.Background(), exam))

	_, err := svc.Enrich(context.Background(), exam.Id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotReady, apperror.KindOf(err))
	assert.Equal(t, 0, provider.callCount())
}

func TestEnrichUnknownExamNotFound(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	svc := newEnrichmentForTest(t, factory, store, &fakeProvider{reply: validReply}, time.Second)

	_, err := svc.Enrich(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestEnrichClampsConfidence(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{reply: `{"transcript": "", "summary": "s", "diagnosis": "d", "recommendations": "r", "confidence": 1.4}`}
	svc := newEnrichmentForTest(t, factory, store, provider, time.Second)

	exam := createProcessingExam(t, factory, store, uuid.New())

	enriched, err := svc.Enrich(context.Background(), exam.Id)
	require.NoError(t, err)
	require.NotNil(t, enriched.Confidence)
	assert.Equal(t, 1.0, *enriched.Confidence)
	require.NotNil(t, enriched.RawAnalysis)
	assert.Contains(t, *enriched.RawAnalysis, "confidence_clamped")
}

func TestEnrichProviderFailure(t *testing.T) {
	factory := newTestFactory(t)
	store := newTestStore(t)
	provider := &fakeProvider{err: errors.New("upstream unavailable")}
	svc := newEnrichmentForTest(t, factory, store, provider, time.Second)

	exam := createProcessingExam(t, factory, store, uuid.New())

	_, err := svc.Enrich(context.Background(), exam.Id)
	require.Error(t, err)

	uow := factory.NewUnitOfWork(context.Background())
	stored, _ := uow.ExaminationRepository().FindOne(context.Background(), specification.ByID{ID: exam.Id})
	assert.Equal(t, entity.ExamStatusError, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Equal(t, "AI analysis failed", *stored.FailureReason)
}
