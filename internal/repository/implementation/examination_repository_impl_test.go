package implementation

import (
	"context"
	"testing"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/model"
	"medassist-be/internal/repository/contract"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Examination{}))
	return db
}

func createExam(t *testing.T, repo contract.ExaminationRepository, status entity.ExamStatus) *entity.Examination {
	t.Helper()
	exam := &entity.Examination{
		Id:           uuid.New(),
		UserId:       uuid.New(),
		Kind:         entity.ExamKindImage,
		DeclaredType: "x-ray",
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), exam))
	return exam
}

func TestCountFiltersByTypedKindAndStatus(t *testing.T) {
	repo := NewExaminationRepository(newRepoTestDB(t))

	createExam(t, repo, entity.ExamStatusCompleted)
	createExam(t, repo, entity.ExamStatusPending)

	voice := &entity.Examination{
		Id:           uuid.New(),
		UserId:       uuid.New(),
		Kind:         entity.ExamKindVoice,
		DeclaredType: "general",
		Status:       entity.ExamStatusCompleted,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), voice))

	n, err := repo.Count(context.Background(),
		specification.ByKind{Kind: entity.ExamKindImage},
		specification.ByStatus{Status: entity.ExamStatusCompleted},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Count(context.Background(), specification.ByKind{Kind: entity.ExamKindVoice})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAttachArtifactOnlyFromPending(t *testing.T) {
	repo := NewExaminationRepository(newRepoTestDB(t))
	exam := createExam(t, repo, entity.ExamStatusPending)

	ok, err := repo.AttachArtifact(context.Background(), exam.Id, "/uploads/a.webm", "a.webm", 2048)
	require.NoError(t, err)
	assert.True(t, ok)

	// The record is now processing, so a second attach loses.
	ok, err = repo.AttachArtifact(context.Background(), exam.Id, "/uploads/b.webm", "b.webm", 4096)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindOne(context.Background(), specification.ByID{ID: exam.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusProcessing, reloaded.Status)
	assert.Equal(t, "a.webm", reloaded.ArtifactName)
	assert.Equal(t, int64(2048), reloaded.FileSize)
}

func TestMarkCompletedOnlyFromProcessing(t *testing.T) {
	repo := NewExaminationRepository(newRepoTestDB(t))
	exam := createExam(t, repo, entity.ExamStatusProcessing)

	duration := 3
	result := &entity.EnrichedResult{
		Summary:     "normal study",
		Diagnosis:   "no acute findings",
		Confidence:  0.91,
		RawAnalysis: `{"reply":"ok"}`,
	}

	ok, err := repo.MarkCompleted(context.Background(), exam.Id, result, &duration)
	require.NoError(t, err)
	assert.True(t, ok)

	// Already completed, a late worker must not overwrite the result.
	ok, err = repo.MarkCompleted(context.Background(), exam.Id, &entity.EnrichedResult{Summary: "late"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindOne(context.Background(), specification.ByID{ID: exam.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.Summary)
	assert.Equal(t, "normal study", *reloaded.Summary)
	require.NotNil(t, reloaded.CompletedAt)
	require.NotNil(t, reloaded.DurationSeconds)
	assert.Equal(t, 3, *reloaded.DurationSeconds)
	assert.Nil(t, reloaded.FailureReason)
}

func TestMarkErrorOnlyFromProcessing(t *testing.T) {
	repo := NewExaminationRepository(newRepoTestDB(t))
	exam := createExam(t, repo, entity.ExamStatusPending)

	ok, err := repo.MarkError(context.Background(), exam.Id, "AI analysis failed")
	require.NoError(t, err)
	assert.False(t, ok, "pending records are not errorable")

	processing := createExam(t, repo, entity.ExamStatusProcessing)
	ok, err = repo.MarkError(context.Background(), processing.Id, "AI analysis failed")
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindOne(context.Background(), specification.ByID{ID: processing.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusError, reloaded.Status)
	require.NotNil(t, reloaded.FailureReason)
	assert.Equal(t, "AI analysis failed", *reloaded.FailureReason)
}

func TestClaimRetrySingleWinner(t *testing.T) {
	repo := NewExaminationRepository(newRepoTestDB(t))
	exam := createExam(t, repo, entity.ExamStatusError)

	first, err := repo.ClaimRetry(context.Background(), exam.Id)
	require.NoError(t, err)
	second, err := repo.ClaimRetry(context.Background(), exam.Id)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second, "the claim already moved the record to processing")

	reloaded, err := repo.FindOne(context.Background(), specification.ByID{ID: exam.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusProcessing, reloaded.Status)
	assert.Nil(t, reloaded.FailureReason, "claiming clears the previous failure")
}

func TestClaimRetryRefusesCompleted(t *testing.T) {
	repo := NewExaminationRepository(newRepoTestDB(t))
	exam := createExam(t, repo, entity.ExamStatusCompleted)

	ok, err := repo.ClaimRetry(context.Background(), exam.Id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSweepStuckSkipsRecentAndTerminal(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewExaminationRepository(db)

	stale := createExam(t, repo, entity.ExamStatusProcessing)
	fresh := createExam(t, repo, entity.ExamStatusProcessing)
	done := createExam(t, repo, entity.ExamStatusCompleted)

	backdate := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Exec("UPDATE examinations SET updated_at = ? WHERE id IN (?, ?)", backdate, stale.Id, done.Id).Error)

	swept, err := repo.SweepStuck(context.Background(), time.Now().Add(-time.Hour), "enrichment timed out")
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, stale.Id, swept[0])

	reloaded, err := repo.FindOne(context.Background(), specification.ByID{ID: fresh.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusProcessing, reloaded.Status)

	reloaded, err = repo.FindOne(context.Background(), specification.ByID{ID: done.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.ExamStatusCompleted, reloaded.Status)
}
