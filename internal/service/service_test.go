package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"medassist-be/internal/model"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/genai"
	"medassist-be/pkg/storage"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// One connection keeps the shared in-memory database alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Examination{},
		&model.ChatConversation{},
		&model.ChatMessage{},
		&model.Report{},
		&model.AnalyticsEvent{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	return unitofwork.NewRepositoryFactory(newTestDB(t))
}

func newTestLogger(t *testing.T) logger.ILogger {
	t.Helper()
	return logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))
}

func newTestStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	return storage.NewLocalStore(t.TempDir(), 50*1024*1024)
}

// fakeProvider counts collaborator calls and serves a scripted reply.
type fakeProvider struct {
	mu    sync.Mutex
	calls int

	reply string
	err   error
	delay time.Duration
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, media *genai.Blob, options ...genai.Option) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *fakeProvider) Chat(ctx context.Context, history []genai.Message, options ...genai.Option) (string, error) {
	return p.Generate(ctx, "", nil)
}

func (p *fakeProvider) ModelName() string {
	return "fake-model"
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakePublisher records queue payloads instead of publishing them.
type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payloads
}
