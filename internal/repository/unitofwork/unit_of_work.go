package unitofwork

import (
	"context"

	"medassist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ExaminationRepository() contract.ExaminationRepository
	ChatConversationRepository() contract.ChatConversationRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ReportRepository() contract.ReportRepository
	AnalyticsRepository() contract.AnalyticsRepository
}
