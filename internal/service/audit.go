package service

import (
	"context"
	"encoding/json"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// writeAudit appends an analytics event. Audit failures are logged, never
// propagated, so they cannot fail the operation they describe.
func writeAudit(ctx context.Context, factory unitofwork.RepositoryFactory, log logger.ILogger, userId uuid.UUID, action string, details map[string]interface{}) {
	detailsJson, err := json.Marshal(details)
	if err != nil {
		detailsJson = []byte("{}")
	}

	uow := factory.NewUnitOfWork(ctx)
	event := &entity.AnalyticsEvent{
		Id:         uuid.New(),
		UserId:     userId,
		ActionType: action,
		Details:    string(detailsJson),
		CreatedAt:  time.Now(),
	}
	if err := uow.AnalyticsRepository().Create(ctx, event); err != nil {
		log.Warn("Audit", "Failed to write analytics event", map[string]interface{}{
			"action": action, "error": err.Error(),
		})
	}
}
