package service

import (
	"context"
	"encoding/json"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDashboardService interface {
	Stats(ctx context.Context, userId uuid.UUID) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDashboardService(uowFactory unitofwork.RepositoryFactory) IDashboardService {
	return &dashboardService{uowFactory: uowFactory}
}

// Stats computes the dashboard counters on demand; nothing is cached or
// incremented, so the numbers always match the tables.
func (s *dashboardService) Stats(ctx context.Context, userId uuid.UUID) (*dto.DashboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	exams := uow.ExaminationRepository()

	owned := specification.OwnedByUser{UserID: userId}
	completed := specification.ByStatus{Status: entity.ExamStatusCompleted}

	imagesAnalyzed, err := exams.Count(ctx, owned, completed, specification.ByKind{Kind: entity.ExamKindImage})
	if err != nil {
		return nil, err
	}

	voiceExams, err := exams.Count(ctx, owned, completed, specification.ByKind{Kind: entity.ExamKindVoice})
	if err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().Count(ctx, owned)
	if err != nil {
		return nil, err
	}

	recent, err := uow.AnalyticsRepository().FindAll(ctx,
		owned,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 10, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	activity := make([]dto.ActivityItem, 0, len(recent))
	for _, ev := range recent {
		item := dto.ActivityItem{
			Id:        ev.Id,
			EventType: ev.ActionType,
			CreatedAt: ev.CreatedAt,
		}
		if ev.Details != "" {
			var details map[string]interface{}
			if err := json.Unmarshal([]byte(ev.Details), &details); err == nil {
				item.Details = details
			}
		}
		activity = append(activity, item)
	}

	return &dto.DashboardResponse{
		Stats: dto.DashboardStats{
			ImagesAnalyzed: imagesAnalyzed,
			VoiceExams:     voiceExams,
			ChatMessages:   chatMessages,
			TotalDiagnoses: imagesAnalyzed + voiceExams,
		},
		RecentActivity: activity,
	}, nil
}
