package service

import (
	"context"
	"time"

	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/internal/websocket"
)

const stuckReason = "enrichment timed out"

type IReconcilerService interface {
	// Run sweeps on the configured interval until the context is cancelled.
	Run(ctx context.Context)
	// SweepOnce marks every record stuck in processing as errored.
	SweepOnce(ctx context.Context) (int, error)
}

// reconcilerService is the safety net for records whose worker died mid
// enrichment: without it a crashed process would leave them in processing
// forever, blocking retries.
type reconcilerService struct {
	uowFactory unitofwork.RepositoryFactory
	hub        *websocket.Hub
	logger     logger.ILogger
	threshold  time.Duration
	interval   time.Duration
}

func NewReconcilerService(
	uowFactory unitofwork.RepositoryFactory,
	hub *websocket.Hub,
	log logger.ILogger,
	threshold, interval time.Duration,
) IReconcilerService {
	return &reconcilerService{
		uowFactory: uowFactory,
		hub:        hub,
		logger:     log,
		threshold:  threshold,
		interval:   interval,
	}
}

func (s *reconcilerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("Reconciler", "Sweep failed", map[string]interface{}{"error": err.Error()})
			} else if n > 0 {
				s.logger.Warn("Reconciler", "Swept stuck examinations", map[string]interface{}{"count": n})
			}
		}
	}
}

func (s *reconcilerService) SweepOnce(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cutoff := time.Now().Add(-s.threshold)

	ids, err := uow.ExaminationRepository().SweepStuck(ctx, cutoff, stuckReason)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		exam, err := uow.ExaminationRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil || exam == nil {
			continue
		}
		writeAudit(ctx, s.uowFactory, s.logger, exam.UserId, "enrichment_swept", map[string]interface{}{
			"exam_id": id.String(), "reason": stuckReason,
		})
		s.hub.PushStatus(exam.UserId, websocket.StatusUpdate{
			ExamID:        exam.Id,
			Kind:          string(exam.Kind),
			Status:        string(exam.Status),
			FailureReason: stuckReason,
		})
	}

	return len(ids), nil
}
