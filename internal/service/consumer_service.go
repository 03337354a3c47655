package service

import (
	"context"
	"encoding/json"

	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the enrichment queue. Retries publish here so the
// HTTP request returns immediately while the analysis runs in background.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	enrichment IEnrichmentService
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	enrichment IEnrichmentService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		enrichment: enrichment,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EnrichExaminationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		// Ack malformed messages, redelivery cannot fix them.
		msg.Ack()
		return
	}

	cs.logger.Info("Consumer", "Processing enrichment", map[string]interface{}{"exam_id": payload.ExamId})

	if _, err := cs.enrichment.Enrich(ctx, payload.ExamId); err != nil {
		// Upstream failures were already persisted as error state; the user
		// retries explicitly, so redelivering would double-charge the model.
		if apperror.KindOf(err) == apperror.KindInternal {
			cs.logger.Error("Consumer", "Enrichment failed, requeueing", map[string]interface{}{
				"exam_id": payload.ExamId, "error": err.Error(),
			})
			msg.Nack()
			return
		}
		cs.logger.Warn("Consumer", "Enrichment failed", map[string]interface{}{
			"exam_id": payload.ExamId, "error": err.Error(),
		})
	}

	msg.Ack()
}
