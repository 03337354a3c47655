package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/apperror"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/internal/websocket"
	"medassist-be/pkg/events"
	"medassist-be/pkg/genai"
	pktNats "medassist-be/pkg/nats"
	"medassist-be/pkg/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const maxPatientContextChars = 2000

type IEnrichmentService interface {
	// Enrich runs the AI analysis for one examination and persists the
	// outcome. Concurrent calls for the same record share one execution.
	Enrich(ctx context.Context, examId uuid.UUID) (*entity.Examination, error)
}

type enrichmentService struct {
	uowFactory     unitofwork.RepositoryFactory
	provider       genai.Provider
	store          *storage.LocalStore
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	timeout        time.Duration

	group singleflight.Group
}

func NewEnrichmentService(
	uowFactory unitofwork.RepositoryFactory,
	provider genai.Provider,
	store *storage.LocalStore,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	timeout time.Duration,
) IEnrichmentService {
	return &enrichmentService{
		uowFactory:     uowFactory,
		provider:       provider,
		store:          store,
		hub:            hub,
		eventPublisher: eventPublisher,
		logger:         log,
		timeout:        timeout,
	}
}

func (s *enrichmentService) Enrich(ctx context.Context, examId uuid.UUID) (*entity.Examination, error) {
	res, err, _ := s.group.Do(examId.String(), func() (interface{}, error) {
		return s.enrich(ctx, examId)
	})
	if err != nil {
		return nil, err
	}
	return res.(*entity.Examination), nil
}

func (s *enrichmentService) enrich(ctx context.Context, examId uuid.UUID) (*entity.Examination, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exam, err := uow.ExaminationRepository().FindOne(ctx, specification.ByID{ID: examId})
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, apperror.NotFound("examination not found")
	}

	switch exam.Status {
	case entity.ExamStatusCompleted:
		// Already enriched, return the stored result untouched.
		return exam, nil
	case entity.ExamStatusPending:
		return nil, apperror.NotReady("examination has no artifact yet")
	case entity.ExamStatusError:
		return nil, apperror.NotReady("examination failed, retry it first")
	}

	media, err := s.loadArtifact(exam)
	if err != nil {
		s.fail(ctx, exam, "stored artifact could not be read")
		return nil, apperror.Wrap(apperror.KindStorage, "failed to read artifact", err)
	}

	prompt := buildEnrichmentPrompt(exam)

	// The collaborator call is bounded and runs outside any DB transaction.
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	raw, err := s.provider.Generate(callCtx, prompt, media)
	if err != nil {
		reason := "AI analysis failed"
		if callCtx.Err() == context.DeadlineExceeded {
			reason = "AI analysis timed out"
		}
		s.logger.Error("Enrichment", "Collaborator call failed", map[string]interface{}{
			"exam_id": exam.Id, "error": err.Error(),
		})
		s.fail(ctx, exam, reason)
		return nil, apperror.Wrap(apperror.KindUpstream, reason, err)
	}

	reply, err := genai.ParseEnrichedReply(raw)
	if err != nil {
		s.logger.Error("Enrichment", "Collaborator reply unparseable", map[string]interface{}{
			"exam_id": exam.Id, "error": err.Error(),
		})
		s.fail(ctx, exam, "AI returned an unreadable analysis")
		return nil, apperror.Wrap(apperror.KindUpstream, "malformed collaborator reply", err)
	}

	duration := int(time.Since(started).Seconds())
	rawAnalysis, _ := json.Marshal(struct {
		Reply             string `json:"reply"`
		Model             string `json:"model"`
		ConfidenceClamped bool   `json:"confidence_clamped,omitempty"`
	}{Reply: raw, Model: s.provider.ModelName(), ConfidenceClamped: reply.ConfidenceClamped})

	result := &entity.EnrichedResult{
		Transcript:      reply.Transcript,
		Summary:         reply.Summary,
		Diagnosis:       reply.Diagnosis,
		Recommendations: reply.Recommendations,
		Confidence:      reply.Confidence,
		RawAnalysis:     string(rawAnalysis),
	}

	won, err := uow.ExaminationRepository().MarkCompleted(ctx, exam.Id, result, &duration)
	if err != nil {
		return nil, err
	}
	if won {
		s.audit(ctx, exam.UserId, "examination_enriched", map[string]interface{}{
			"exam_id": exam.Id.String(), "kind": string(exam.Kind), "duration_seconds": duration,
		})
		s.notify(ctx, exam, entity.ExamStatusCompleted, "")
	}

	return uow.ExaminationRepository().FindOne(ctx, specification.ByID{ID: exam.Id})
}

// fail persists the error outcome; result fields stay untouched.
func (s *enrichmentService) fail(ctx context.Context, exam *entity.Examination, reason string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	won, err := uow.ExaminationRepository().MarkError(ctx, exam.Id, reason)
	if err != nil {
		s.logger.Error("Enrichment", "Failed to persist error state", map[string]interface{}{
			"exam_id": exam.Id, "error": err.Error(),
		})
		return
	}
	if won {
		s.audit(ctx, exam.UserId, "enrichment_failed", map[string]interface{}{
			"exam_id": exam.Id.String(), "reason": reason,
		})
		s.notify(ctx, exam, entity.ExamStatusError, reason)
	}
}

func (s *enrichmentService) notify(ctx context.Context, exam *entity.Examination, status entity.ExamStatus, reason string) {
	s.hub.PushStatus(exam.UserId, websocket.StatusUpdate{
		ExamID:        exam.Id,
		Kind:          string(exam.Kind),
		Status:        string(status),
		FailureReason: reason,
	})

	if s.eventPublisher != nil {
		eventType := events.TypeExaminationCompleted
		if status == entity.ExamStatusError {
			eventType = events.TypeExaminationFailed
		}
		s.eventPublisher.Publish(ctx, events.NewExaminationEvent(eventType, exam.Id, exam.UserId, string(status)))
	}
}

func (s *enrichmentService) audit(ctx context.Context, userId uuid.UUID, action string, details map[string]interface{}) {
	writeAudit(ctx, s.uowFactory, s.logger, userId, action, details)
}

func (s *enrichmentService) loadArtifact(exam *entity.Examination) (*genai.Blob, error) {
	data, err := s.store.Read(exam.ArtifactPath)
	if err != nil {
		return nil, err
	}
	return &genai.Blob{
		MIMEType: storage.MIMETypeOf(exam.ArtifactPath),
		Data:     data,
	}, nil
}

func buildEnrichmentPrompt(exam *entity.Examination) string {
	subject := "the attached medical image"
	extra := ""
	if exam.Kind == entity.ExamKindVoice {
		subject = "the attached voice examination recording"
		extra = "Transcribe the recording first, then analyse the transcript. "
	}

	patientContext := ""
	if exam.PatientContext != nil {
		patientContext = truncate(*exam.PatientContext, maxPatientContextChars)
	}

	prompt := fmt.Sprintf(`You are a clinical decision-support assistant for licensed medical professionals. Analyse %s (declared type: %s). %sYour output supports a physician's judgement and is never a final diagnosis.

Patient context: %s

Respond with strict JSON only, no markdown, exactly these keys:
{"transcript": string, "summary": string, "diagnosis": string, "recommendations": string, "confidence": number between 0 and 1}`,
		subject, exam.DeclaredType, extra, patientContext)

	return prompt
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
