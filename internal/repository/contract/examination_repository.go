package contract

import (
	"context"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ExaminationRepository persists the canonical examination records.
// Status transitions are expressed as conditional updates so concurrent
// writers cannot move a record backward: each Mark/Claim method reports
// whether this caller won the transition.
type ExaminationRepository interface {
	Create(ctx context.Context, exam *entity.Examination) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Examination, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Examination, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// AttachArtifact moves a pending record to processing with the stored
	// artifact metadata. Returns false if the record was not pending.
	AttachArtifact(ctx context.Context, id uuid.UUID, artifactPath, artifactName string, fileSize int64) (bool, error)

	// MarkCompleted writes all result fields and flips processing -> completed
	// in one update. Returns false if the record was not processing.
	MarkCompleted(ctx context.Context, id uuid.UUID, result *entity.EnrichedResult, durationSeconds *int) (bool, error)

	// MarkError flips processing -> error with a human-readable reason,
	// touching no result fields. Returns false if not processing.
	MarkError(ctx context.Context, id uuid.UUID, reason string) (bool, error)

	// ClaimRetry flips error -> processing. Exactly one concurrent caller
	// wins; the rest observe false.
	ClaimRetry(ctx context.Context, id uuid.UUID) (bool, error)

	// SweepStuck flips every processing record untouched since the cutoff to
	// error with the given reason, returning the affected ids.
	SweepStuck(ctx context.Context, cutoff time.Time, reason string) ([]uuid.UUID, error)
}
