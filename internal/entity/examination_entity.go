package entity

import (
	"time"

	"github.com/google/uuid"
)

type ExamKind string
type ExamStatus string

const (
	ExamKindImage ExamKind = "image"
	ExamKindVoice ExamKind = "voice"

	// Status only moves forward: pending -> processing -> completed|error.
	// An error record may be reclaimed to processing by a retry.
	ExamStatusPending    ExamStatus = "pending"
	ExamStatusProcessing ExamStatus = "processing"
	ExamStatusCompleted  ExamStatus = "completed"
	ExamStatusError      ExamStatus = "error"
)

// Examination is the canonical record for both image analyses and voice
// examinations. Records are never deleted (audit retention).
type Examination struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Kind           ExamKind
	DeclaredType   string // image category (x-ray, mri, ...) or exam type
	ArtifactPath   string
	ArtifactName   string
	FileSize       int64
	PatientContext *string // JSON blob, optional

	Status        ExamStatus
	FailureReason *string

	// Enrichment result fields, written all-or-nothing by the worker.
	Transcript      *string
	Summary         *string
	Diagnosis       *string
	Recommendations *string
	Confidence      *float64
	RawAnalysis     *string // full collaborator reply, JSON
	DurationSeconds *int

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// EnrichedResult carries the structured fields produced by one enrichment.
type EnrichedResult struct {
	Transcript      string
	Summary         string
	Diagnosis       string
	Recommendations string
	Confidence      float64
	RawAnalysis     string
}
