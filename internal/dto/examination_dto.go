package dto

import (
	"time"

	"github.com/google/uuid"
)

type ImageAnalyzeRequest struct {
	ImageType      string `json:"image_type" form:"image_type"`
	PatientContext string `json:"patient_context" form:"patient_context"`
}

type VoiceStartRequest struct {
	ExamType       string `json:"exam_type" form:"exam_type"`
	PatientContext string `json:"patient_context" form:"patient_context"`
}

type AnalysisResult struct {
	Transcript      string   `json:"transcript,omitempty"`
	Summary         string   `json:"summary"`
	Diagnosis       string   `json:"diagnosis"`
	Recommendations string   `json:"recommendations"`
	Confidence      *float64 `json:"confidence,omitempty"`
}

type ImageAnalyzeResponse struct {
	ImageId  uuid.UUID      `json:"imageId"`
	Status   string         `json:"status"`
	Analysis AnalysisResult `json:"analysis"`
}

type VoiceStartResponse struct {
	ExamId uuid.UUID `json:"examId"`
	Status string    `json:"status"`
}

type VoiceUploadResponse struct {
	ExamId          uuid.UUID `json:"examId"`
	Status          string    `json:"status"`
	Transcript      string    `json:"transcript"`
	Summary         string    `json:"summary"`
	Diagnosis       string    `json:"diagnosis"`
	Recommendations string    `json:"recommendations"`
}

type RetryResponse struct {
	ExamId uuid.UUID `json:"examId"`
	Status string    `json:"status"`
}

type ExaminationResponse struct {
	Id              uuid.UUID  `json:"id"`
	Kind            string     `json:"kind"`
	ExamType        string     `json:"examType,omitempty"`
	Status          string     `json:"status"`
	FileName        string     `json:"fileName,omitempty"`
	PatientContext  string     `json:"patientContext,omitempty"`
	Transcript      string     `json:"transcript,omitempty"`
	Summary         string     `json:"summary,omitempty"`
	Diagnosis       string     `json:"diagnosis,omitempty"`
	Recommendations string     `json:"recommendations,omitempty"`
	Confidence      *float64   `json:"confidence,omitempty"`
	FailureReason   string     `json:"failureReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// EnrichExaminationMessage is the queue payload consumed by the async
// enrichment worker.
type EnrichExaminationMessage struct {
	ExamId uuid.UUID `json:"exam_id"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type HistoryResponse struct {
	Items      []ExaminationResponse `json:"items"`
	Pagination Pagination            `json:"pagination"`
}
