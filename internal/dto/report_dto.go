package dto

import (
	"github.com/google/uuid"
)

type GenerateReportRequest struct {
	ReportType string                 `json:"report_type" validate:"required,oneof=image_analysis voice_examination chat_consultation"`
	RelatedId  uuid.UUID              `json:"related_id" validate:"required"`
	ReportData map[string]interface{} `json:"report_data"`
}

type GenerateReportResponse struct {
	ReportId    uuid.UUID `json:"reportId"`
	DownloadUrl string    `json:"downloadUrl"`
}
