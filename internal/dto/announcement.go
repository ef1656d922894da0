package dto

import (
	"time"

	"github.com/noah-isme/announcement-api/internal/models"
)

// DispatchAnnouncementRequest is the payload for sending an announcement.
type DispatchAnnouncementRequest struct {
	Title     string                `json:"title" validate:"required"`
	Body      string                `json:"body" validate:"required"`
	Priority  *int                  `json:"priority"`
	Color     string                `json:"color"`
	Icon      string                `json:"icon"`
	ActionURL *string               `json:"actionUrl"`
	Targeting *models.TargetingSpec `json:"targeting"`
}

// DispatchAnnouncementResult summarises a completed dispatch.
type DispatchAnnouncementResult struct {
	ID        string                   `json:"recordId"`
	Title     string                   `json:"title"`
	SentAt    time.Time                `json:"sentAt"`
	Delivered int                      `json:"deliveredCount"`
	Failed    int                      `json:"failedCount"`
	Failures  []models.DeliveryFailure `json:"failureDetails,omitempty"`
}

// ExportFormat selects the rendering of a history export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered history export.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
