package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/announcement-api/internal/dto"
	"github.com/noah-isme/announcement-api/internal/models"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
	"github.com/noah-isme/announcement-api/pkg/export"
)

type historyLister interface {
	History(ctx context.Context) ([]models.AnnouncementSummary, bool, error)
}

var exportHeaders = []string{"Sent At", "Title", "Priority", "Targeting", "Delivered", "Failed", "Total", "Sent By"}

// ExportService renders the announcement history as downloadable files.
type ExportService struct {
	history historyLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(history historyLister, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{history: history, csv: csv, pdf: pdf, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ExportHistory renders the current history listing in the requested format.
func (s *ExportService) ExportHistory(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error) {
	format = dto.ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = dto.ExportFormatCSV
	}
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	summaries, _, err := s.history.History(ctx)
	if err != nil {
		return nil, err
	}
	dataset := buildHistoryDataset(summaries)
	stamp := s.now().Format("20060102-150405")

	var file dto.ExportFile
	switch format {
	case dto.ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Announcement history")
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render export")
		}
		file = dto.ExportFile{Filename: fmt.Sprintf("announcements-%s.pdf", stamp), ContentType: "application/pdf", Content: content}
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render export")
		}
		file = dto.ExportFile{Filename: fmt.Sprintf("announcements-%s.csv", stamp), ContentType: "text/csv", Content: content}
	}
	s.logger.Debug("announcement history exported", zap.String("format", string(format)), zap.Int("rows", len(summaries)))
	return &file, nil
}

func buildHistoryDataset(summaries []models.AnnouncementSummary) export.Dataset {
	rows := make([]map[string]string, 0, len(summaries))
	for _, item := range summaries {
		rows = append(rows, map[string]string{
			"Sent At":   item.SentAt.UTC().Format(time.RFC3339),
			"Title":     item.Title,
			"Priority":  strconv.Itoa(item.Priority),
			"Targeting": string(item.TargetingType),
			"Delivered": strconv.Itoa(item.Result.Delivered),
			"Failed":    strconv.Itoa(item.Result.Failed),
			"Total":     strconv.Itoa(item.Result.Total),
			"Sent By":   item.SentBy,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
