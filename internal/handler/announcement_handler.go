package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/announcement-api/internal/dto"
	"github.com/noah-isme/announcement-api/internal/middleware"
	"github.com/noah-isme/announcement-api/internal/models"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
	"github.com/noah-isme/announcement-api/pkg/response"
)

type announcementService interface {
	Dispatch(ctx context.Context, req dto.DispatchAnnouncementRequest, sender string) (*dto.DispatchAnnouncementResult, error)
	History(ctx context.Context) ([]models.AnnouncementSummary, bool, error)
}

type announcementExporter interface {
	ExportHistory(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error)
}

// AnnouncementHandler exposes announcement dispatch and history endpoints.
type AnnouncementHandler struct {
	service  announcementService
	exporter announcementExporter
	now      func() time.Time
}

// NewAnnouncementHandler builds a new handler.
func NewAnnouncementHandler(service announcementService, exporter announcementExporter) *AnnouncementHandler {
	return &AnnouncementHandler{service: service, exporter: exporter, now: time.Now}
}

// Dispatch godoc
// @Summary Send an announcement
// @Description Delivers a notification to every recipient selected by the targeting descriptor and records the dispatch.
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body dto.DispatchAnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Dispatch(c *gin.Context) {
	var req dto.DispatchAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}
	result, err := h.service.Dispatch(c.Request.Context(), req, senderFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, fmt.Sprintf("announcement sent to %d recipient(s)", result.Delivered), result)
}

// History godoc
// @Summary List recent announcements
// @Description Returns the latest 100 dispatches, newest first.
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /announcements/history [get]
func (h *AnnouncementHandler) History(c *gin.Context) {
	items, hit, err := h.service.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, items, middleware.Meta(c))
}

// Export godoc
// @Summary Export announcement history
// @Tags Announcements
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /announcements/history/export [get]
func (h *AnnouncementHandler) Export(c *gin.Context) {
	file, err := h.exporter.ExportHistory(c.Request.Context(), dto.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

// Ping godoc
// @Summary Announcement routes liveness probe
// @Tags Announcements
// @Produce json
// @Success 200 {object} map[string]string
// @Router /announcements/test [get]
func (h *AnnouncementHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "announcement routes are reachable",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
