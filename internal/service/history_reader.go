package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/announcement-api/internal/models"
)

// DefaultHistoryLimit caps the history listing.
const DefaultHistoryLimit = 100

const historyCachePattern = "announcements:history:*"

// AnnouncementStore is the append-only audit trail.
type AnnouncementStore interface {
	Create(ctx context.Context, record *models.AnnouncementRecord) error
	ListRecent(ctx context.Context, limit int) ([]models.AnnouncementRecord, error)
}

// HistoryReader lists the most recent dispatches.
type HistoryReader struct {
	store   AnnouncementStore
	cache   *CacheService
	metrics *MetricsService
	limit   int
	logger  *zap.Logger
}

// NewHistoryReader constructs the reader with the fixed DefaultHistoryLimit.
func NewHistoryReader(store AnnouncementStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *HistoryReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryReader{store: store, cache: cache, metrics: metrics, limit: DefaultHistoryLimit, logger: logger}
}

// List returns summaries newest first. The boolean reports whether the listing came from cache.
func (h *HistoryReader) List(ctx context.Context) ([]models.AnnouncementSummary, bool, error) {
	key := fmt.Sprintf("announcements:history:%d", h.limit)
	var cached []models.AnnouncementSummary
	if hit, err := h.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	start := time.Now()
	records, err := h.store.ListRecent(ctx, h.limit)
	if err != nil {
		return nil, false, err
	}
	h.metrics.ObserveDBQuery("announcement_history", time.Since(start))

	summaries := make([]models.AnnouncementSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.Summary())
	}
	if err := h.cache.Set(ctx, key, summaries, 0); err != nil {
		h.logger.Warn("cache announcement history", zap.Error(err))
	}
	return summaries, false, nil
}

// Invalidate drops cached listings so the next read reflects new records.
func (h *HistoryReader) Invalidate(ctx context.Context) {
	if err := h.cache.Invalidate(ctx, historyCachePattern); err != nil {
		h.logger.Warn("invalidate announcement history", zap.Error(err))
	}
}
