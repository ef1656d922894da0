package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/announcement-api/internal/models"
)

// AnnouncementRepository persists the append-only announcement audit trail.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts a new audit record, assigning its identifier when missing.
func (r *AnnouncementRepository) Create(ctx context.Context, record *models.AnnouncementRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.SentAt.IsZero() {
		record.SentAt = time.Now().UTC()
	}
	query := `INSERT INTO announcements (id, title, body, priority, color, icon, action_url, targeting, sent_at, sent_by, delivered_count, failed_count, total_count)
VALUES (:id, :title, :body, :priority, :color, :icon, :action_url, :targeting, :sent_at, :sent_by, :delivered_count, :failed_count, :total_count)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *AnnouncementRepository) ListRecent(ctx context.Context, limit int) ([]models.AnnouncementRecord, error) {
	const query = `SELECT id, title, body, priority, color, icon, action_url, targeting, sent_at, sent_by, delivered_count, failed_count, total_count
FROM announcements
ORDER BY sent_at DESC
LIMIT $1`
	records := []models.AnnouncementRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return records, nil
}

// pqStringArray helper ensures we pass string arrays consistently.
func pqStringArray(values []string) interface{} {
	return pq.Array(values)
}
