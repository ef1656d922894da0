package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/announcement-api/internal/models"
)

// ErrRecipientNotFound is reported when a listed recipient does not exist.
var ErrRecipientNotFound = errors.New("recipient not found")

const notificationColumns = `user_notifications (id, user_id, title, body, priority, color, icon, action_url, created_at)`

// NotificationRepository writes notification rows against users.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// DeliverMatching inserts one notification for every user matching the selector and returns the number written.
func (r *NotificationRepository) DeliverMatching(ctx context.Context, selector models.RecipientSelector, content models.AnnouncementContent) (int64, error) {
	args := []interface{}{content.Title, content.Body, content.Priority, content.Color, content.Icon, content.ActionURL, time.Now().UTC(), string(selector.Status)}
	where := []string{"status = $8"}
	var anyOf []string
	if len(selector.Companies) > 0 {
		args = append(args, pqStringArray(selector.Companies))
		anyOf = append(anyOf, fmt.Sprintf("company = ANY($%d)", len(args)))
	}
	if len(selector.Positions) > 0 {
		args = append(args, pqStringArray(selector.Positions))
		anyOf = append(anyOf, fmt.Sprintf("position = ANY($%d)", len(args)))
	}
	if len(selector.Roles) > 0 {
		args = append(args, pqStringArray(selector.Roles))
		anyOf = append(anyOf, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if len(anyOf) > 0 {
		where = append(where, "("+strings.Join(anyOf, " OR ")+")")
	}

	query := fmt.Sprintf(`INSERT INTO %s
SELECT gen_random_uuid(), id, $1, $2, $3, $4, $5, $6, $7
FROM users WHERE %s`, notificationColumns, strings.Join(where, " AND "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deliver notifications: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count delivered notifications: %w", err)
	}
	return affected, nil
}

// DeliverTo inserts a notification for a single user. Failures are reported on the attempt, never panicked or dropped.
func (r *NotificationRepository) DeliverTo(ctx context.Context, recipientID string, content models.AnnouncementContent) models.DeliveryAttempt {
	attempt := models.DeliveryAttempt{RecipientID: recipientID}
	query := `INSERT INTO ` + notificationColumns + `
SELECT $1, id, $2, $3, $4, $5, $6, $7, $8
FROM users WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query, uuid.NewString(), content.Title, content.Body, content.Priority, content.Color, content.Icon, content.ActionURL, time.Now().UTC(), recipientID)
	if err != nil {
		attempt.Err = fmt.Errorf("deliver notification: %w", err)
		return attempt
	}
	affected, err := res.RowsAffected()
	if err != nil {
		attempt.Err = fmt.Errorf("count delivered notification: %w", err)
		return attempt
	}
	if affected == 0 {
		attempt.Err = ErrRecipientNotFound
	}
	return attempt
}
