package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/announcement-api/internal/models"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
)

// NotificationWriter is the notification write primitive: one bulk write per predicate or one write per recipient.
type NotificationWriter interface {
	DeliverMatching(ctx context.Context, selector models.RecipientSelector, content models.AnnouncementContent) (int64, error)
	DeliverTo(ctx context.Context, recipientID string, content models.AnnouncementContent) models.DeliveryAttempt
}

// DeliveryExecutor applies delivery plans through the notification writer.
type DeliveryExecutor struct {
	writer      NotificationWriter
	concurrency int
	logger      *zap.Logger
}

// NewDeliveryExecutor constructs the executor. concurrency bounds parallel manual writes; values below 2 deliver sequentially.
func NewDeliveryExecutor(writer NotificationWriter, concurrency int, logger *zap.Logger) *DeliveryExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryExecutor{writer: writer, concurrency: concurrency, logger: logger}
}

// Execute delivers content according to plan.
// Bulk plans report the matched count with Failed always 0; individual bulk failures are not observable.
// Manual plans never fail as a whole: each recipient gets one attempt and failures are collected in input order.
func (e *DeliveryExecutor) Execute(ctx context.Context, plan *models.DeliveryPlan, content models.AnnouncementContent) (models.DeliveryOutcome, error) {
	if e.writer == nil {
		return models.DeliveryOutcome{}, appErrors.ErrDependencyUnavailable
	}
	if plan == nil {
		return models.DeliveryOutcome{}, fmt.Errorf("execute delivery: nil plan")
	}
	if plan.Bulk() {
		return e.executeBulk(ctx, plan, content)
	}
	return e.executeManual(ctx, plan, content), nil
}

func (e *DeliveryExecutor) executeBulk(ctx context.Context, plan *models.DeliveryPlan, content models.AnnouncementContent) (models.DeliveryOutcome, error) {
	delivered, err := e.writer.DeliverMatching(ctx, *plan.Selector, content)
	if err != nil {
		return models.DeliveryOutcome{}, fmt.Errorf("bulk delivery (%s): %w", plan.Mode, err)
	}
	return models.DeliveryOutcome{Delivered: int(delivered)}, nil
}

func (e *DeliveryExecutor) executeManual(ctx context.Context, plan *models.DeliveryPlan, content models.AnnouncementContent) models.DeliveryOutcome {
	attempts := make([]models.DeliveryAttempt, len(plan.RecipientIDs))
	if e.concurrency == 1 {
		for i, id := range plan.RecipientIDs {
			attempts[i] = e.deliverOne(ctx, id, content)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for i, id := range plan.RecipientIDs {
			i, id := i, id
			g.Go(func() error {
				attempts[i] = e.deliverOne(ctx, id, content)
				return nil
			})
		}
		_ = g.Wait()
	}

	outcome := models.DeliveryOutcome{}
	for _, attempt := range attempts {
		if attempt.Delivered() {
			outcome.Delivered++
			continue
		}
		outcome.Failed++
		outcome.Failures = append(outcome.Failures, models.DeliveryFailure{
			RecipientID: attempt.RecipientID,
			Reason:      attempt.Err.Error(),
		})
		e.logger.Warn("recipient delivery failed",
			zap.String("recipient_id", attempt.RecipientID),
			zap.Error(attempt.Err),
		)
	}
	return outcome
}

func (e *DeliveryExecutor) deliverOne(ctx context.Context, id string, content models.AnnouncementContent) models.DeliveryAttempt {
	attempt := e.writer.DeliverTo(ctx, id, content)
	attempt.RecipientID = id
	return attempt
}
