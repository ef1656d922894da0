package service

import (
	"time"

	"github.com/noah-isme/announcement-api/internal/models"
)

// OutcomeAggregator builds audit records from delivery outcomes.
type OutcomeAggregator struct {
	now func() time.Time
}

// NewOutcomeAggregator constructs the aggregator. A nil clock defaults to UTC wall time.
func NewOutcomeAggregator(now func() time.Time) *OutcomeAggregator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &OutcomeAggregator{now: now}
}

// Aggregate builds the audit record for a dispatch. The targeting spec is stored as submitted.
func (a *OutcomeAggregator) Aggregate(outcome models.DeliveryOutcome, content models.AnnouncementContent, targeting models.TargetingSpec, sender string) *models.AnnouncementRecord {
	if sender == "" {
		sender = models.SystemSender
	}
	return &models.AnnouncementRecord{
		AnnouncementContent: content,
		Targeting:           targeting,
		SentAt:              a.now(),
		SentBy:              sender,
		DeliveredCount:      outcome.Delivered,
		FailedCount:         outcome.Failed,
		TotalCount:          outcome.Delivered + outcome.Failed,
	}
}
