package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/announcement-api/internal/dto"
	"github.com/noah-isme/announcement-api/internal/models"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
)

// AnnouncementConfig carries dispatch tuning and display defaults.
type AnnouncementConfig struct {
	DefaultPriority   int
	DefaultColor      string
	DefaultIcon       string
	ManualConcurrency int
	Now               func() time.Time
}

// AnnouncementService orchestrates dispatch and history.
type AnnouncementService struct {
	notifications NotificationWriter
	records       AnnouncementStore
	resolver      *RecipientResolver
	executor      *DeliveryExecutor
	aggregator    *OutcomeAggregator
	history       *HistoryReader
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           AnnouncementConfig
}

// NewAnnouncementService constructs the service. notifications and records may be nil when storage is
// unreachable; requests then fail with DEPENDENCY_UNAVAILABLE.
func NewAnnouncementService(notifications NotificationWriter, records AnnouncementStore, cfg AnnouncementConfig, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPriority == 0 {
		cfg.DefaultPriority = 1
	}
	if cfg.DefaultColor == "" {
		cfg.DefaultColor = "#f5872dff"
	}
	if cfg.DefaultIcon == "" {
		cfg.DefaultIcon = "paper"
	}
	return &AnnouncementService{
		notifications: notifications,
		records:       records,
		resolver:      NewRecipientResolver(logger),
		executor:      NewDeliveryExecutor(notifications, cfg.ManualConcurrency, logger),
		aggregator:    NewOutcomeAggregator(cfg.Now),
		history:       NewHistoryReader(records, cache, metrics, logger),
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
	}
}

// Dispatch validates, delivers and records an announcement. sender may be empty.
// Per-recipient failures are reported in the result, not as an error.
func (s *AnnouncementService) Dispatch(ctx context.Context, req dto.DispatchAnnouncementRequest, sender string) (*dto.DispatchAnnouncementResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and body are required")
	}
	descriptor, err := s.resolver.Descriptor(req.Targeting)
	if err != nil {
		return nil, err
	}
	plan, err := s.resolver.Resolve(descriptor)
	if err != nil {
		return nil, err
	}
	if s.notifications == nil || s.records == nil {
		return nil, appErrors.ErrDependencyUnavailable
	}

	// A dispatch that started delivering runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	content := s.content(req)

	start := time.Now()
	outcome, err := s.executor.Execute(ctx, plan, content)
	if err != nil {
		s.metrics.RecordDispatch(plan.Mode, outcome, err)
		s.logger.Error("announcement delivery failed", zap.String("mode", string(plan.Mode)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to deliver announcement")
	}
	s.metrics.ObserveDBQuery("announcement_delivery_"+string(plan.Mode), time.Since(start))
	s.logger.Info("announcement delivered",
		zap.String("mode", string(plan.Mode)),
		zap.Int("delivered", outcome.Delivered),
		zap.Int("failed", outcome.Failed),
	)

	record := s.aggregator.Aggregate(outcome, content, *req.Targeting, sender)
	if err := s.records.Create(ctx, record); err != nil {
		s.metrics.RecordDispatch(plan.Mode, outcome, err)
		s.logger.Error("announcement audit record not persisted",
			zap.String("title", record.Title),
			zap.Int("delivered", outcome.Delivered),
			zap.Int("failed", outcome.Failed),
			zap.Error(err),
		)
		persistErr := appErrors.Wrap(err, appErrors.ErrAuditPersistFailed.Code, appErrors.ErrAuditPersistFailed.Status, appErrors.ErrAuditPersistFailed.Message)
		persistErr.Detail = err.Error()
		return nil, persistErr
	}
	s.logger.Info("announcement recorded", zap.String("id", record.ID), zap.String("sent_by", record.SentBy))
	s.metrics.RecordDispatch(plan.Mode, outcome, nil)
	s.history.Invalidate(ctx)

	return &dto.DispatchAnnouncementResult{
		ID:        record.ID,
		Title:     record.Title,
		SentAt:    record.SentAt,
		Delivered: outcome.Delivered,
		Failed:    outcome.Failed,
		Failures:  outcome.Failures,
	}, nil
}

// History lists the latest announcements, newest first. The boolean reports a cache hit.
func (s *AnnouncementService) History(ctx context.Context) ([]models.AnnouncementSummary, bool, error) {
	if s.records == nil {
		return nil, false, appErrors.ErrDependencyUnavailable
	}
	return s.history.List(ctx)
}

func (s *AnnouncementService) content(req dto.DispatchAnnouncementRequest) models.AnnouncementContent {
	content := models.AnnouncementContent{
		Title:     req.Title,
		Body:      req.Body,
		Priority:  s.cfg.DefaultPriority,
		Color:     req.Color,
		Icon:      req.Icon,
		ActionURL: req.ActionURL,
	}
	if req.Priority != nil {
		content.Priority = *req.Priority
	}
	if content.Color == "" {
		content.Color = s.cfg.DefaultColor
	}
	if content.Icon == "" {
		content.Icon = s.cfg.DefaultIcon
	}
	return content
}
