package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/announcement-api/internal/models"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
)

// RecipientResolver turns targeting descriptors into delivery plans.
type RecipientResolver struct {
	logger *zap.Logger
}

// NewRecipientResolver constructs the resolver.
func NewRecipientResolver(logger *zap.Logger) *RecipientResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipientResolver{logger: logger}
}

// Descriptor decodes the wire form into a typed descriptor, rejecting unknown tags.
func (r *RecipientResolver) Descriptor(spec *models.TargetingSpec) (models.TargetingDescriptor, error) {
	if spec == nil || spec.Type == "" {
		return nil, appErrors.ErrTargetingRequired
	}
	switch spec.Type {
	case models.TargetingAll:
		return models.AllTargeting{}, nil
	case models.TargetingFilter:
		var criteria models.FilterCriteria
		if spec.Filter != nil {
			criteria = *spec.Filter
		}
		return models.FilteredTargeting{Criteria: criteria}, nil
	case models.TargetingManual:
		return models.ManualTargeting{RecipientIDs: spec.UserIDs}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrUnknownTargetingMode, "unknown targeting mode: "+string(spec.Type))
	}
}

// Resolve builds the delivery plan for a descriptor.
func (r *RecipientResolver) Resolve(descriptor models.TargetingDescriptor) (*models.DeliveryPlan, error) {
	var plan *models.DeliveryPlan
	switch d := descriptor.(type) {
	case models.AllTargeting:
		plan = &models.DeliveryPlan{
			Mode:     models.TargetingAll,
			Selector: &models.RecipientSelector{Status: models.RecipientActive},
		}
	case models.FilteredTargeting:
		// An empty filter still reaches every active recipient.
		plan = &models.DeliveryPlan{
			Mode: models.TargetingFilter,
			Selector: &models.RecipientSelector{
				Status:    models.RecipientActive,
				Companies: d.Criteria.Companies,
				Positions: d.Criteria.Positions,
				Roles:     d.Criteria.Roles,
			},
		}
	case models.ManualTargeting:
		if len(d.RecipientIDs) == 0 {
			return nil, appErrors.ErrMissingRecipients
		}
		ids := make([]string, len(d.RecipientIDs))
		copy(ids, d.RecipientIDs)
		plan = &models.DeliveryPlan{Mode: models.TargetingManual, RecipientIDs: ids}
	default:
		return nil, appErrors.ErrUnknownTargetingMode
	}

	r.logger.Debug("targeting resolved",
		zap.String("mode", string(plan.Mode)),
		zap.Bool("bulk", plan.Bulk()),
		zap.Int("recipients", len(plan.RecipientIDs)),
	)
	return plan, nil
}
