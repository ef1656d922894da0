package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/announcement-api/internal/models"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
)

type unknownDescriptor struct{ models.AllTargeting }

func (unknownDescriptor) Mode() models.TargetingMode { return "broadcast" }

func resolvePopulation() []models.Recipient {
	return []models.Recipient{
		{ID: "u1", Company: "Acme", Position: "Engineer", Role: "staff", Status: models.RecipientActive},
		{ID: "u2", Company: "Acme", Position: "Director", Role: "manager", Status: models.RecipientActive},
		{ID: "u3", Company: "Globex", Position: "Engineer", Role: "staff", Status: models.RecipientActive},
		{ID: "u4", Company: "Acme", Position: "Engineer", Role: "staff", Status: models.RecipientInactive},
	}
}

func matchingIDs(selector *models.RecipientSelector) []string {
	var ids []string
	for _, r := range resolvePopulation() {
		if selector.Matches(r) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func TestRecipientResolverDescriptor(t *testing.T) {
	resolver := NewRecipientResolver(nil)

	_, err := resolver.Descriptor(nil)
	assert.True(t, errors.Is(err, appErrors.ErrTargetingRequired))
	_, err = resolver.Descriptor(&models.TargetingSpec{})
	assert.True(t, errors.Is(err, appErrors.ErrTargetingRequired))

	_, err = resolver.Descriptor(&models.TargetingSpec{Type: "everyone"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnknownTargetingMode))
	assert.Contains(t, err.Error(), "everyone")

	d, err := resolver.Descriptor(&models.TargetingSpec{Type: models.TargetingFilter})
	require.NoError(t, err)
	assert.Equal(t, models.FilteredTargeting{}, d)

	d, err = resolver.Descriptor(&models.TargetingSpec{Type: models.TargetingManual, UserIDs: []string{"u1"}})
	require.NoError(t, err)
	assert.Equal(t, models.ManualTargeting{RecipientIDs: []string{"u1"}}, d)
}

func TestRecipientResolverResolveBulk(t *testing.T) {
	resolver := NewRecipientResolver(nil)

	all, err := resolver.Resolve(models.AllTargeting{})
	require.NoError(t, err)
	assert.True(t, all.Bulk())
	assert.Equal(t, []string{"u1", "u2", "u3"}, matchingIDs(all.Selector))

	emptyFilter, err := resolver.Resolve(models.FilteredTargeting{})
	require.NoError(t, err)
	assert.Equal(t, models.TargetingFilter, emptyFilter.Mode)
	assert.Equal(t, matchingIDs(all.Selector), matchingIDs(emptyFilter.Selector))

	byCompany, err := resolver.Resolve(models.FilteredTargeting{Criteria: models.FilterCriteria{Companies: []string{"Acme"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, matchingIDs(byCompany.Selector))

	union, err := resolver.Resolve(models.FilteredTargeting{Criteria: models.FilterCriteria{
		Companies: []string{"Globex"},
		Roles:     []string{"manager"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, matchingIDs(union.Selector))
}

func TestRecipientResolverResolveManual(t *testing.T) {
	resolver := NewRecipientResolver(nil)
	ids := []string{"u3", "u1", "u3"}

	plan, err := resolver.Resolve(models.ManualTargeting{RecipientIDs: ids})
	require.NoError(t, err)
	assert.False(t, plan.Bulk())
	assert.Equal(t, []string{"u3", "u1", "u3"}, plan.RecipientIDs)

	ids[0] = "changed"
	assert.Equal(t, "u3", plan.RecipientIDs[0])

	_, err = resolver.Resolve(models.ManualTargeting{})
	assert.True(t, errors.Is(err, appErrors.ErrMissingRecipients))
}

func TestRecipientResolverResolveUnknownDescriptor(t *testing.T) {
	_, err := NewRecipientResolver(nil).Resolve(unknownDescriptor{})
	assert.True(t, errors.Is(err, appErrors.ErrUnknownTargetingMode))
}
