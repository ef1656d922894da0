package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/announcement-api/internal/models"
)

type failingCacheRepo struct{ err error }

func (f failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error { return f.err }
func (f failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return f.err
}
func (f failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error { return f.err }

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", &struct{}{})
	assert.False(t, hit)
	assert.NoError(t, err)
	assert.NoError(t, nilCache.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, nilCache.Invalidate(context.Background(), "k*"))

	disabled := NewCacheService(newCacheRepoStub(), nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
}

func TestCacheServiceHitMissAndInvalidate(t *testing.T) {
	metrics := NewMetricsService()
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out []string
	hit, err := cache.Get(ctx, "announcements:history:100", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "announcements:history:100", []string{"a"}, 0))
	hit, err = cache.Get(ctx, "announcements:history:100", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a"}, out)

	require.NoError(t, cache.Invalidate(ctx, "announcements:history:*"))
	hit, _ = cache.Get(ctx, "announcements:history:100", &out)
	assert.False(t, hit)

	assert.Equal(t, float64(1), counterValue(t, metrics, "cache_lookups_total", "hit"))
	assert.Equal(t, float64(2), counterValue(t, metrics, "cache_lookups_total", "miss"))
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{err: errors.New("redis down")}, nil, 0, nil, true)
	hit, err := cache.Get(context.Background(), "k", &struct{}{})
	assert.False(t, hit)
	assert.Error(t, err)
	assert.Error(t, cache.Invalidate(context.Background(), "k*"))
}

func TestMetricsServiceRecordDispatch(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordDispatch(models.TargetingManual, models.DeliveryOutcome{Delivered: 3, Failed: 2}, nil)
	metrics.RecordDispatch(models.TargetingAll, models.DeliveryOutcome{}, errors.New("boom"))

	assert.Equal(t, float64(1), counterValue(t, metrics, "announcement_dispatches_total", "manual", "success"))
	assert.Equal(t, float64(1), counterValue(t, metrics, "announcement_dispatches_total", "all", "error"))
	assert.Equal(t, float64(3), counterValue(t, metrics, "announcement_recipients_delivered_total", "manual"))
	assert.Equal(t, float64(2), counterValue(t, metrics, "announcement_recipients_failed_total", "manual"))

	var nilMetrics *MetricsService
	nilMetrics.RecordDispatch(models.TargetingAll, models.DeliveryOutcome{}, nil)
	assert.Nil(t, nilMetrics.Registry())
}

// counterValue reads a counter sample by family name and label values ordered by label name.
func counterValue(t *testing.T, metrics *MetricsService, name string, labelValues ...string) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := metric.GetLabel()
			if len(labels) != len(labelValues) {
				continue
			}
			match := true
			for i, label := range labels {
				if label.GetValue() != labelValues[i] {
					match = false
					break
				}
			}
			if match {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
