package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/announcement-api/internal/models"
	"github.com/noah-isme/announcement-api/internal/repository"
	appErrors "github.com/noah-isme/announcement-api/pkg/errors"
)

var executorContent = models.AnnouncementContent{Title: "t", Body: "b", Priority: 1, Color: "#fff", Icon: "paper"}

func TestDeliveryExecutorBulk(t *testing.T) {
	writer := &notificationWriterStub{matched: 17}
	executor := NewDeliveryExecutor(writer, 1, nil)
	plan := &models.DeliveryPlan{Mode: models.TargetingAll, Selector: &models.RecipientSelector{Status: models.RecipientActive}}

	outcome, err := executor.Execute(context.Background(), plan, executorContent)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryOutcome{Delivered: 17}, outcome)
	assert.Equal(t, []models.AnnouncementContent{executorContent}, writer.contents)
}

func TestDeliveryExecutorBulkError(t *testing.T) {
	writer := &notificationWriterStub{bulkErr: errors.New("timeout")}
	plan := &models.DeliveryPlan{Mode: models.TargetingFilter, Selector: &models.RecipientSelector{Status: models.RecipientActive}}

	_, err := NewDeliveryExecutor(writer, 1, nil).Execute(context.Background(), plan, executorContent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter")
	assert.Contains(t, err.Error(), "timeout")
}

func TestDeliveryExecutorManualCollectsFailuresInOrder(t *testing.T) {
	writer := &notificationWriterStub{failures: map[string]error{
		"u2": repository.ErrRecipientNotFound,
		"u4": errors.New("constraint violation"),
	}}
	plan := &models.DeliveryPlan{Mode: models.TargetingManual, RecipientIDs: []string{"u1", "u2", "u3", "u4"}}

	outcome, err := NewDeliveryExecutor(writer, 1, nil).Execute(context.Background(), plan, executorContent)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Delivered)
	assert.Equal(t, 2, outcome.Failed)
	assert.Equal(t, len(plan.RecipientIDs), outcome.Delivered+outcome.Failed)
	assert.Equal(t, []models.DeliveryFailure{
		{RecipientID: "u2", Reason: repository.ErrRecipientNotFound.Error()},
		{RecipientID: "u4", Reason: "constraint violation"},
	}, outcome.Failures)
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, writer.attempted)
}

func TestDeliveryExecutorManualDuplicatesAttemptedTwice(t *testing.T) {
	writer := &notificationWriterStub{}
	plan := &models.DeliveryPlan{Mode: models.TargetingManual, RecipientIDs: []string{"u1", "u1"}}

	outcome, err := NewDeliveryExecutor(writer, 1, nil).Execute(context.Background(), plan, executorContent)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Delivered)
	assert.Equal(t, []string{"u1", "u1"}, writer.attempted)
}

func TestDeliveryExecutorManualParallelPreservesInputOrder(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	writer := &notificationWriterStub{
		failures: map[string]error{"a": errors.New("a failed"), "d": errors.New("d failed"), "f": errors.New("f failed")},
		delay: func(id string) time.Duration {
			if id == "a" {
				return 20 * time.Millisecond
			}
			return 0
		},
	}
	plan := &models.DeliveryPlan{Mode: models.TargetingManual, RecipientIDs: ids}

	outcome, err := NewDeliveryExecutor(writer, 4, nil).Execute(context.Background(), plan, executorContent)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Delivered)
	assert.Equal(t, 3, outcome.Failed)
	require.Len(t, outcome.Failures, 3)
	assert.Equal(t, "a", outcome.Failures[0].RecipientID)
	assert.Equal(t, "d", outcome.Failures[1].RecipientID)
	assert.Equal(t, "f", outcome.Failures[2].RecipientID)
	assert.ElementsMatch(t, ids, writer.attempted)
}

func TestDeliveryExecutorWithoutWriter(t *testing.T) {
	plan := &models.DeliveryPlan{Mode: models.TargetingManual, RecipientIDs: []string{"u1"}}
	_, err := NewDeliveryExecutor(nil, 0, nil).Execute(context.Background(), plan, executorContent)
	assert.True(t, errors.Is(err, appErrors.ErrDependencyUnavailable))
}
