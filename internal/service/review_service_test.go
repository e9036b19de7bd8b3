package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vissocial/pipeline/internal/models"
)

func strPtr(s string) *string { return &s }

func newReviewFixture() (*ReviewService, *fakeItemRepo, *fakeActionRepo) {
	items := newFakeItemRepo()
	items.items["item-1"] = &models.ContentItem{
		ID:        "item-1",
		ProjectID: "proj-1",
		Status:    models.ItemStatusDraft,
		Caption:   models.Caption{Long: "original caption"},
	}
	actions := &fakeActionRepo{}
	return NewReviewService(items, actions), items, actions
}

func TestUpdateItemRejectsEmptyUpdate(t *testing.T) {
	svc, _, _ := newReviewFixture()

	_, err := svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{})
	assert.ErrorIs(t, err, ErrNoChanges)

	_, err = svc.UpdateItem(context.Background(), "item-1", nil)
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestUpdateItemNotFound(t *testing.T) {
	svc, _, _ := newReviewFixture()

	_, err := svc.UpdateItem(context.Background(), "missing", &models.ItemUpdate{Status: strPtr(models.ItemStatusApproved)})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateItemApproveRoundTrip(t *testing.T) {
	svc, _, actions := newReviewFixture()

	after, err := svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{Status: strPtr(models.ItemStatusApproved)})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusApproved, after.Status)

	require.Len(t, actions.actions, 1)
	assert.Equal(t, models.ActionApprove, actions.actions[0].ActionType)

	after, err = svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{Status: strPtr(models.ItemStatusDraft)})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusDraft, after.Status)

	require.Len(t, actions.actions, 2)
	assert.Equal(t, models.ActionUnapprove, actions.actions[1].ActionType)
}

func TestUpdateItemOneActionPerChange(t *testing.T) {
	svc, _, actions := newReviewFixture()

	when := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	_, err := svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{
		CaptionLong: strPtr("edited caption"),
		ScheduledAt: &when,
	})
	require.NoError(t, err)

	require.Len(t, actions.actions, 2)
	types := []string{actions.actions[0].ActionType, actions.actions[1].ActionType}
	assert.Contains(t, types, models.ActionCaptionEdit)
	assert.Contains(t, types, models.ActionSchedule)
}

func TestUpdateItemUnchangedStatusRecordsNoAction(t *testing.T) {
	svc, _, actions := newReviewFixture()

	_, err := svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{Status: strPtr(models.ItemStatusDraft)})
	require.NoError(t, err)
	assert.Empty(t, actions.actions)
}

func TestUpdateItemUnchangedScheduleAndStatusRecordNoAction(t *testing.T) {
	svc, items, actions := newReviewFixture()

	when := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	items.items["item-1"].ScheduledAt = &when
	items.items["item-1"].PublishStatus = models.PublishStatusScheduled

	_, err := svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{
		ScheduledAt:   &when,
		PublishStatus: strPtr(models.PublishStatusScheduled),
	})
	require.NoError(t, err)
	assert.Empty(t, actions.actions)
}

func TestUpdateItemRescheduleRecordsAction(t *testing.T) {
	svc, items, actions := newReviewFixture()

	old := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	items.items["item-1"].ScheduledAt = &old

	moved := old.Add(48 * time.Hour)
	_, err := svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{ScheduledAt: &moved})
	require.NoError(t, err)

	require.Len(t, actions.actions, 1)
	assert.Equal(t, models.ActionSchedule, actions.actions[0].ActionType)
}

func TestUpdateItemActionCarriesSnapshots(t *testing.T) {
	svc, _, actions := newReviewFixture()

	_, err := svc.UpdateItem(context.Background(), "item-1", &models.ItemUpdate{CaptionLong: strPtr("edited caption")})
	require.NoError(t, err)
	require.Len(t, actions.actions, 1)

	var payload map[string]struct {
		Caption models.Caption `json:"caption"`
	}
	require.NoError(t, json.Unmarshal(actions.actions[0].Payload, &payload))
	assert.Equal(t, "original caption", payload["before"].Caption.Long)
	assert.Equal(t, "edited caption", payload["after"].Caption.Long)
}
