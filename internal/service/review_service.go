package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/pkg/utils"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNoChanges    = errors.New("no changes requested")
)

type ReviewService struct {
	items   repository.ContentItemRepository
	actions repository.UserActionRepository
}

func NewReviewService(items repository.ContentItemRepository, actions repository.UserActionRepository) *ReviewService {
	return &ReviewService{items: items, actions: actions}
}

// itemSnapshot is the before/after view captured on each audit action.
type itemSnapshot struct {
	Status        string         `json:"status"`
	Caption       models.Caption `json:"caption"`
	ScheduledAt   *time.Time     `json:"scheduled_at"`
	PublishMode   string         `json:"publish_mode"`
	PublishStatus string         `json:"publish_status"`
}

func snapshot(item *models.ContentItem) itemSnapshot {
	return itemSnapshot{
		Status:        item.Status,
		Caption:       item.Caption,
		ScheduledAt:   item.ScheduledAt,
		PublishMode:   item.PublishMode,
		PublishStatus: item.PublishStatus,
	}
}

// UpdateItem applies a review edit and appends one audit action per
// logically distinct change, with before/after snapshots for the learning
// signals downstream.
func (s *ReviewService) UpdateItem(ctx context.Context, itemID string, upd *models.ItemUpdate) (*models.ContentItem, error) {
	if upd == nil || upd.Empty() {
		return nil, ErrNoChanges
	}

	before, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, ErrItemNotFound
	}

	if err := s.items.UpdateReview(ctx, itemID, upd); err != nil {
		return nil, err
	}

	after, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var actionTypes []string
	if upd.Status != nil && *upd.Status != before.Status {
		if *upd.Status == models.ItemStatusApproved {
			actionTypes = append(actionTypes, models.ActionApprove)
		} else {
			actionTypes = append(actionTypes, models.ActionUnapprove)
		}
	}
	if upd.CaptionLong != nil && *upd.CaptionLong != before.Caption.Long {
		actionTypes = append(actionTypes, models.ActionCaptionEdit)
	}
	if upd.ScheduledAt != nil && (before.ScheduledAt == nil || !before.ScheduledAt.Equal(*upd.ScheduledAt)) {
		actionTypes = append(actionTypes, models.ActionSchedule)
	}
	if upd.PublishStatus != nil && *upd.PublishStatus != before.PublishStatus {
		actionTypes = append(actionTypes, models.ActionPublishStatus)
	}

	payload, err := json.Marshal(map[string]itemSnapshot{
		"before": snapshot(before),
		"after":  snapshot(after),
	})
	if err != nil {
		return nil, err
	}

	for _, actionType := range actionTypes {
		action := &models.UserAction{
			ID:            utils.NewID("ua"),
			ProjectID:     before.ProjectID,
			ContentItemID: itemID,
			ActionType:    actionType,
			Payload:       payload,
		}
		if err := s.actions.Create(ctx, action); err != nil {
			slog.Info("failed to record audit action", "content_item_id", itemID, "action", actionType, "error", err.Error())
		}
	}

	return after, nil
}
