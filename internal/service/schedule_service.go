package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vissocial/pipeline/internal/repository"
)

const dueBatchLimit = 20

// PublishEnqueuer submits an item to the publish queue.
type PublishEnqueuer interface {
	EnqueuePublish(ctx context.Context, itemID string) error
}

// DebounceStore guards the recurring tick against overlapping runs from
// duplicate repeat registrations across process restarts. ShouldRun fails
// open: when the backing store is unreachable, the tick runs.
type DebounceStore interface {
	ShouldRun(ctx context.Context) bool
	MarkRun(ctx context.Context)
}

type TickResult struct {
	OK        bool   `json:"ok"`
	Scheduled int    `json:"scheduled"`
	Skipped   bool   `json:"skipped"`
	Reason    string `json:"reason,omitempty"`
}

type ScheduleService struct {
	items    repository.ContentItemRepository
	publish  PublishEnqueuer
	debounce DebounceStore
}

func NewScheduleService(items repository.ContentItemRepository, publish PublishEnqueuer, debounce DebounceStore) *ScheduleService {
	return &ScheduleService{items: items, publish: publish, debounce: debounce}
}

// Tick promotes due scheduled items into the publish queue, at most 20 per
// invocation. The debounce record is updated even when nothing was due, so a
// storm of queued ticks collapses into one effective run per interval.
func (s *ScheduleService) Tick(ctx context.Context) (*TickResult, error) {
	if !s.debounce.ShouldRun(ctx) {
		slog.Info("schedule tick skipped, ran too recently")
		return &TickResult{OK: true, Skipped: true, Reason: "debounced"}, nil
	}

	due, err := s.items.ListDue(ctx, time.Now(), dueBatchLimit)
	if err != nil {
		return nil, err
	}

	scheduled := 0
	for _, item := range due {
		if err := s.publish.EnqueuePublish(ctx, item.ID); err != nil {
			slog.Info("failed to enqueue publish", "content_item_id", item.ID, "error", err.Error())
			continue
		}
		scheduled++
	}

	s.debounce.MarkRun(ctx)

	slog.Info("schedule tick completed", "due", len(due), "scheduled", scheduled)
	return &TickResult{OK: true, Scheduled: scheduled}, nil
}
