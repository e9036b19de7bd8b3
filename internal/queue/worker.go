package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vissocial/pipeline/internal/service"
)

// Worker owns the consumer side: it unmarshals payloads, dispatches to the
// stage services and decides which failures are retryable.
type Worker struct {
	plan     *service.PlanService
	render   *service.RenderService
	publish  *service.PublishService
	metrics  *service.MetricsService
	schedule *service.ScheduleService
	ingest   *service.IngestService
}

func NewWorker(
	plan *service.PlanService,
	render *service.RenderService,
	publish *service.PublishService,
	metrics *service.MetricsService,
	schedule *service.ScheduleService,
	ingest *service.IngestService) *Worker {
	return &Worker{
		plan:     plan,
		render:   render,
		publish:  publish,
		metrics:  metrics,
		schedule: schedule,
		ingest:   ingest,
	}
}

// Mux registers the known task types plus a per-namespace catch-all: a task
// name nobody recognizes is a deployment mismatch, fatal rather than
// endlessly retried.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskPlanGenerate, w.HandlePlanGenerate)
	mux.HandleFunc(TaskRenderFlux, w.HandleRenderFlux)
	mux.HandleFunc(TaskPublishInstagram, w.HandlePublishInstagram)
	mux.HandleFunc(TaskMetricsIngest, w.HandleMetricsIngest)
	mux.HandleFunc(TaskScheduleTick, w.HandleScheduleTick)
	mux.HandleFunc(TaskInstagramIngest, w.HandleInstagramIngest)

	for _, prefix := range []string{"plan.", "render.", "publish.", "metrics.", "schedule.", "instagram."} {
		mux.HandleFunc(prefix, w.handleUnknownTask)
	}

	return mux
}

func (w *Worker) handleUnknownTask(ctx context.Context, task *asynq.Task) error {
	return fmt.Errorf("unknown job name %q: %w", task.Type(), asynq.SkipRetry)
}

func (w *Worker) HandlePlanGenerate(ctx context.Context, task *asynq.Task) error {
	var payload PlanGeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad plan.generate payload: %v: %w", err, asynq.SkipRetry)
	}

	res, err := w.plan.Generate(ctx, payload.ProjectID, payload.Month, payload.Limit)
	if err != nil {
		return err
	}

	slog.Info("plan.generate finished", "pack_id", res.ContentPackID, "items", res.Items)
	return nil
}

func (w *Worker) HandleRenderFlux(ctx context.Context, task *asynq.Task) error {
	var payload RenderFluxPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad render.flux payload: %v: %w", err, asynq.SkipRetry)
	}

	// The error propagates so the queue's retry policy decides what happens
	// next; the failed render row is already persisted by the stage.
	_, err := w.render.RenderItem(ctx, payload.ContentItemID, payload.Prompt, payload.NegativePrompt, payload.ImageURLs)
	return err
}

func (w *Worker) HandlePublishInstagram(ctx context.Context, task *asynq.Task) error {
	var payload PublishInstagramPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad publish.instagram payload: %v: %w", err, asynq.SkipRetry)
	}

	res, err := w.publish.PublishItem(ctx, payload.ContentItemID)
	if err != nil {
		return err
	}
	if !res.OK {
		// Reported, not retried: the item's publish_status carries the outcome.
		slog.Info("publish.instagram not performed", "content_item_id", payload.ContentItemID, "reason", res.Reason)
		return nil
	}

	slog.Info("publish.instagram finished", "content_item_id", payload.ContentItemID, "ig_media_id", res.IGMediaID)
	return nil
}

func (w *Worker) HandleMetricsIngest(ctx context.Context, task *asynq.Task) error {
	var payload MetricsIngestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad metrics.ingest payload: %v: %w", err, asynq.SkipRetry)
	}

	updated, err := w.metrics.Ingest(ctx, payload.ProjectID, payload.Window)
	if errors.Is(err, service.ErrMissingToken) {
		return fmt.Errorf("metrics.ingest for %s: %v: %w", payload.ProjectID, err, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	slog.Info("metrics.ingest finished", "project_id", payload.ProjectID, "window", payload.Window, "updated", updated)
	return nil
}

func (w *Worker) HandleScheduleTick(ctx context.Context, task *asynq.Task) error {
	res, err := w.schedule.Tick(ctx)
	if err != nil {
		return err
	}

	slog.Info("schedule.tick finished", "scheduled", res.Scheduled, "skipped", res.Skipped)
	return nil
}

func (w *Worker) HandleInstagramIngest(ctx context.Context, task *asynq.Task) error {
	var payload InstagramIngestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad instagram.ingest payload: %v: %w", err, asynq.SkipRetry)
	}

	added, err := w.ingest.IngestMedia(ctx, payload.ProjectID)
	if errors.Is(err, service.ErrMissingToken) {
		return fmt.Errorf("instagram.ingest for %s: %v: %w", payload.ProjectID, err, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	slog.Info("instagram.ingest finished", "project_id", payload.ProjectID, "added", added)
	return nil
}
