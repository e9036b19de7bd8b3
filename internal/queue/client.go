package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Client wraps the asynq producer with one typed enqueue per job name.
type Client struct {
	c *asynq.Client
}

func NewClient(c *asynq.Client) *Client {
	return &Client{c: c}
}

func (q *Client) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, data)
	info, err := q.c.EnqueueContext(ctx, task, opts...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	slog.Info("task enqueued", "type", taskType, "queue", info.Queue, "id", info.ID)
	return nil
}

func (q *Client) EnqueuePlanGenerate(ctx context.Context, projectID, month string, limit int) error {
	return q.enqueue(ctx, TaskPlanGenerate,
		PlanGeneratePayload{ProjectID: projectID, Month: month, Limit: limit},
		asynq.Queue(QueueLLM))
}

func (q *Client) EnqueueRender(ctx context.Context, itemID, prompt, negativePrompt string, imageURLs []string) error {
	return q.enqueue(ctx, TaskRenderFlux,
		RenderFluxPayload{ContentItemID: itemID, Prompt: prompt, NegativePrompt: negativePrompt, ImageURLs: imageURLs},
		asynq.Queue(QueueRender), asynq.MaxRetry(3))
}

func (q *Client) EnqueuePublish(ctx context.Context, itemID string) error {
	return q.enqueue(ctx, TaskPublishInstagram,
		PublishInstagramPayload{ContentItemID: itemID},
		asynq.Queue(QueuePublish))
}

func (q *Client) EnqueueMetrics(ctx context.Context, projectID, window string, delay time.Duration) error {
	return q.enqueue(ctx, TaskMetricsIngest,
		MetricsIngestPayload{ProjectID: projectID, Window: window},
		asynq.Queue(QueueMetrics), asynq.ProcessIn(delay))
}

func (q *Client) EnqueueIngest(ctx context.Context, projectID string) error {
	return q.enqueue(ctx, TaskInstagramIngest,
		InstagramIngestPayload{ProjectID: projectID},
		asynq.Queue(QueueIngest))
}

// EnqueueScheduleTick registers the recurring tick. The fixed task id keeps
// duplicate pending registrations from piling up; the Redis debounce inside
// the handler guards the runs themselves.
func (q *Client) EnqueueScheduleTick(ctx context.Context) error {
	err := q.enqueue(ctx, TaskScheduleTick,
		ScheduleTickPayload{},
		asynq.Queue(QueuePublish), asynq.TaskID("schedule-tick-repeating"))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}
