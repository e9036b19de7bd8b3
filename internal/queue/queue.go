package queue

// Logical queues. Each is consumed by one worker process; q_publish gets
// double weight so manual publish-now requests do not starve behind batches.
const (
	QueueIngest  = "q_ingest"
	QueueLLM     = "q_llm"
	QueueRender  = "q_render"
	QueuePublish = "q_publish"
	QueueMetrics = "q_metrics"
)

// Task types, dispatched by name within a queue.
const (
	TaskPlanGenerate     = "plan.generate"
	TaskRenderFlux       = "render.flux"
	TaskPublishInstagram = "publish.instagram"
	TaskMetricsIngest    = "metrics.ingest"
	TaskScheduleTick     = "schedule.tick"
	TaskInstagramIngest  = "instagram.ingest"
)

// Payloads crossing the queue boundary are versioned schemas: fields are
// explicit per job name so producer and consumer cannot silently drift.

type PlanGeneratePayload struct {
	ProjectID string `json:"project_id"`
	Month     string `json:"month"`
	Limit     int    `json:"limit,omitempty"`
}

type RenderFluxPayload struct {
	ContentItemID  string   `json:"content_item_id"`
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	ImageURLs      []string `json:"image_urls,omitempty"`
}

type PublishInstagramPayload struct {
	ContentItemID string `json:"content_item_id"`
}

type MetricsIngestPayload struct {
	ProjectID string `json:"project_id"`
	Window    string `json:"window"`
}

type ScheduleTickPayload struct {
	ProjectID string `json:"project_id,omitempty"`
}

type InstagramIngestPayload struct {
	ProjectID string `json:"project_id"`
}
