package models

import (
	"encoding/json"
	"time"
)

type ContentPack struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	Month     string    `db:"month" json:"month"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Caption struct {
	Short string `json:"short"`
	Long  string `json:"long"`
	CTA   string `json:"cta"`
}

type VisualBrief struct {
	SceneDescription string   `json:"scene_description"`
	OnScreenText     string   `json:"on_screen_text"`
	NegativePrompt   []string `json:"negative_prompt"`
}

type ContentItem struct {
	ID            string      `db:"id" json:"id"`
	ContentPackID string      `db:"content_pack_id" json:"content_pack_id"`
	ProjectID     string      `db:"project_id" json:"project_id"`
	Day           int         `db:"day" json:"day"`
	Format        string      `db:"format" json:"format"`
	Topic         string      `db:"topic" json:"topic"`
	Caption       Caption     `db:"caption" json:"caption"`
	VisualBrief   VisualBrief `db:"visual_brief" json:"visual_brief"`
	Status        string      `db:"status" json:"status"`
	PublishMode   string      `db:"publish_mode" json:"publish_mode"`
	PublishStatus string      `db:"publish_status" json:"publish_status"`
	ScheduledAt   *time.Time  `db:"scheduled_at" json:"scheduled_at"`
	IGCreationID  string      `db:"ig_creation_id" json:"ig_creation_id"`
	IGMediaID     string      `db:"ig_media_id" json:"ig_media_id"`
	PublishedAt   *time.Time  `db:"published_at" json:"published_at"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

type ContentFeatures struct {
	ContentItemID string          `db:"content_item_id" json:"content_item_id"`
	ProjectID     string          `db:"project_id" json:"project_id"`
	ArmID         string          `db:"arm_id" json:"arm_id"`
	Features      json.RawMessage `db:"features" json:"features"`
}

const (
	ItemStatusDraft    = "draft"
	ItemStatusApproved = "approved"
)

const (
	PublishStatusNone      = "none"
	PublishStatusScheduled = "scheduled"
	PublishStatusPublished = "published"
	PublishStatusFailed    = "failed"
)

const (
	PublishModeExportOnly    = "export_only"
	PublishModeInAppSchedule = "in_app_schedule"
	PublishModeAutoPublish   = "auto_publish"
)

const (
	FormatReel     = "reel"
	FormatCarousel = "carousel"
	FormatFeed     = "feed"
)
