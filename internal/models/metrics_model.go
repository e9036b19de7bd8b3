package models

import "time"

type EngagementMetrics struct {
	Reach       int64 `json:"reach"`
	Impressions int64 `json:"impressions"`
	Saves       int64 `json:"saves"`
	Shares      int64 `json:"shares"`
	Comments    int64 `json:"comments"`
	Likes       int64 `json:"likes"`
}

// PostMetrics is one engagement snapshot for a published item at a given
// post-publish window. Rows are append-only.
type PostMetrics struct {
	ID            string            `db:"id" json:"id"`
	ProjectID     string            `db:"project_id" json:"project_id"`
	ContentItemID string            `db:"content_item_id" json:"content_item_id"`
	Window        string            `db:"window" json:"window"`
	Metrics       EngagementMetrics `db:"metrics" json:"metrics"`
	Reward        float64           `db:"reward_01" json:"reward_01"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

// PublishedItem is the projection the metrics stage works from: a published
// item, its platform media id, the pack month and the arm bound to it (empty
// when the item never got features).
type PublishedItem struct {
	ID        string `db:"id" json:"id"`
	IGMediaID string `db:"ig_media_id" json:"ig_media_id"`
	Month     string `db:"month" json:"month"`
	ArmID     string `db:"arm_id" json:"arm_id"`
}
